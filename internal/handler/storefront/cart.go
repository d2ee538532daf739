package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/manicvanity/storefront/internal/cart"
	"github.com/manicvanity/storefront/internal/cookie"
	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/handler"
	"github.com/manicvanity/storefront/internal/middleware"
	"github.com/manicvanity/storefront/internal/pricing"
)

// Carts opens shopper carts and runs the sign-in merge.
type Carts interface {
	Open(session domain.CartSession) (domain.Cart, error)
	Merge(ctx context.Context, guestToken string, ownerID uuid.UUID) (int, error)
	Catalog() cart.CatalogQueries
}

// CartHandler serves the /api/cart routes.
type CartHandler struct {
	carts    Carts
	calc     *pricing.Calculator
	cookies  *cookie.Config
	guestTTL time.Duration
}

func NewCartHandler(carts Carts, calc *pricing.Calculator, cookies *cookie.Config, guestTTL time.Duration) *CartHandler {
	if calc == nil {
		calc = pricing.Default()
	}
	return &CartHandler{
		carts:    carts,
		calc:     calc,
		cookies:  cookies,
		guestTTL: guestTTL,
	}
}

type lineView struct {
	ID             string     `json:"id"`
	ProductID      uuid.UUID  `json:"productId"`
	VariantID      *uuid.UUID `json:"variantId,omitempty"`
	Quantity       int        `json:"quantity"`
	Name           string     `json:"name"`
	UnitPriceCents int64      `json:"unitPriceCents"`
	LineTotalCents int64      `json:"lineTotalCents"`
	Available      bool       `json:"available"`
}

type cartView struct {
	Lines         []lineView `json:"lines"`
	ItemCount     int        `json:"itemCount"`
	SubtotalCents int64      `json:"subtotalCents"`
	ShippingCents int64      `json:"shippingCents"`
	TaxCents      int64      `json:"taxCents"`
	TotalCents    int64      `json:"totalCents"`
}

type addItemRequest struct {
	ProductID uuid.UUID  `json:"productId" validate:"required"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  *int       `json:"quantity,omitempty" validate:"omitempty,gte=1,lte=99"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=99"`
}

// View handles GET /api/cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetCartSession(r.Context())
	if !hasCart(session) {
		handler.JSON(w, http.StatusOK, emptyView())
		return
	}
	h.respondWithCart(w, r, session)
}

// AddItem handles POST /api/cart/items. The first write from a shopper
// without any session issues the guest cookie.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "cart.add"
	ctx := r.Context()

	var req addItemRequest
	if err := handler.DecodeJSON(r, &req, false); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	catalog, err := cart.LoadCatalog(ctx, h.carts.Catalog(), []uuid.UUID{req.ProductID})
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, op, "failed to load product"))
		return
	}
	product, variant, ok := catalog.Resolve(req.ProductID, req.VariantID)
	if !ok {
		if req.VariantID != nil {
			handler.ErrorResponse(w, r, domain.ErrVariantNotFound)
			return
		}
		handler.ErrorResponse(w, r, domain.ErrProductNotFound)
		return
	}

	session := h.ensureSession(w, middleware.GetCartSession(ctx))
	c, err := h.carts.Open(session)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if _, err := c.AddLine(ctx, domain.AddLineParams{
		ProductID:      req.ProductID,
		VariantID:      req.VariantID,
		Quantity:       qty,
		Name:           domain.LineName(product, variant),
		UnitPriceCents: domain.UnitPrice(product, variant),
	}); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.respondWithCart(w, r, session)
}

// UpdateItem handles PATCH /api/cart/items/{id}. A quantity of 0 or less
// removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateItemRequest
	if err := handler.DecodeJSON(r, &req, false); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	session := middleware.GetCartSession(ctx)
	if !hasCart(session) {
		handler.ErrorResponse(w, r, domain.ErrCartItemNotFound)
		return
	}
	c, err := h.carts.Open(session)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if err := c.SetQuantity(ctx, r.PathValue("id"), *req.Quantity); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.respondWithCart(w, r, session)
}

// RemoveItem handles DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session := middleware.GetCartSession(ctx)
	if !hasCart(session) {
		handler.ErrorResponse(w, r, domain.ErrCartItemNotFound)
		return
	}
	c, err := h.carts.Open(session)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if err := c.RemoveLine(ctx, r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.respondWithCart(w, r, session)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session := middleware.GetCartSession(ctx)
	if hasCart(session) {
		c, err := h.carts.Open(session)
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		if err := c.Clear(ctx); err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
	}

	handler.JSON(w, http.StatusOK, emptyView())
}

// Merge handles POST /api/cart/merge. It runs behind RequireOwner. The guest
// cookie is expired only once the merge has succeeded.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.GetCartSession(ctx)
	if session.OwnerID == nil {
		handler.UnauthorizedResponse(w, r)
		return
	}

	merged := 0
	if session.GuestToken != "" {
		n, err := h.carts.Merge(ctx, session.GuestToken, *session.OwnerID)
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		merged = n
		h.cookies.Clear(w, cookie.GuestCookieName)
	}

	handler.JSON(w, http.StatusOK, map[string]int{"merged": merged})
}

func (h *CartHandler) ensureSession(w http.ResponseWriter, session domain.CartSession) domain.CartSession {
	if hasCart(session) {
		return session
	}
	session.GuestToken = cookie.NewGuestToken()
	h.cookies.Set(w, cookie.GuestCookieName, session.GuestToken, h.guestTTL)
	return session
}

func (h *CartHandler) respondWithCart(w http.ResponseWriter, r *http.Request, session domain.CartSession) {
	view, err := h.buildView(r.Context(), session)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, view)
}

// buildView prices the cart against the live catalog. Lines whose product
// is gone stay visible but are marked unavailable and count as 0.
func (h *CartHandler) buildView(ctx context.Context, session domain.CartSession) (cartView, error) {
	const op = "cart.view"

	c, err := h.carts.Open(session)
	if err != nil {
		return cartView{}, err
	}
	lines, err := c.Lines(ctx)
	if err != nil {
		return cartView{}, err
	}
	if len(lines) == 0 {
		return emptyView(), nil
	}

	catalog, err := cart.LoadCatalog(ctx, h.carts.Catalog(), cart.ProductIDs(lines))
	if err != nil {
		return cartView{}, domain.Internal(err, op, "failed to price cart")
	}

	view := cartView{Lines: make([]lineView, 0, len(lines))}
	for _, l := range lines {
		lv := lineView{
			ID:             l.ID,
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			Name:           l.Name,
			UnitPriceCents: l.UnitPriceCents,
		}
		if p, v, ok := catalog.Resolve(l.ProductID, l.VariantID); ok {
			lv.Available = true
			lv.Name = domain.LineName(p, v)
			lv.UnitPriceCents = domain.UnitPrice(p, v)
			lv.LineTotalCents = lv.UnitPriceCents * int64(l.Quantity)
		}
		view.ItemCount += l.Quantity
		view.Lines = append(view.Lines, lv)
	}

	totals := h.calc.ComputeTotal(cart.LinesSubtotal(lines, catalog))
	view.SubtotalCents = totals.Subtotal
	view.ShippingCents = totals.Shipping
	view.TaxCents = totals.Tax
	view.TotalCents = totals.Total
	return view, nil
}

func emptyView() cartView {
	return cartView{Lines: []lineView{}}
}

func hasCart(session domain.CartSession) bool {
	return session.Identified() || session.GuestToken != ""
}
