package storefront

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/handler"
	"github.com/manicvanity/storefront/internal/middleware"
)

// CheckoutHandler starts hosted checkout sessions and reports their status.
type CheckoutHandler struct {
	checkout domain.CheckoutService
	carts    Carts
}

func NewCheckoutHandler(checkout domain.CheckoutService, carts Carts) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, carts: carts}
}

type checkoutRequest struct {
	Items []domain.CheckoutItem `json:"items,omitempty" validate:"omitempty,max=100,dive"`
}

type checkoutResponse struct {
	URL     string     `json:"url"`
	OrderID *uuid.UUID `json:"orderId"`
}

// Start handles POST /api/checkout. Without items in the body the shopper's
// current cart is checked out.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checkoutRequest
	if err := handler.DecodeJSON(r, &req, true); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	session := middleware.GetCartSession(ctx)
	items := req.Items
	if len(items) == 0 && hasCart(session) {
		c, err := h.carts.Open(session)
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		lines, err := c.Lines(ctx)
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		for _, l := range lines {
			items = append(items, domain.CheckoutItem{
				ProductID: l.ProductID,
				VariantID: l.VariantID,
				Quantity:  l.Quantity,
			})
		}
	}

	result, err := h.checkout.StartCheckout(ctx, items, session.OwnerID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := checkoutResponse{URL: result.URL}
	if result.OrderID != uuid.Nil {
		id := result.OrderID
		resp.OrderID = &id
	}
	handler.JSON(w, http.StatusOK, resp)
}

// Session handles GET /api/checkout/session?session_id=
func (h *CheckoutHandler) Session(w http.ResponseWriter, r *http.Request) {
	status, err := h.checkout.GetCheckoutSession(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, status)
}
