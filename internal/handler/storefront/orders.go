package storefront

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/handler"
	"github.com/manicvanity/storefront/internal/middleware"
)

// OrderHandler serves a signed-in shopper's order history. All routes run
// behind RequireOwner.
type OrderHandler struct {
	orders domain.OrderService
	carts  Carts
}

func NewOrderHandler(orders domain.OrderService, carts Carts) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts}
}

// List handles GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.orders.ListOrders(ctx, middleware.GetOwnerID(ctx))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	handler.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// Get handles GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := orderID(r)
	if !ok {
		handler.ErrorResponse(w, r, domain.ErrOrderNotFound)
		return
	}
	order, err := h.orders.GetOrder(ctx, id, middleware.GetOwnerID(ctx))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, order)
}

// Reorder handles POST /api/orders/{id}/reorder
func (h *OrderHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := orderID(r)
	if !ok {
		handler.ErrorResponse(w, r, domain.ErrOrderNotFound)
		return
	}
	c, err := h.carts.Open(middleware.GetCartSession(ctx))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	added, err := h.orders.Reorder(ctx, id, middleware.GetOwnerID(ctx), c)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]int{"added": added})
}

// A malformed id is reported like a missing order.
func orderID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}
