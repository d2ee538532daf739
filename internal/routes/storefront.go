package routes

import (
	"github.com/manicvanity/storefront/internal/middleware"
	"github.com/manicvanity/storefront/internal/router"
)

// RegisterStorefrontRoutes registers the cart, checkout and order routes.
// The router's chain must include middleware.Identity.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	api := r.Group(
		middleware.Timeout(middleware.DefaultTimeout),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
	)

	// Cart
	api.Get("/api/cart", deps.CartHandler.View)
	api.Delete("/api/cart", deps.CartHandler.Clear)
	api.Post("/api/cart/items", deps.CartHandler.AddItem)
	api.Patch("/api/cart/items/{id}", deps.CartHandler.UpdateItem)
	api.Delete("/api/cart/items/{id}", deps.CartHandler.RemoveItem)

	// Checkout
	checkout := api
	if deps.CheckoutLimiter != nil {
		checkout = api.Group(deps.CheckoutLimiter)
	}
	checkout.Post("/api/checkout", deps.CheckoutHandler.Start)
	api.Get("/api/checkout/session", deps.CheckoutHandler.Session)

	// Signed-in shoppers only
	owner := api.Group(middleware.RequireOwner)
	owner.Post("/api/cart/merge", deps.CartHandler.Merge)
	owner.Get("/api/orders", deps.OrderHandler.List)
	owner.Get("/api/orders/{id}", deps.OrderHandler.Get)
	owner.Post("/api/orders/{id}/reorder", deps.OrderHandler.Reorder)
}
