package routes

import (
	"github.com/manicvanity/storefront/internal/middleware"
	"github.com/manicvanity/storefront/internal/router"
)

// RegisterAdminRoutes registers the demo-data routes. Every route is gated
// by the admin secret header.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	chain := []router.Middleware{middleware.AdminSecret(deps.Secret)}
	if deps.Limiter != nil {
		chain = append(chain, deps.Limiter)
	}
	chain = append(chain, middleware.MaxBodySize(middleware.DefaultMaxBodySize))
	admin := r.Group(chain...)

	admin.Post("/admin/demo/orders", deps.DemoHandler.GenerateOrders)
	admin.Post("/admin/demo/reseed", deps.DemoHandler.Reseed)
}
