package routes

import (
	"github.com/manicvanity/storefront/internal/middleware"
	"github.com/manicvanity/storefront/internal/router"
)

// RegisterWebhookRoutes registers all webhook routes.
//
// Webhook routes carry no session middleware. Each handler verifies the
// request signature itself.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/webhooks/stripe", deps.StripeHandler, middleware.MaxBodySize(middleware.WebhookMaxBodySize))
}

// RegisterOpsRoutes registers health and metrics endpoints. /metrics should
// be firewalled in production.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Handle("GET", "/health", deps.Health)
	if deps.Metrics != nil {
		r.Handle("GET", "/metrics", deps.Metrics)
	}
}
