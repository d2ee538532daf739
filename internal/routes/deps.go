package routes

import (
	"net/http"

	"github.com/manicvanity/storefront/internal/handler/admin"
	"github.com/manicvanity/storefront/internal/handler/storefront"
	"github.com/manicvanity/storefront/internal/router"
)

// StorefrontDeps contains dependencies for the shopper-facing JSON API
type StorefrontDeps struct {
	CartHandler     *storefront.CartHandler
	CheckoutHandler *storefront.CheckoutHandler
	OrderHandler    *storefront.OrderHandler

	// CheckoutLimiter throttles session creation; nil disables it.
	CheckoutLimiter router.Middleware
}

// AdminDeps contains dependencies for the demo-data routes
type AdminDeps struct {
	DemoHandler *admin.DemoHandler

	// Secret is compared with the X-Admin-Secret header. Empty disables
	// every admin route.
	Secret  string
	Limiter router.Middleware
}

// WebhookDeps contains dependencies for webhook routes
type WebhookDeps struct {
	StripeHandler http.HandlerFunc
}

// OpsDeps contains the operational endpoints
type OpsDeps struct {
	Health  http.Handler
	Metrics http.Handler
}
