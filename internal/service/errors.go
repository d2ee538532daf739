package service

import (
	"github.com/manicvanity/storefront/internal/domain"
)

// Cart and checkout errors - use domain.EINVALID
var (
	ErrEmptyCart       = domain.ErrEmptyCart
	ErrNoPurchasable   = domain.ErrNoPurchasable
	ErrInvalidQuantity = domain.ErrInvalidQuantity
)

// Order-related errors
var (
	ErrOrderNotFound   = domain.ErrOrderNotFound
	ErrSessionNotFound = domain.ErrSessionNotFound
	ErrCheckoutFailed  = domain.ErrCheckoutFailed
)

// Finalisation errors. These make the webhook handler answer 5xx so the
// gateway redelivers the event.
var (
	ErrOrderLookupFailed = &domain.Error{Code: domain.EUNAVAILABLE, Message: "Order lookup failed"}
	ErrMarkPaidFailed    = &domain.Error{Code: domain.EUNAVAILABLE, Message: "Could not record payment"}
)

// Demo data errors
var (
	ErrInvalidDemoCount = &domain.Error{Code: domain.EINVALID, Message: "Count must be between 1 and 100"}
	ErrEmptyCatalog     = &domain.Error{Code: domain.EINVALID, Message: "No products available; reseed the catalog first"}
)
