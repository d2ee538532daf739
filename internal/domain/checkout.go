package domain

import (
	"context"

	"github.com/google/uuid"
)

// CheckoutItem is a line submitted for checkout.
type CheckoutItem struct {
	ProductID uuid.UUID  `json:"productId" validate:"required"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int        `json:"quantity" validate:"gte=1,lte=99"`
}

// CheckoutResult is returned to the shopper for redirection. OrderID is
// uuid.Nil for anonymous checkouts or when the order row could not be saved.
type CheckoutResult struct {
	URL     string    `json:"url"`
	OrderID uuid.UUID `json:"orderId"`
}

// CheckoutSessionStatus is the gateway's view of a session, shown on the
// success page.
type CheckoutSessionStatus struct {
	ID            string `json:"id"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
	PaymentStatus string `json:"payment_status"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Status        string `json:"status"`
}

type CheckoutService interface {
	// StartCheckout re-prices items from the catalog, opens a hosted checkout
	// session and, for identified shoppers, records a pending order.
	StartCheckout(ctx context.Context, items []CheckoutItem, ownerID *uuid.UUID) (*CheckoutResult, error)

	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSessionStatus, error)
}

// CheckoutCompleted carries the fields of a verified
// checkout.session.completed event.
type CheckoutCompleted struct {
	EventID         string
	SessionID       string
	PaymentIntentID string
	PayerEmail      string
	AmountTotal     int64
}

// ChargeRefunded carries the fields of a verified charge.refunded event.
type ChargeRefunded struct {
	EventID         string
	ChargeID        string
	PaymentIntentID string
}

// PaymentService finalizes orders in response to gateway events. Both
// handlers are idempotent and report only failures that should make the
// gateway retry.
type PaymentService interface {
	HandleCheckoutCompleted(ctx context.Context, event CheckoutCompleted) error
	HandleChargeRefunded(ctx context.Context, event ChargeRefunded) error
}
