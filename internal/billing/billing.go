package billing

import (
	"context"
)

// Provider is the payment gateway as the order lifecycle sees it: hosted
// checkout sessions plus authenticated webhook events.
type Provider interface {
	// CreateCheckoutSession creates a hosted payment page for a fixed set of
	// line items. The returned session carries the redirect URL.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSession retrieves a session, e.g. for the success page.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// VerifyWebhook checks the signature header against the raw payload and
	// decodes the event. It returns ErrInvalidWebhookSignature on mismatch.
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}

// LineItem is one row on the hosted payment page.
type LineItem struct {
	Name            string
	UnitAmountCents int64
	Quantity        int64
	Metadata        map[string]string
}

// CreateCheckoutSessionParams contains parameters for a one-off payment
// session.
type CreateCheckoutSessionParams struct {
	Currency          string
	LineItems         []LineItem
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
	CustomerEmail     string
	Metadata          map[string]string

	// IdempotencyKey makes gateway-side retries of the same request safe.
	IdempotencyKey string
}

// CheckoutSession is the gateway's view of a hosted payment page.
type CheckoutSession struct {
	ID                string
	URL               string
	AmountTotal       int64
	Currency          string
	PaymentStatus     string
	Status            string
	CustomerEmail     string
	PaymentIntentID   string
	ClientReferenceID string
	Metadata          map[string]string
}

// Charge is the subset of a charge needed to match a refund to an order.
type Charge struct {
	ID              string
	PaymentIntentID string
	AmountRefunded  int64
}

// Event types the order lifecycle reacts to.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventChargeRefunded           = "charge.refunded"
)

// Event is a verified webhook event. Exactly one of the object fields is set
// for the handled types; both are nil for anything else.
type Event struct {
	ID              string
	Type            string
	CheckoutSession *CheckoutSession
	Charge          *Charge
}
