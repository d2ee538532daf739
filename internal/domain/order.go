package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Order-related domain errors.
var (
	ErrOrderNotFound    = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrNoPurchasable    = &Error{Code: EINVALID, Message: "None of the items in your cart are available"}
	ErrCheckoutFailed   = &Error{Code: EUNAVAILABLE, Message: "We couldn't start checkout. Please try again."}
	ErrSessionNotFound  = &Error{Code: ENOTFOUND, Message: "Checkout session not found"}
	ErrInvalidSignature = &Error{Code: EINVALID, Message: "Invalid webhook signature"}
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusRefunded OrderStatus = "refunded"
)

// CanTransitionTo reports whether next is a valid successor of s. Orders
// only move forward: pending to paid, paid to refunded.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid
	case OrderStatusPaid:
		return next == OrderStatusRefunded
	default:
		return false
	}
}

// SnapshotLine is one entry of an order's temp_cart: the line and its price
// as resolved when the checkout session was created.
type SnapshotLine struct {
	ProductID uuid.UUID  `json:"productId"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int        `json:"quantity"`
	UnitPrice int64      `json:"unitPrice"`
	Name      string     `json:"name"`
	SKU       string     `json:"sku"`
}

// SnapshotSubtotal sums unit price times quantity over the snapshot.
func SnapshotSubtotal(lines []SnapshotLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

type Order struct {
	ID               uuid.UUID      `json:"id"`
	OwnerID          *uuid.UUID     `json:"ownerId,omitempty"`
	SubtotalCents    int64          `json:"subtotalCents"`
	ShippingCents    int64          `json:"shippingCents"`
	TaxCents         int64          `json:"taxCents"`
	TotalCents       int64          `json:"totalCents"`
	Currency         string         `json:"currency"`
	Status           OrderStatus    `json:"status"`
	StripeSessionID  string         `json:"-"`
	PaymentReference string         `json:"-"`
	PayerEmail       string         `json:"-"`
	TempCart         []SnapshotLine `json:"-"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	Lines            []OrderLine    `json:"lines,omitempty"`
}

// ShortID is the customer-facing order reference.
func (o Order) ShortID() string {
	return ShortOrderID(o.ID)
}

// ShortOrderID returns the first eight characters of the order id.
func ShortOrderID(id uuid.UUID) string {
	return id.String()[:8]
}

// OrderLine is materialized from the snapshot once an order is paid.
type OrderLine struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"productId"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int        `json:"quantity"`
	UnitCents int64      `json:"unitCents"`
	Name      string     `json:"name"`
	SKU       string     `json:"sku"`
}

// OrderService is the read side of orders. Every method is scoped to the
// owner: another shopper's order is reported as not found.
type OrderService interface {
	GetOrder(ctx context.Context, orderID, ownerID uuid.UUID) (*Order, error)

	// ListOrders returns the owner's orders, newest first, without lines.
	ListOrders(ctx context.Context, ownerID uuid.UUID) ([]Order, error)

	// Reorder adds the lines of a past order to the given cart.
	Reorder(ctx context.Context, orderID, ownerID uuid.UUID, cart Cart) (int, error)
}
