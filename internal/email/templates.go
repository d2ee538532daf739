package email

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmailTemplate defines the interface for email templates
type EmailTemplate interface {
	Subject() string
	TemplateName() string
}

// OrderConfirmationEmail is sent once an order has been paid.
type OrderConfirmationEmail struct {
	OrderID    uuid.UUID
	Email      string
	TotalCents int64
	Currency   string
}

// OrderNumber is the short reference shown to the customer.
func (e OrderConfirmationEmail) OrderNumber() string {
	return e.OrderID.String()[:8]
}

// Total formats the order total in major units, for example "50.25".
func (e OrderConfirmationEmail) Total() string {
	return FormatCents(e.TotalCents)
}

func (e OrderConfirmationEmail) Subject() string {
	return "Order Confirmation - MANIC VANITY #" + e.OrderNumber()
}

func (e OrderConfirmationEmail) TemplateName() string {
	return "order_confirmation.html"
}

// FormatCents renders minor units with two decimals.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
