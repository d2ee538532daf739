// Package pricing derives shipping, tax and the order total from a cart
// subtotal. All amounts are integer minor currency units.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// DefaultShippingCents is the flat shipping charge per order.
	DefaultShippingCents int64 = 600

	// DefaultTaxRate is applied to the subtotal only.
	DefaultTaxRate = "0.085"
)

// Totals is the breakdown shown to the shopper and charged at checkout.
type Totals struct {
	Subtotal int64 `json:"subtotalCents"`
	Shipping int64 `json:"shippingCents"`
	Tax      int64 `json:"taxCents"`
	Total    int64 `json:"totalCents"`
}

// Calculator is safe for concurrent use; it holds no mutable state.
type Calculator struct {
	shipping FlatRate
	tax      PercentageTax
}

// NewCalculator builds a calculator from a decimal tax rate such as "0.085"
// and a flat shipping amount.
func NewCalculator(taxRate string, shippingCents int64) (*Calculator, error) {
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate %q: %w", taxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("tax rate must be in [0, 1), got %s", rate)
	}
	if shippingCents < 0 {
		return nil, fmt.Errorf("shipping must not be negative, got %d", shippingCents)
	}

	return &Calculator{
		shipping: FlatRate{Cents: shippingCents},
		tax:      PercentageTax{Rate: rate},
	}, nil
}

// Default returns the calculator for the storefront's published policy:
// 600 cents shipping and 8.5% tax.
func Default() *Calculator {
	c, err := NewCalculator(DefaultTaxRate, DefaultShippingCents)
	if err != nil {
		panic(err)
	}
	return c
}

// ComputeTotal is deterministic: the same subtotal always yields the same
// tax and total. A negative subtotal is treated as zero.
func (c *Calculator) ComputeTotal(subtotal int64) Totals {
	if subtotal < 0 {
		subtotal = 0
	}

	shipping := c.shipping.Cost()
	tax := c.tax.Tax(subtotal)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
