package pricing

import (
	"github.com/shopspring/decimal"
)

// PercentageTax charges a single rate on the subtotal.
type PercentageTax struct {
	Rate decimal.Decimal
}

// Tax rounds half-up to the nearest cent. Amounts are never negative here,
// so decimal's half-away-from-zero Round is half-up.
func (p PercentageTax) Tax(subtotalCents int64) int64 {
	return decimal.NewFromInt(subtotalCents).Mul(p.Rate).Round(0).IntPart()
}
