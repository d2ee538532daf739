package domain

import (
	"github.com/google/uuid"
)

var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrVariantNotFound = &Error{Code: ENOTFOUND, Message: "Variant not found"}
)

// Product is the catalog view used for pricing.
type Product struct {
	ID         uuid.UUID
	Name       string
	Slug       string
	Category   string
	PriceCents int64
	Currency   string
}

// Variant is a purchasable option of a product. PriceCents overrides the
// product's base price when set.
type Variant struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Name       string
	SKU        string
	PriceCents *int64
	Stock      int32
}

// UnitPrice returns the price of one unit of the product, or of the variant
// when given and it carries its own price.
func UnitPrice(p Product, v *Variant) int64 {
	if v != nil && v.PriceCents != nil {
		return *v.PriceCents
	}
	return p.PriceCents
}

// LineName is the display name used on checkout line items.
func LineName(p Product, v *Variant) string {
	if v == nil {
		return p.Name
	}
	return p.Name + " - " + v.Name
}

// LineSKU falls back to the product id when there is no variant.
func LineSKU(p Product, v *Variant) string {
	if v == nil {
		return p.ID.String()
	}
	return v.SKU
}
