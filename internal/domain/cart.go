package domain

import (
	"context"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrEmptyCart        = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrSignInRequired   = &Error{Code: EUNAUTHORIZED, Message: "Sign in to continue"}
)

// LineKey identifies a cart line. VariantID is uuid.Nil for products
// without a variant.
type LineKey struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
}

// CartLine is one (product, variant) entry in a cart. Name and
// UnitPriceCents are display values captured when the line was added; they
// are never used to charge the shopper.
type CartLine struct {
	ID             string     `json:"id"`
	ProductID      uuid.UUID  `json:"productId"`
	VariantID      *uuid.UUID `json:"variantId,omitempty"`
	Quantity       int        `json:"quantity"`
	Name           string     `json:"name,omitempty"`
	UnitPriceCents int64      `json:"unitPriceCents,omitempty"`
}

// Key returns the merge key of the line.
func (l CartLine) Key() LineKey {
	k := LineKey{ProductID: l.ProductID}
	if l.VariantID != nil {
		k.VariantID = *l.VariantID
	}
	return k
}

// NewLineKey builds a key from an optional variant.
func NewLineKey(productID uuid.UUID, variantID *uuid.UUID) LineKey {
	return CartLine{ProductID: productID, VariantID: variantID}.Key()
}

// AddLineParams describes an add-to-cart request.
type AddLineParams struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	// Display values, only kept by guest carts.
	Name           string
	UnitPriceCents int64
}

// Cart is a single shopper's cart. Implementations keep at most one line per
// LineKey and never store a quantity below 1.
type Cart interface {
	Lines(ctx context.Context) ([]CartLine, error)

	// AddLine increments the quantity of an existing (product, variant) line
	// or appends a new one.
	AddLine(ctx context.Context, params AddLineParams) (CartLine, error)

	// SetQuantity replaces a line's quantity; quantity <= 0 removes the line.
	SetQuantity(ctx context.Context, lineID string, quantity int) error

	RemoveLine(ctx context.Context, lineID string) error
	Clear(ctx context.Context) error
}

// CartSession identifies whose cart a request operates on. Exactly one of
// OwnerID and GuestToken is used: OwnerID wins when both are set.
type CartSession struct {
	OwnerID    *uuid.UUID
	GuestToken string
}

// Identified reports whether the session belongs to a signed-in shopper.
func (s CartSession) Identified() bool {
	return s.OwnerID != nil
}
