package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/repository"
)

// CatalogQueries is the read side of the catalog store.
type CatalogQueries interface {
	ListProductsByIDs(ctx context.Context, ids []pgtype.UUID) ([]repository.Product, error)
	ListVariantsByProductIDs(ctx context.Context, productIds []pgtype.UUID) ([]repository.Variant, error)
}

// Catalog is a point-in-time view of the products and variants referenced by
// a set of cart lines.
type Catalog struct {
	products map[uuid.UUID]domain.Product
	variants map[uuid.UUID]domain.Variant
}

func NewCatalog(products []domain.Product, variants []domain.Variant) *Catalog {
	c := &Catalog{
		products: make(map[uuid.UUID]domain.Product, len(products)),
		variants: make(map[uuid.UUID]domain.Variant, len(variants)),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	for _, v := range variants {
		c.variants[v.ID] = v
	}
	return c
}

// LoadCatalog fetches the given products and all of their variants.
func LoadCatalog(ctx context.Context, q CatalogQueries, productIDs []uuid.UUID) (*Catalog, error) {
	if len(productIDs) == 0 {
		return NewCatalog(nil, nil), nil
	}

	ids := make([]pgtype.UUID, len(productIDs))
	for i, id := range productIDs {
		ids[i] = postgres.UUID(id)
	}

	productRows, err := q.ListProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	variantRows, err := q.ListVariantsByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	products := make([]domain.Product, len(productRows))
	for i, p := range productRows {
		products[i] = domain.Product{
			ID:         postgres.FromUUID(p.ID),
			Name:       p.Name,
			Slug:       p.Slug,
			Category:   p.Category,
			PriceCents: p.PriceCents,
			Currency:   p.Currency,
		}
	}
	variants := make([]domain.Variant, len(variantRows))
	for i, v := range variantRows {
		variants[i] = domain.Variant{
			ID:         postgres.FromUUID(v.ID),
			ProductID:  postgres.FromUUID(v.ProductID),
			Name:       v.Name,
			SKU:        v.Sku,
			PriceCents: postgres.FromInt8(v.PriceCents),
			Stock:      v.Stock,
		}
	}

	return NewCatalog(products, variants), nil
}

// Resolve finds the product and optional variant for a line. ok is false when
// the product is gone, or a variant was requested that no longer belongs to it.
func (c *Catalog) Resolve(productID uuid.UUID, variantID *uuid.UUID) (domain.Product, *domain.Variant, bool) {
	p, ok := c.products[productID]
	if !ok {
		return domain.Product{}, nil, false
	}
	if variantID == nil {
		return p, nil, true
	}
	v, ok := c.variants[*variantID]
	if !ok || v.ProductID != productID {
		return domain.Product{}, nil, false
	}
	return p, &v, true
}

// LinesSubtotal sums unit price times quantity. Unresolvable lines count as 0.
func LinesSubtotal(lines []domain.CartLine, c *Catalog) int64 {
	var total int64
	for _, l := range lines {
		p, v, ok := c.Resolve(l.ProductID, l.VariantID)
		if !ok {
			continue
		}
		total += domain.UnitPrice(p, v) * int64(l.Quantity)
	}
	return total
}

// Subtotal prices the cart's current lines against the live catalog.
func Subtotal(ctx context.Context, c domain.Cart, q CatalogQueries) (int64, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return 0, err
	}
	catalog, err := LoadCatalog(ctx, q, ProductIDs(lines))
	if err != nil {
		return 0, err
	}
	return LinesSubtotal(lines, catalog), nil
}

// ProductIDs returns the distinct product ids of lines, in first-seen order.
func ProductIDs(lines []domain.CartLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
