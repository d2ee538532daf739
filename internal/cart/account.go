package cart

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/repository"
)

// AccountQueries is the subset of the query layer an account cart needs.
type AccountQueries interface {
	CatalogQueries
	UpsertCart(ctx context.Context, ownerID pgtype.UUID) (repository.Cart, error)
	GetCartByOwner(ctx context.Context, ownerID pgtype.UUID) (repository.Cart, error)
	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]repository.CartItem, error)
	AddCartItem(ctx context.Context, arg repository.AddCartItemParams) (repository.CartItem, error)
	SetCartItemQty(ctx context.Context, arg repository.SetCartItemQtyParams) (int64, error)
	DeleteCartItem(ctx context.Context, arg repository.DeleteCartItemParams) (int64, error)
	ClearCartByOwner(ctx context.Context, ownerID pgtype.UUID) (int64, error)
}

// AccountCart persists each mutation to Postgres, keyed by owner.
type AccountCart struct {
	q       AccountQueries
	ownerID uuid.UUID
}

var _ domain.Cart = (*AccountCart)(nil)

func NewAccountCart(q AccountQueries, ownerID uuid.UUID) *AccountCart {
	return &AccountCart{q: q, ownerID: ownerID}
}

func (a *AccountCart) Lines(ctx context.Context) ([]domain.CartLine, error) {
	cart, err := a.q.GetCartByOwner(ctx, postgres.UUID(a.ownerID))
	if err != nil {
		if postgres.IsNoRows(err) {
			return []domain.CartLine{}, nil
		}
		return nil, domain.Internal(err, "cart.lines", "failed to load cart")
	}

	items, err := a.q.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, "cart.lines", "failed to load cart items")
	}

	lines := make([]domain.CartLine, len(items))
	for i, item := range items {
		lines[i] = lineFromItem(item)
	}

	catalog, err := LoadCatalog(ctx, a.q, ProductIDs(lines))
	if err != nil {
		return nil, domain.Internal(err, "cart.lines", "failed to load catalog")
	}
	for i := range lines {
		if p, v, ok := catalog.Resolve(lines[i].ProductID, lines[i].VariantID); ok {
			lines[i].Name = domain.LineName(p, v)
			lines[i].UnitPriceCents = domain.UnitPrice(p, v)
		}
	}
	return lines, nil
}

func (a *AccountCart) AddLine(ctx context.Context, params domain.AddLineParams) (domain.CartLine, error) {
	if params.Quantity < 1 || params.Quantity > math.MaxInt32 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}

	cart, err := a.q.UpsertCart(ctx, postgres.UUID(a.ownerID))
	if err != nil {
		return domain.CartLine{}, domain.Internal(err, "cart.add", "failed to create cart")
	}

	item, err := a.q.AddCartItem(ctx, repository.AddCartItemParams{
		CartID:    cart.ID,
		ProductID: postgres.UUID(params.ProductID),
		VariantID: postgres.NullableUUID(params.VariantID),
		Qty:       int32(params.Quantity),
	})
	if err != nil {
		return domain.CartLine{}, domain.Internal(err, "cart.add", "failed to add item")
	}

	line := lineFromItem(item)
	line.Name = params.Name
	line.UnitPriceCents = params.UnitPriceCents
	return line, nil
}

func (a *AccountCart) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return a.RemoveLine(ctx, lineID)
	}
	if quantity > math.MaxInt32 {
		return domain.ErrInvalidQuantity
	}

	cartID, itemID, err := a.locate(ctx, lineID)
	if err != nil {
		return err
	}

	n, err := a.q.SetCartItemQty(ctx, repository.SetCartItemQtyParams{
		ID:     itemID,
		CartID: cartID,
		Qty:    int32(quantity),
	})
	if err != nil {
		return domain.Internal(err, "cart.set_quantity", "failed to update item")
	}
	if n == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (a *AccountCart) RemoveLine(ctx context.Context, lineID string) error {
	cartID, itemID, err := a.locate(ctx, lineID)
	if err != nil {
		return err
	}

	n, err := a.q.DeleteCartItem(ctx, repository.DeleteCartItemParams{ID: itemID, CartID: cartID})
	if err != nil {
		return domain.Internal(err, "cart.remove", "failed to remove item")
	}
	if n == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (a *AccountCart) Clear(ctx context.Context) error {
	if _, err := a.q.ClearCartByOwner(ctx, postgres.UUID(a.ownerID)); err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return nil
}

// locate resolves a line id to the owner's cart. Malformed ids and missing
// carts both read as an unknown line.
func (a *AccountCart) locate(ctx context.Context, lineID string) (pgtype.UUID, pgtype.UUID, error) {
	id, err := uuid.Parse(lineID)
	if err != nil {
		return pgtype.UUID{}, pgtype.UUID{}, domain.ErrCartItemNotFound
	}

	cart, err := a.q.GetCartByOwner(ctx, postgres.UUID(a.ownerID))
	if err != nil {
		if postgres.IsNoRows(err) {
			return pgtype.UUID{}, pgtype.UUID{}, domain.ErrCartItemNotFound
		}
		return pgtype.UUID{}, pgtype.UUID{}, domain.Internal(err, "cart.locate", "failed to load cart")
	}
	return cart.ID, postgres.UUID(id), nil
}

func lineFromItem(item repository.CartItem) domain.CartLine {
	return domain.CartLine{
		ID:        postgres.FromUUID(item.ID).String(),
		ProductID: postgres.FromUUID(item.ProductID),
		VariantID: postgres.FromNullableUUID(item.VariantID),
		Quantity:  int(item.Qty),
	}
}
