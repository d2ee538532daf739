package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/repository"
)

// fakeStore is an in-memory stand-in for the cart and catalog tables. Methods
// outside the cart's needs fall through to the nil embedded Querier.
type fakeStore struct {
	repository.Querier

	mu       sync.Mutex
	carts    map[pgtype.UUID]repository.Cart
	items    []repository.CartItem
	products []repository.Product
	variants []repository.Variant

	AddCartItemErr error
	// CallLog records the name of each mutating call.
	CallLog []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: map[pgtype.UUID]repository.Cart{}}
}

func (f *fakeStore) addProduct(price int64) repository.Product {
	p := repository.Product{ID: postgres.UUID(uuid.New()), Name: "Velvet Lip", PriceCents: price, Currency: "usd"}
	f.products = append(f.products, p)
	return p
}

func (f *fakeStore) addVariant(productID pgtype.UUID, price *int64) repository.Variant {
	v := repository.Variant{
		ID:         postgres.UUID(uuid.New()),
		ProductID:  productID,
		Name:       "Rose",
		Sku:        "VL-ROSE",
		PriceCents: postgres.Int8Ptr(price),
		Stock:      10,
	}
	f.variants = append(f.variants, v)
	return v
}

func (f *fakeStore) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	f.mu.Lock()
	snapshotCarts := make(map[pgtype.UUID]repository.Cart, len(f.carts))
	for k, v := range f.carts {
		snapshotCarts[k] = v
	}
	snapshotItems := append([]repository.CartItem(nil), f.items...)
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.carts = snapshotCarts
		f.items = snapshotItems
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) ListProductsByIDs(ctx context.Context, ids []pgtype.UUID) ([]repository.Product, error) {
	var out []repository.Product
	for _, p := range f.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListVariantsByProductIDs(ctx context.Context, productIds []pgtype.UUID) ([]repository.Variant, error) {
	var out []repository.Variant
	for _, v := range f.variants {
		for _, id := range productIds {
			if v.ProductID == id {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertCart(ctx context.Context, ownerID pgtype.UUID) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.carts[ownerID]; ok {
		return c, nil
	}
	c := repository.Cart{ID: postgres.UUID(uuid.New()), OwnerID: ownerID}
	f.carts[ownerID] = c
	return c, nil
}

func (f *fakeStore) GetCartByOwner(ctx context.Context, ownerID pgtype.UUID) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[ownerID]
	if !ok {
		return repository.Cart{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeStore) ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]repository.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.CartItem
	for _, it := range f.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeStore) AddCartItem(ctx context.Context, arg repository.AddCartItemParams) (repository.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallLog = append(f.CallLog, "AddCartItem")
	if f.AddCartItemErr != nil {
		return repository.CartItem{}, f.AddCartItemErr
	}
	for i, it := range f.items {
		if it.CartID == arg.CartID && it.ProductID == arg.ProductID && it.VariantID == arg.VariantID {
			f.items[i].Qty += arg.Qty
			return f.items[i], nil
		}
	}
	it := repository.CartItem{
		ID:        postgres.UUID(uuid.New()),
		CartID:    arg.CartID,
		ProductID: arg.ProductID,
		VariantID: arg.VariantID,
		Qty:       arg.Qty,
	}
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeStore) SetCartItemQty(ctx context.Context, arg repository.SetCartItemQtyParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallLog = append(f.CallLog, "SetCartItemQty")
	for i, it := range f.items {
		if it.ID == arg.ID && it.CartID == arg.CartID {
			f.items[i].Qty = arg.Qty
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) DeleteCartItem(ctx context.Context, arg repository.DeleteCartItemParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallLog = append(f.CallLog, "DeleteCartItem")
	for i, it := range f.items {
		if it.ID == arg.ID && it.CartID == arg.CartID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) ClearCartByOwner(ctx context.Context, ownerID pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallLog = append(f.CallLog, "ClearCartByOwner")
	c, ok := f.carts[ownerID]
	if !ok {
		return 0, nil
	}
	var kept []repository.CartItem
	var n int64
	for _, it := range f.items {
		if it.CartID == c.ID {
			n++
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return n, nil
}
