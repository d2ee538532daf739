package storefront

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/manicvanity/storefront/internal/cart"
	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/middleware"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/repository"
)

// fakeCatalog serves products and variants from memory.
type fakeCatalog struct {
	products []repository.Product
	variants []repository.Variant
	err      error
}

func (f *fakeCatalog) addProduct(name string, price int64) uuid.UUID {
	id := uuid.New()
	f.products = append(f.products, repository.Product{
		ID:         postgres.UUID(id),
		Name:       name,
		PriceCents: price,
		Currency:   "usd",
	})
	return id
}

func (f *fakeCatalog) addVariant(productID uuid.UUID, name string, price *int64) uuid.UUID {
	id := uuid.New()
	f.variants = append(f.variants, repository.Variant{
		ID:         postgres.UUID(id),
		ProductID:  postgres.UUID(productID),
		Name:       name,
		Sku:        "MV-" + strings.ToUpper(name),
		PriceCents: postgres.Int8Ptr(price),
		Stock:      10,
	})
	return id
}

func (f *fakeCatalog) ListProductsByIDs(_ context.Context, ids []pgtype.UUID) ([]repository.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
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

func (f *fakeCatalog) ListVariantsByProductIDs(_ context.Context, ids []pgtype.UUID) ([]repository.Variant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []repository.Variant
	for _, v := range f.variants {
		for _, id := range ids {
			if v.ProductID == id {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// memCart is an in-memory domain.Cart.
type memCart struct {
	lines    []domain.CartLine
	linesErr error
}

func (c *memCart) Lines(context.Context) ([]domain.CartLine, error) {
	if c.linesErr != nil {
		return nil, c.linesErr
	}
	return append([]domain.CartLine(nil), c.lines...), nil
}

func (c *memCart) AddLine(_ context.Context, p domain.AddLineParams) (domain.CartLine, error) {
	if p.Quantity < 1 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}
	key := domain.NewLineKey(p.ProductID, p.VariantID)
	for i := range c.lines {
		if c.lines[i].Key() == key {
			c.lines[i].Quantity += p.Quantity
			return c.lines[i], nil
		}
	}
	l := domain.CartLine{
		ID:             uuid.NewString(),
		ProductID:      p.ProductID,
		VariantID:      p.VariantID,
		Quantity:       p.Quantity,
		Name:           p.Name,
		UnitPriceCents: p.UnitPriceCents,
	}
	c.lines = append(c.lines, l)
	return l, nil
}

func (c *memCart) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveLine(ctx, lineID)
	}
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines[i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

func (c *memCart) RemoveLine(_ context.Context, lineID string) error {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

func (c *memCart) Clear(context.Context) error {
	c.lines = nil
	return nil
}

// fakeCarts keys carts by owner id or guest token.
type fakeCarts struct {
	mu      sync.Mutex
	carts   map[string]*memCart
	catalog *fakeCatalog

	MergeFunc func(ctx context.Context, guestToken string, ownerID uuid.UUID) (int, error)
	CallLog   []string
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]*memCart{}, catalog: &fakeCatalog{}}
}

func sessionKey(s domain.CartSession) string {
	if s.OwnerID != nil {
		return "owner:" + s.OwnerID.String()
	}
	return "guest:" + s.GuestToken
}

func (f *fakeCarts) cartFor(s domain.CartSession) *memCart {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := sessionKey(s)
	c, ok := f.carts[key]
	if !ok {
		c = &memCart{}
		f.carts[key] = c
	}
	return c
}

func (f *fakeCarts) Open(s domain.CartSession) (domain.Cart, error) {
	f.mu.Lock()
	f.CallLog = append(f.CallLog, "Open")
	f.mu.Unlock()
	if s.OwnerID == nil && s.GuestToken == "" {
		return nil, domain.Invalid("cart.open", "no cart session")
	}
	return f.cartFor(s), nil
}

func (f *fakeCarts) Merge(ctx context.Context, guestToken string, ownerID uuid.UUID) (int, error) {
	f.mu.Lock()
	f.CallLog = append(f.CallLog, "Merge")
	f.mu.Unlock()
	if f.MergeFunc != nil {
		return f.MergeFunc(ctx, guestToken, ownerID)
	}
	return 0, nil
}

func (f *fakeCarts) Catalog() cart.CatalogQueries {
	return f.catalog
}

func (f *fakeCarts) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.CallLog {
		if c == name {
			n++
		}
	}
	return n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func guestSession(token string) domain.CartSession {
	return domain.CartSession{GuestToken: token}
}

func ownerSession(id uuid.UUID) domain.CartSession {
	return domain.CartSession{OwnerID: &id}
}

// newRequest builds a request carrying the session and a quiet logger, the
// way the identity and logging middleware would.
func newRequest(method, target, body string, session domain.CartSession) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	ctx := middleware.WithCartSession(req.Context(), session)
	ctx = context.WithValue(ctx, middleware.LoggerContextKey, testLogger())
	return req.WithContext(ctx)
}

func int64Ptr(v int64) *int64 { return &v }
