package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/events"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockQuerier keeps orders, catalog rows and jobs in memory. Func fields
// override individual queries; anything not implemented falls through to
// the nil embedded Querier and panics.
type mockQuerier struct {
	repository.Querier

	mu         sync.Mutex
	products   []repository.Product
	variants   []repository.Variant
	orders     map[pgtype.UUID]repository.Order
	orderItems []repository.OrderItem
	jobs       []repository.EnqueueJobParams
	cleared    []pgtype.UUID
	restocked  []repository.RestockLowVariantsParams

	CreateOrderFunc         func(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error)
	GetOrderBySessionIDFunc func(ctx context.Context, id pgtype.Text) (repository.Order, error)
	MarkOrderPaidFunc       func(ctx context.Context, arg repository.MarkOrderPaidParams) (int64, error)
	EnqueueJobFunc          func(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error)
	ListProductsByIDsFunc   func(ctx context.Context, ids []pgtype.UUID) ([]repository.Product, error)

	// CallLog records the name of every query issued.
	CallLog []string
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{orders: map[pgtype.UUID]repository.Order{}}
}

func (m *mockQuerier) log(name string) {
	m.CallLog = append(m.CallLog, name)
}

func (m *mockQuerier) calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.CallLog {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockQuerier) addProduct(name string, price int64) repository.Product {
	p := repository.Product{
		ID:         postgres.UUID(uuid.New()),
		Category:   "lips",
		Name:       name,
		Slug:       fmt.Sprintf("p-%d", len(m.products)),
		PriceCents: price,
		Currency:   "usd",
	}
	m.products = append(m.products, p)
	return p
}

func (m *mockQuerier) addVariant(productID pgtype.UUID, name, sku string, price *int64, stock int32) repository.Variant {
	v := repository.Variant{
		ID:         postgres.UUID(uuid.New()),
		ProductID:  productID,
		Name:       name,
		Sku:        sku,
		PriceCents: postgres.Int8Ptr(price),
		Stock:      stock,
	}
	m.variants = append(m.variants, v)
	return v
}

func (m *mockQuerier) putOrder(o repository.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}

func (m *mockQuerier) order(id uuid.UUID) repository.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[postgres.UUID(id)]
}

func (m *mockQuerier) ListProductsByIDs(ctx context.Context, ids []pgtype.UUID) ([]repository.Product, error) {
	m.mu.Lock()
	m.log("ListProductsByIDs")
	m.mu.Unlock()
	if m.ListProductsByIDsFunc != nil {
		return m.ListProductsByIDsFunc(ctx, ids)
	}
	var out []repository.Product
	for _, p := range m.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (m *mockQuerier) ListVariantsByProductIDs(ctx context.Context, ids []pgtype.UUID) ([]repository.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("ListVariantsByProductIDs")
	var out []repository.Variant
	for _, v := range m.variants {
		for _, id := range ids {
			if v.ProductID == id {
				out = append(out, v)
				break
			}
		}
	}
	return out, nil
}

func (m *mockQuerier) ListProducts(ctx context.Context, limit int32) ([]repository.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("ListProducts")
	if int(limit) < len(m.products) {
		return append([]repository.Product(nil), m.products[:limit]...), nil
	}
	return append([]repository.Product(nil), m.products...), nil
}

func (m *mockQuerier) CountProducts(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("CountProducts")
	return int64(len(m.products)), nil
}

func (m *mockQuerier) CreateProduct(ctx context.Context, arg repository.CreateProductParams) (repository.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("CreateProduct")
	for _, p := range m.products {
		if p.Slug == arg.Slug {
			return repository.Product{}, fmt.Errorf("duplicate slug %q", arg.Slug)
		}
	}
	p := repository.Product{
		ID:             postgres.UUID(uuid.New()),
		Category:       arg.Category,
		Name:           arg.Name,
		Slug:           arg.Slug,
		Description:    arg.Description,
		PriceCents:     arg.PriceCents,
		CompareAtCents: arg.CompareAtCents,
		Currency:       arg.Currency,
	}
	m.products = append(m.products, p)
	return p, nil
}

func (m *mockQuerier) CreateVariant(ctx context.Context, arg repository.CreateVariantParams) (repository.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("CreateVariant")
	v := repository.Variant{
		ID:         postgres.UUID(uuid.New()),
		ProductID:  arg.ProductID,
		Name:       arg.Name,
		Sku:        arg.Sku,
		PriceCents: arg.PriceCents,
		Stock:      arg.Stock,
	}
	m.variants = append(m.variants, v)
	return v, nil
}

func (m *mockQuerier) RestockLowVariants(ctx context.Context, arg repository.RestockLowVariantsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("RestockLowVariants")
	m.restocked = append(m.restocked, arg)
	var n int64
	for i := range m.variants {
		if m.variants[i].Stock < arg.Threshold {
			m.variants[i].Stock = arg.Stock
			n++
		}
	}
	return n, nil
}

func (m *mockQuerier) DecrementVariantStock(ctx context.Context, arg repository.DecrementVariantStockParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("DecrementVariantStock")
	for i := range m.variants {
		if m.variants[i].ID == arg.ID {
			if m.variants[i].Stock < arg.Quantity {
				return 0, nil
			}
			m.variants[i].Stock -= arg.Quantity
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockQuerier) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	m.mu.Lock()
	m.log("CreateOrder")
	m.mu.Unlock()
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, arg)
	}
	o := repository.Order{
		ID:              arg.ID,
		OwnerID:         arg.OwnerID,
		SubtotalCents:   arg.SubtotalCents,
		ShippingCents:   arg.ShippingCents,
		TaxCents:        arg.TaxCents,
		TotalCents:      arg.TotalCents,
		Currency:        arg.Currency,
		Status:          string(domain.OrderStatusPending),
		StripeSessionID: arg.StripeSessionID,
		TempCart:        arg.TempCart,
		PaymentMethod:   "stripe",
	}
	m.putOrder(o)
	return o, nil
}

func (m *mockQuerier) CreateBackdatedOrder(ctx context.Context, arg repository.CreateBackdatedOrderParams) (repository.Order, error) {
	m.mu.Lock()
	m.log("CreateBackdatedOrder")
	m.mu.Unlock()
	o := repository.Order{
		ID:              arg.ID,
		OwnerID:         arg.OwnerID,
		SubtotalCents:   arg.SubtotalCents,
		ShippingCents:   arg.ShippingCents,
		TaxCents:        arg.TaxCents,
		TotalCents:      arg.TotalCents,
		Currency:        arg.Currency,
		Status:          arg.Status,
		StripeSessionID: arg.StripeSessionID,
		TempCart:        arg.TempCart,
		CreatedAt:       arg.CreatedAt,
	}
	m.putOrder(o)
	return o, nil
}

func (m *mockQuerier) findOrder(match func(repository.Order) bool) (repository.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if match(o) {
			return o, nil
		}
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetOrderBySessionID(ctx context.Context, id pgtype.Text) (repository.Order, error) {
	m.mu.Lock()
	m.log("GetOrderBySessionID")
	m.mu.Unlock()
	if m.GetOrderBySessionIDFunc != nil {
		return m.GetOrderBySessionIDFunc(ctx, id)
	}
	return m.findOrder(func(o repository.Order) bool { return o.StripeSessionID == id })
}

func (m *mockQuerier) GetOrderByPaymentReference(ctx context.Context, ref pgtype.Text) (repository.Order, error) {
	m.mu.Lock()
	m.log("GetOrderByPaymentReference")
	m.mu.Unlock()
	return m.findOrder(func(o repository.Order) bool { return o.PaymentReference == ref })
}

func (m *mockQuerier) GetOrderForOwner(ctx context.Context, arg repository.GetOrderForOwnerParams) (repository.Order, error) {
	m.mu.Lock()
	m.log("GetOrderForOwner")
	m.mu.Unlock()
	return m.findOrder(func(o repository.Order) bool { return o.ID == arg.ID && o.OwnerID == arg.OwnerID })
}

func (m *mockQuerier) ListOrdersByOwner(ctx context.Context, ownerID pgtype.UUID) ([]repository.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("ListOrdersByOwner")
	var out []repository.Order
	for _, o := range m.orders {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockQuerier) MarkOrderPaid(ctx context.Context, arg repository.MarkOrderPaidParams) (int64, error) {
	m.mu.Lock()
	m.log("MarkOrderPaid")
	m.mu.Unlock()
	if m.MarkOrderPaidFunc != nil {
		return m.MarkOrderPaidFunc(ctx, arg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[arg.ID]
	if !ok || o.Status != string(domain.OrderStatusPending) {
		return 0, nil
	}
	o.Status = string(domain.OrderStatusPaid)
	o.PaymentReference = arg.PaymentReference
	o.PayerEmail = arg.PayerEmail
	m.orders[arg.ID] = o
	return 1, nil
}

func (m *mockQuerier) MarkOrderRefunded(ctx context.Context, id pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("MarkOrderRefunded")
	o, ok := m.orders[id]
	if !ok || o.Status != string(domain.OrderStatusPaid) {
		return 0, nil
	}
	o.Status = string(domain.OrderStatusRefunded)
	m.orders[id] = o
	return 1, nil
}

func (m *mockQuerier) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("CreateOrderItem")
	// UNIQUE (order_id, product_id, variant_id) with ON CONFLICT DO NOTHING.
	for _, it := range m.orderItems {
		if it.OrderID == arg.OrderID && it.ProductID == arg.ProductID && it.VariantID == arg.VariantID {
			return 0, nil
		}
	}
	m.orderItems = append(m.orderItems, repository.OrderItem{
		ID:        postgres.UUID(uuid.New()),
		OrderID:   arg.OrderID,
		ProductID: arg.ProductID,
		VariantID: arg.VariantID,
		Qty:       arg.Qty,
		UnitCents: arg.UnitCents,
		Name:      arg.Name,
		Sku:       arg.Sku,
	})
	return 1, nil
}

func (m *mockQuerier) ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("ListOrderItems")
	var out []repository.OrderItem
	for _, it := range m.orderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockQuerier) ClearCartByOwner(ctx context.Context, ownerID pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("ClearCartByOwner")
	m.cleared = append(m.cleared, ownerID)
	return 1, nil
}

func (m *mockQuerier) EnqueueJob(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error) {
	m.mu.Lock()
	m.log("EnqueueJob")
	m.mu.Unlock()
	if m.EnqueueJobFunc != nil {
		return m.EnqueueJobFunc(ctx, arg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, arg)
	return repository.Job{ID: postgres.UUID(uuid.New()), JobType: arg.JobType, Queue: arg.Queue, Payload: arg.Payload}, nil
}

// recordingPublisher captures published envelopes.
type recordingPublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.envelopes))
	for i, e := range p.envelopes {
		out[i] = e.EventType
	}
	return out
}

// memCart is a minimal domain.Cart for reorder tests.
type memCart struct {
	lines  []domain.CartLine
	addErr error
}

func (c *memCart) Lines(ctx context.Context) ([]domain.CartLine, error) {
	return c.lines, nil
}

func (c *memCart) AddLine(ctx context.Context, p domain.AddLineParams) (domain.CartLine, error) {
	if c.addErr != nil {
		return domain.CartLine{}, c.addErr
	}
	key := domain.NewLineKey(p.ProductID, p.VariantID)
	for i := range c.lines {
		if c.lines[i].Key() == key {
			c.lines[i].Quantity += p.Quantity
			return c.lines[i], nil
		}
	}
	line := domain.CartLine{
		ID:             uuid.NewString(),
		ProductID:      p.ProductID,
		VariantID:      p.VariantID,
		Quantity:       p.Quantity,
		Name:           p.Name,
		UnitPriceCents: p.UnitPriceCents,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

func (c *memCart) SetQuantity(ctx context.Context, lineID string, quantity int) error { return nil }
func (c *memCart) RemoveLine(ctx context.Context, lineID string) error                { return nil }
func (c *memCart) Clear(ctx context.Context) error {
	c.lines = nil
	return nil
}
