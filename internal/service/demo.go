package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/pricing"
	"github.com/manicvanity/storefront/internal/repository"
)

const (
	DemoOwnerEmail = "demo@manicvanity.com"

	DefaultDemoOrders = 10
	MaxDemoOrders     = 100

	reseedMinProducts    = 24
	reseedTargetProducts = 48
	restockThreshold     = 5
)

// DemoOwnerID is the stable owner id of the demo shopper, derived from the
// demo email.
var DemoOwnerID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+DemoOwnerEmail))

var demoCategories = []string{"tops", "bottoms", "outerwear", "accessories", "footwear"}
var demoSizes = []string{"XS", "S", "M", "L", "XL"}

// GenerateOrdersResult reports what GenerateOrders wrote.
type GenerateOrdersResult struct {
	OrdersCreated int    `json:"ordersCreated"`
	ItemsCreated  int    `json:"itemsCreated"`
	DemoUser      string `json:"testUser"`
	DemoOwnerID   string `json:"ownerId"`
}

// ReseedResult reports what Reseed wrote.
type ReseedResult struct {
	ProductsAdded     int   `json:"productsAdded"`
	VariantsRestocked int64 `json:"variantsRestocked"`
	ProductCount      int64 `json:"count"`
}

// DemoService fills the store with sample data for demos.
type DemoService interface {
	GenerateOrders(ctx context.Context, count int) (*GenerateOrdersResult, error)
	Reseed(ctx context.Context) (*ReseedResult, error)
}

type demoService struct {
	repo     repository.Querier
	pricing  *pricing.Calculator
	currency string
	seed     func() uint64
	logger   *slog.Logger
}

// NewDemoService creates the demo data generator. seed provides the per
// request random seed; nil uses the clock.
func NewDemoService(repo repository.Querier, calc *pricing.Calculator, currency string, seed func() uint64, logger *slog.Logger) DemoService {
	if calc == nil {
		calc = pricing.Default()
	}
	if seed == nil {
		seed = func() uint64 { return uint64(time.Now().UnixNano()) }
	}
	if currency == "" {
		currency = "usd"
	}
	return &demoService{
		repo:     repo,
		pricing:  calc,
		currency: currency,
		seed:     seed,
		logger:   logger.With("service", "demo"),
	}
}

type demoProduct struct {
	product repository.Product
	variant *repository.Variant
}

// GenerateOrders writes count backdated orders for the demo shopper, each
// with one to three random catalog products and a random status.
func (s *demoService) GenerateOrders(ctx context.Context, count int) (*GenerateOrdersResult, error) {
	const op = "demo.generate_orders"

	if count < 1 || count > MaxDemoOrders {
		return nil, ErrInvalidDemoCount
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load products")
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	faker := gofakeit.New(s.seed())
	statuses := []string{string(domain.OrderStatusPaid), string(domain.OrderStatusPending), string(domain.OrderStatusRefunded)}
	result := &GenerateOrdersResult{DemoUser: DemoOwnerEmail, DemoOwnerID: DemoOwnerID.String()}

	for i := 0; i < count; i++ {
		lines := s.randomLines(faker, catalog)
		totals := s.pricing.ComputeTotal(domain.SnapshotSubtotal(lines))
		status := faker.RandomString(statuses)
		createdAt := time.Now().AddDate(0, 0, -faker.Number(1, 30))

		tempCart, err := json.Marshal(lines)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to encode order snapshot")
		}

		orderID := uuid.New()
		_, err = s.repo.CreateBackdatedOrder(ctx, repository.CreateBackdatedOrderParams{
			ID:              postgres.UUID(orderID),
			OwnerID:         postgres.UUID(DemoOwnerID),
			SubtotalCents:   totals.Subtotal,
			ShippingCents:   totals.Shipping,
			TaxCents:        totals.Tax,
			TotalCents:      totals.Total,
			Currency:        s.currency,
			Status:          status,
			StripeSessionID: postgres.Text(fmt.Sprintf("demo_session_%d_%d", time.Now().UnixNano(), i)),
			TempCart:        tempCart,
			CreatedAt:       postgres.Timestamptz(createdAt),
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to create demo order")
		}
		result.OrdersCreated++

		// Pending orders have not been materialized yet.
		if status == string(domain.OrderStatusPending) {
			continue
		}
		for _, l := range lines {
			n, err := s.repo.CreateOrderItem(ctx, repository.CreateOrderItemParams{
				OrderID:   postgres.UUID(orderID),
				ProductID: postgres.UUID(l.ProductID),
				VariantID: postgres.NullableUUID(l.VariantID),
				Qty:       int32(l.Quantity),
				UnitCents: l.UnitPrice,
				Name:      l.Name,
				Sku:       l.SKU,
			})
			if err != nil {
				return nil, domain.Internal(err, op, "failed to create demo order item")
			}
			result.ItemsCreated += int(n)
		}
	}

	s.logger.Info("demo orders generated", "orders", result.OrdersCreated, "items", result.ItemsCreated)
	return result, nil
}

func (s *demoService) loadCatalog(ctx context.Context) ([]demoProduct, error) {
	products, err := s.repo.ListProducts(ctx, 20)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	ids := make([]pgtype.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	variants, err := s.repo.ListVariantsByProductIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	firstVariant := make(map[uuid.UUID]repository.Variant, len(variants))
	for _, v := range variants {
		pid := postgres.FromUUID(v.ProductID)
		if _, ok := firstVariant[pid]; !ok {
			firstVariant[pid] = v
		}
	}

	catalog := make([]demoProduct, len(products))
	for i, p := range products {
		catalog[i] = demoProduct{product: p}
		if v, ok := firstVariant[postgres.FromUUID(p.ID)]; ok {
			catalog[i].variant = &v
		}
	}
	return catalog, nil
}

func (s *demoService) randomLines(faker *gofakeit.Faker, catalog []demoProduct) []domain.SnapshotLine {
	picks := faker.Number(1, min(3, len(catalog)))
	order := make([]int, len(catalog))
	for i := range order {
		order[i] = i
	}
	faker.ShuffleInts(order)

	lines := make([]domain.SnapshotLine, 0, picks)
	for _, idx := range order[:picks] {
		entry := catalog[idx]
		product := domain.Product{
			ID:         postgres.FromUUID(entry.product.ID),
			Name:       entry.product.Name,
			PriceCents: entry.product.PriceCents,
		}
		var variant *domain.Variant
		if entry.variant != nil {
			variant = &domain.Variant{
				ID:         postgres.FromUUID(entry.variant.ID),
				ProductID:  product.ID,
				Name:       entry.variant.Name,
				SKU:        entry.variant.Sku,
				PriceCents: postgres.FromInt8(entry.variant.PriceCents),
			}
		}

		line := domain.SnapshotLine{
			ProductID: product.ID,
			Quantity:  faker.Number(1, 3),
			UnitPrice: domain.UnitPrice(product, variant),
			Name:      domain.LineName(product, variant),
			SKU:       domain.LineSKU(product, variant),
		}
		if variant != nil {
			id := variant.ID
			line.VariantID = &id
		}
		lines = append(lines, line)
	}
	return lines
}

// Reseed tops the catalog up to a full grid when it has fallen below the
// minimum, then restocks nearly sold-out variants.
func (s *demoService) Reseed(ctx context.Context) (*ReseedResult, error) {
	const op = "demo.reseed"

	count, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count products")
	}

	faker := gofakeit.New(s.seed())
	result := &ReseedResult{ProductCount: count}

	if count < reseedMinProducts {
		for i := int(count); i < reseedTargetProducts; i++ {
			if err := s.createProduct(ctx, faker, i); err != nil {
				return nil, domain.Internal(err, op, "failed to create product")
			}
			result.ProductsAdded++
		}
		result.ProductCount = count + int64(result.ProductsAdded)
	}

	restocked, err := s.repo.RestockLowVariants(ctx, repository.RestockLowVariantsParams{
		Stock:     int32(faker.Number(10, 59)),
		Threshold: restockThreshold,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to restock variants")
	}
	result.VariantsRestocked = restocked

	s.logger.Info("catalog reseeded",
		"products_added", result.ProductsAdded,
		"variants_restocked", restocked,
	)
	return result, nil
}

func (s *demoService) createProduct(ctx context.Context, faker *gofakeit.Faker, index int) error {
	name := faker.ProductName()
	suffix := strings.ToLower(faker.LetterN(6))
	compareAt := int64(faker.Number(45000, 54999))

	product, err := s.repo.CreateProduct(ctx, repository.CreateProductParams{
		Category:       demoCategories[index%len(demoCategories)],
		Name:           name,
		Slug:           fmt.Sprintf("%s-%d-%s", slugify(name), index+1, suffix),
		Description:    "A stunning piece from our generated collection. This item embodies the MANIC VANITY aesthetic with its bold design and premium materials.",
		PriceCents:     int64(faker.Number(5000, 44999)),
		CompareAtCents: postgres.Int8Ptr(&compareAt),
		Currency:       s.currency,
	})
	if err != nil {
		return err
	}

	size := faker.RandomString(demoSizes)
	_, err = s.repo.CreateVariant(ctx, repository.CreateVariantParams{
		ProductID: product.ID,
		Name:      size,
		Sku:       fmt.Sprintf("MV-%s-%s", strings.ToUpper(suffix), size),
		Stock:     int32(faker.Number(10, 59)),
	})
	return err
}

// slugify lower-cases s and joins its alphanumeric runs with dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
