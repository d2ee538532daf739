package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/manicvanity/storefront/internal/billing"
	"github.com/manicvanity/storefront/internal/cart"
	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/pricing"
	"github.com/manicvanity/storefront/internal/repository"
	"github.com/manicvanity/storefront/internal/telemetry"
)

// MetadataSource tags every checkout session created by the storefront.
const MetadataSource = "manic-vanity-store"

// CheckoutConfig holds the values that shape the hosted payment page.
type CheckoutConfig struct {
	// BaseURL is the public storefront origin the gateway redirects back to.
	BaseURL  string
	Currency string
}

type checkoutService struct {
	repo     repository.Querier
	provider billing.Provider
	pricing  *pricing.Calculator
	config   CheckoutConfig
	metrics  *telemetry.BusinessMetrics
	logger   *slog.Logger
}

// NewCheckoutService creates the checkout session initiator.
func NewCheckoutService(
	repo repository.Querier,
	provider billing.Provider,
	calc *pricing.Calculator,
	config CheckoutConfig,
	metrics *telemetry.BusinessMetrics,
	logger *slog.Logger,
) domain.CheckoutService {
	if calc == nil {
		calc = pricing.Default()
	}
	if config.Currency == "" {
		config.Currency = "usd"
	}
	if metrics == nil {
		metrics = telemetry.NewNopBusinessMetrics()
	}
	return &checkoutService{
		repo:     repo,
		provider: provider,
		pricing:  calc,
		config:   config,
		metrics:  metrics,
		logger:   logger.With("service", "checkout"),
	}
}

// StartCheckout prices items from the live catalog, opens a hosted checkout
// session and records a pending order for identified shoppers. The order is
// written only after the gateway accepted the session; a failed insert still
// returns the URL, with a nil order id.
func (s *checkoutService) StartCheckout(ctx context.Context, items []domain.CheckoutItem, ownerID *uuid.UUID) (*domain.CheckoutResult, error) {
	const op = "checkout.start"

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	snapshot, err := s.priceItems(ctx, items)
	if err != nil {
		return nil, domain.Unavailable(err, op, "failed to load catalog")
	}
	if len(snapshot) == 0 {
		s.metrics.CheckoutFailures.WithLabelValues("no_purchasable").Inc()
		return nil, ErrNoPurchasable
	}

	totals := s.pricing.ComputeTotal(domain.SnapshotSubtotal(snapshot))
	orderID := uuid.New()

	session, err := s.provider.CreateCheckoutSession(ctx, s.sessionParams(orderID, ownerID, snapshot, totals))
	if err != nil {
		s.metrics.CheckoutFailures.WithLabelValues("gateway").Inc()
		s.logger.Error("failed to create checkout session",
			"order_id", orderID,
			"error", err,
		)
		if !errors.Is(err, billing.ErrGatewayUnavailable) {
			telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{"order_id": orderID.String()})
		}
		return nil, domain.Unavailable(err, op, ErrCheckoutFailed.Message)
	}
	s.metrics.CheckoutSessionsCreated.Inc()

	result := &domain.CheckoutResult{URL: session.URL}
	if ownerID == nil {
		s.logger.Info("guest checkout session created", "session_id", session.ID, "total_cents", totals.Total)
		return result, nil
	}

	if err := s.recordPendingOrder(ctx, orderID, *ownerID, session.ID, snapshot, totals); err != nil {
		s.metrics.CheckoutOrderInsertFailures.Inc()
		s.logger.Error("checkout session created but pending order not stored",
			"order_id", orderID,
			"session_id", session.ID,
			"owner_id", *ownerID,
			"error", err,
		)
		telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{
			"order_id":   orderID.String(),
			"session_id": session.ID,
		})
		return result, nil
	}

	s.logger.Info("checkout session created",
		"order_id", orderID,
		"session_id", session.ID,
		"owner_id", *ownerID,
		"total_cents", totals.Total,
	)
	result.OrderID = orderID
	return result, nil
}

// priceItems resolves each item against the catalog at call time. Items whose
// product or variant no longer exists are dropped. Repeated (product, variant)
// pairs fold into one line so the snapshot matches the order lines written at
// finalization.
func (s *checkoutService) priceItems(ctx context.Context, items []domain.CheckoutItem) ([]domain.SnapshotLine, error) {
	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	catalog, err := cart.LoadCatalog(ctx, s.repo, productIDs)
	if err != nil {
		return nil, err
	}

	snapshot := make([]domain.SnapshotLine, 0, len(items))
	seen := make(map[domain.LineKey]int, len(items))
	for _, item := range items {
		product, variant, ok := catalog.Resolve(item.ProductID, item.VariantID)
		if !ok {
			s.logger.Info("dropping unavailable item from checkout",
				"product_id", item.ProductID,
				"variant_id", item.VariantID,
			)
			continue
		}
		line := domain.SnapshotLine{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: domain.UnitPrice(product, variant),
			Name:      domain.LineName(product, variant),
			SKU:       domain.LineSKU(product, variant),
		}
		if variant != nil {
			id := variant.ID
			line.VariantID = &id
		}
		key := domain.NewLineKey(line.ProductID, line.VariantID)
		if i, ok := seen[key]; ok {
			snapshot[i].Quantity += line.Quantity
			continue
		}
		seen[key] = len(snapshot)
		snapshot = append(snapshot, line)
	}
	return snapshot, nil
}

func (s *checkoutService) sessionParams(orderID uuid.UUID, ownerID *uuid.UUID, snapshot []domain.SnapshotLine, totals pricing.Totals) billing.CreateCheckoutSessionParams {
	lineItems := make([]billing.LineItem, 0, len(snapshot)+2)
	for _, l := range snapshot {
		metadata := map[string]string{"productId": l.ProductID.String()}
		if l.VariantID != nil {
			metadata["variantId"] = l.VariantID.String()
		}
		lineItems = append(lineItems, billing.LineItem{
			Name:            l.Name,
			UnitAmountCents: l.UnitPrice,
			Quantity:        int64(l.Quantity),
			Metadata:        metadata,
		})
	}
	if totals.Shipping > 0 {
		lineItems = append(lineItems, billing.LineItem{Name: "Shipping", UnitAmountCents: totals.Shipping, Quantity: 1})
	}
	if totals.Tax > 0 {
		lineItems = append(lineItems, billing.LineItem{Name: "Tax", UnitAmountCents: totals.Tax, Quantity: 1})
	}

	params := billing.CreateCheckoutSessionParams{
		Currency:       s.config.Currency,
		LineItems:      lineItems,
		SuccessURL:     s.config.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      s.config.BaseURL + "/checkout/cancel",
		Metadata:       map[string]string{"source": MetadataSource},
		IdempotencyKey: "checkout-" + orderID.String(),
	}
	if ownerID != nil {
		params.ClientReferenceID = orderID.String()
		params.Metadata["userId"] = ownerID.String()
		params.Metadata["orderId"] = orderID.String()
	}
	return params
}

func (s *checkoutService) recordPendingOrder(ctx context.Context, orderID, ownerID uuid.UUID, sessionID string, snapshot []domain.SnapshotLine, totals pricing.Totals) error {
	tempCart, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	_, err = s.repo.CreateOrder(ctx, repository.CreateOrderParams{
		ID:              postgres.UUID(orderID),
		OwnerID:         postgres.UUID(ownerID),
		SubtotalCents:   totals.Subtotal,
		ShippingCents:   totals.Shipping,
		TaxCents:        totals.Tax,
		TotalCents:      totals.Total,
		Currency:        s.config.Currency,
		StripeSessionID: postgres.Text(sessionID),
		TempCart:        tempCart,
	})
	return err
}

// GetCheckoutSession returns the gateway's status of a session for the
// success page.
func (s *checkoutService) GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSessionStatus, error) {
	const op = "checkout.get_session"

	if sessionID == "" {
		return nil, domain.Invalid(op, "session_id is required")
	}

	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrSessionNotFound):
			return nil, ErrSessionNotFound
		case billing.IsTemporary(err):
			return nil, domain.Unavailable(err, op, "Payment provider unavailable. Please try again.")
		default:
			return nil, domain.Internal(err, op, "failed to retrieve checkout session")
		}
	}

	return &domain.CheckoutSessionStatus{
		ID:            session.ID,
		AmountTotal:   session.AmountTotal,
		Currency:      session.Currency,
		PaymentStatus: session.PaymentStatus,
		CustomerEmail: session.CustomerEmail,
		Status:        session.Status,
	}, nil
}
