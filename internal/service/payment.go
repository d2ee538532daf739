package service

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/manicvanity/storefront/internal/billing"
	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/events"
	"github.com/manicvanity/storefront/internal/jobs"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/repository"
	"github.com/manicvanity/storefront/internal/telemetry"
)

// UnknownPayerEmail is the confirmation recipient when the gateway did not
// report the payer's address.
const UnknownPayerEmail = "unknown@example.com"

type paymentService struct {
	repo      repository.Querier
	publisher events.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

// NewPaymentService creates the handler for verified gateway events.
func NewPaymentService(
	repo repository.Querier,
	publisher events.Publisher,
	metrics *telemetry.BusinessMetrics,
	logger *slog.Logger,
) domain.PaymentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if metrics == nil {
		metrics = telemetry.NewNopBusinessMetrics()
	}
	return &paymentService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("service", "payment"),
	}
}

// HandleCheckoutCompleted moves the session's order from pending to paid and
// finalizes it. The conditional status update is the only gate: whichever
// delivery wins it materializes the order, every other delivery is a
// duplicate. Finalization steps after the gate are best-effort.
func (s *paymentService) HandleCheckoutCompleted(ctx context.Context, event domain.CheckoutCompleted) error {
	const op = "payment.checkout_completed"
	logger := s.logger.With("event_id", event.EventID, "session_id", event.SessionID)

	row, err := s.repo.GetOrderBySessionID(ctx, postgres.Text(event.SessionID))
	if err != nil {
		if postgres.IsNoRows(err) {
			s.metrics.WebhookUnmatched.WithLabelValues(billing.EventCheckoutSessionCompleted).Inc()
			logger.Info("no order for checkout session")
			return nil
		}
		logger.Error("failed to look up order for session", "error", err)
		return domain.Unavailable(err, op, ErrOrderLookupFailed.Message)
	}

	order, err := orderFromRow(row)
	logger = logger.With("order_id", order.ID)
	if err != nil {
		// The payment still happened; record it without line items.
		logger.Error("order snapshot is unreadable", "error", err)
		telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{"order_id": order.ID.String()})
	}

	if order.Status != domain.OrderStatusPending {
		s.metrics.WebhookDuplicates.WithLabelValues(billing.EventCheckoutSessionCompleted).Inc()
		logger.Info("duplicate checkout completion ignored", "status", order.Status)
		return nil
	}

	n, err := s.repo.MarkOrderPaid(ctx, repository.MarkOrderPaidParams{
		ID:               row.ID,
		PaymentReference: postgres.Text(event.PaymentIntentID),
		PayerEmail:       postgres.Text(event.PayerEmail),
	})
	if err != nil {
		logger.Error("failed to mark order paid", "error", err)
		telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{"order_id": order.ID.String()})
		return domain.Unavailable(err, op, ErrMarkPaidFailed.Message)
	}
	if n == 0 {
		s.metrics.WebhookDuplicates.WithLabelValues(billing.EventCheckoutSessionCompleted).Inc()
		logger.Info("order already left pending, concurrent delivery won")
		return nil
	}

	order.Status = domain.OrderStatusPaid
	order.PaymentReference = event.PaymentIntentID
	order.PayerEmail = event.PayerEmail

	s.materializeLines(ctx, order, logger)
	s.clearOwnerCart(ctx, order, logger)
	s.enqueueConfirmation(ctx, order, logger)
	s.publish(ctx, events.TypeOrderPaid, order, event.EventID, logger)

	s.metrics.OrdersPaid.Inc()
	s.metrics.OrderValue.Observe(float64(order.TotalCents))
	s.metrics.RevenueCollected.Add(float64(order.TotalCents))
	logger.Info("order paid", "total_cents", order.TotalCents, "lines", len(order.TempCart))
	return nil
}

// materializeLines writes one order line per snapshot entry and takes stock
// for variant lines. Each step is independent; a failure is logged and the
// rest continue.
func (s *paymentService) materializeLines(ctx context.Context, order *domain.Order, logger *slog.Logger) {
	for _, line := range order.TempCart {
		lineLogger := logger.With("product_id", line.ProductID, "variant_id", line.VariantID)

		if _, err := s.repo.CreateOrderItem(ctx, repository.CreateOrderItemParams{
			OrderID:   postgres.UUID(order.ID),
			ProductID: postgres.UUID(line.ProductID),
			VariantID: postgres.NullableUUID(line.VariantID),
			Qty:       int32(line.Quantity),
			UnitCents: line.UnitPrice,
			Name:      line.Name,
			Sku:       line.SKU,
		}); err != nil {
			s.metrics.FinalizationStepFailures.WithLabelValues("order_item").Inc()
			lineLogger.Error("failed to create order item", "error", err)
		}

		if line.VariantID == nil {
			continue
		}
		n, err := s.repo.DecrementVariantStock(ctx, repository.DecrementVariantStockParams{
			ID:       postgres.UUID(*line.VariantID),
			Quantity: int32(line.Quantity),
		})
		switch {
		case err != nil:
			s.metrics.FinalizationStepFailures.WithLabelValues("stock").Inc()
			lineLogger.Error("failed to decrement stock", "error", err)
		case n == 0:
			s.metrics.StockShortfalls.Inc()
			lineLogger.Warn("insufficient stock for paid order line", "quantity", line.Quantity)
			telemetry.CaptureMessage("insufficient stock for paid order line", sentry.LevelWarning, map[string]interface{}{
				"order_id":   order.ID.String(),
				"variant_id": line.VariantID.String(),
				"quantity":   line.Quantity,
			})
		}
	}
}

func (s *paymentService) clearOwnerCart(ctx context.Context, order *domain.Order, logger *slog.Logger) {
	if order.OwnerID == nil {
		return
	}
	if _, err := s.repo.ClearCartByOwner(ctx, postgres.UUID(*order.OwnerID)); err != nil {
		s.metrics.FinalizationStepFailures.WithLabelValues("clear_cart").Inc()
		logger.Error("failed to clear owner cart", "owner_id", *order.OwnerID, "error", err)
	}
}

func (s *paymentService) enqueueConfirmation(ctx context.Context, order *domain.Order, logger *slog.Logger) {
	recipient := order.PayerEmail
	if recipient == "" {
		recipient = UnknownPayerEmail
	}

	err := jobs.EnqueueOrderConfirmation(ctx, s.repo, jobs.OrderConfirmationPayload{
		OrderID:    order.ID,
		Email:      recipient,
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
	})
	if err != nil {
		s.metrics.FinalizationStepFailures.WithLabelValues("confirmation_email").Inc()
		logger.Error("failed to enqueue confirmation email", "error", err)
		return
	}
	s.metrics.JobsEnqueued.WithLabelValues(jobs.JobTypeOrderConfirmation).Inc()
}

func (s *paymentService) publish(ctx context.Context, eventType string, order *domain.Order, correlationID string, logger *slog.Logger) {
	env, err := events.NewOrderEvent(eventType, order, correlationID)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.metrics.EventPublishFailures.WithLabelValues(eventType).Inc()
		logger.Warn("failed to publish order event", "event_type", eventType, "error", err)
		return
	}
	s.metrics.EventsPublished.WithLabelValues(eventType).Inc()
}

// HandleChargeRefunded moves a paid order to refunded. Charges for unknown
// payments, or for orders that are not paid, are logged and ignored.
func (s *paymentService) HandleChargeRefunded(ctx context.Context, event domain.ChargeRefunded) error {
	const op = "payment.charge_refunded"
	logger := s.logger.With("event_id", event.EventID, "charge_id", event.ChargeID, "payment_intent_id", event.PaymentIntentID)

	if event.PaymentIntentID == "" {
		s.metrics.WebhookUnmatched.WithLabelValues(billing.EventChargeRefunded).Inc()
		logger.Info("refunded charge has no payment intent")
		return nil
	}

	row, err := s.repo.GetOrderByPaymentReference(ctx, postgres.Text(event.PaymentIntentID))
	if err != nil {
		if postgres.IsNoRows(err) {
			s.metrics.WebhookUnmatched.WithLabelValues(billing.EventChargeRefunded).Inc()
			logger.Info("no order for refunded charge")
			return nil
		}
		logger.Error("failed to look up order for refund", "error", err)
		return domain.Unavailable(err, op, ErrOrderLookupFailed.Message)
	}

	order, _ := orderFromRow(row)
	logger = logger.With("order_id", order.ID)

	if order.Status != domain.OrderStatusPaid {
		if order.Status == domain.OrderStatusRefunded {
			s.metrics.WebhookDuplicates.WithLabelValues(billing.EventChargeRefunded).Inc()
		}
		logger.Info("refund ignored for order not in paid state", "status", order.Status)
		return nil
	}

	n, err := s.repo.MarkOrderRefunded(ctx, row.ID)
	if err != nil {
		logger.Error("failed to mark order refunded", "error", err)
		return domain.Unavailable(err, op, "Could not record refund")
	}
	if n == 0 {
		s.metrics.WebhookDuplicates.WithLabelValues(billing.EventChargeRefunded).Inc()
		logger.Info("order already refunded by a concurrent delivery")
		return nil
	}

	order.Status = domain.OrderStatusRefunded
	s.publish(ctx, events.TypeOrderRefunded, order, event.EventID, logger)
	s.metrics.OrdersRefunded.Inc()
	logger.Info("order refunded")
	return nil
}
