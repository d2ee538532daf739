package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manicvanity/storefront/internal/billing"
	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/events"
	"github.com/manicvanity/storefront/internal/jobs"
	"github.com/manicvanity/storefront/internal/postgres"
	"github.com/manicvanity/storefront/internal/repository"
	"github.com/manicvanity/storefront/internal/telemetry"
)

type paymentFixture struct {
	repo      *mockQuerier
	publisher *recordingPublisher
	metrics   *telemetry.BusinessMetrics
	svc       domain.PaymentService
	owner     uuid.UUID
	variant   repository.Variant
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		repo:      newMockQuerier(),
		publisher: &recordingPublisher{},
		metrics:   telemetry.NewNopBusinessMetrics(),
		owner:     uuid.New(),
	}
	p := f.repo.addProduct("Liner", 1200)
	f.variant = f.repo.addVariant(p.ID, "Rose", "LN-ROSE", nil, 5)
	f.svc = NewPaymentService(f.repo, f.publisher, f.metrics, testLogger())
	return f
}

// seedPending stores a pending order for sessionID with one variant line of
// quantity qty.
func (f *paymentFixture) seedPending(t *testing.T, sessionID string, qty int) uuid.UUID {
	t.Helper()
	variantID := postgres.FromUUID(f.variant.ID)
	snapshot, err := json.Marshal([]domain.SnapshotLine{{
		ProductID: postgres.FromUUID(f.variant.ProductID),
		VariantID: &variantID,
		Quantity:  qty,
		UnitPrice: 1200,
		Name:      "Liner - Rose",
		SKU:       "LN-ROSE",
	}})
	require.NoError(t, err)

	id := uuid.New()
	f.repo.putOrder(repository.Order{
		ID:              postgres.UUID(id),
		OwnerID:         postgres.UUID(f.owner),
		SubtotalCents:   1200 * int64(qty),
		TotalCents:      1200*int64(qty) + 600,
		Currency:        "usd",
		Status:          string(domain.OrderStatusPending),
		StripeSessionID: postgres.Text(sessionID),
		TempCart:        snapshot,
	})
	return id
}

func completed(sessionID string) domain.CheckoutCompleted {
	return domain.CheckoutCompleted{
		EventID:         "evt_" + sessionID,
		SessionID:       sessionID,
		PaymentIntentID: "pi_" + sessionID,
		PayerEmail:      "ada@example.com",
	}
}

func TestHandleCheckoutCompleted_FinalizesPendingOrder(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.seedPending(t, "cs_1", 2)

	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_1")))

	stored := f.repo.order(orderID)
	assert.Equal(t, string(domain.OrderStatusPaid), stored.Status)
	assert.Equal(t, "pi_cs_1", stored.PaymentReference.String)
	assert.Equal(t, "ada@example.com", stored.PayerEmail.String)

	require.Len(t, f.repo.orderItems, 1)
	item := f.repo.orderItems[0]
	assert.Equal(t, int32(2), item.Qty)
	assert.Equal(t, int64(1200), item.UnitCents)
	assert.Equal(t, "LN-ROSE", item.Sku)
	assert.Equal(t, int32(3), f.repo.variants[0].Stock)

	assert.Equal(t, []pgtype.UUID{postgres.UUID(f.owner)}, f.repo.cleared)

	require.Len(t, f.repo.jobs, 1)
	assert.Equal(t, jobs.JobTypeOrderConfirmation, f.repo.jobs[0].JobType)
	var payload jobs.OrderConfirmationPayload
	require.NoError(t, json.Unmarshal(f.repo.jobs[0].Payload, &payload))
	assert.Equal(t, orderID, payload.OrderID)
	assert.Equal(t, "ada@example.com", payload.Email)

	assert.Equal(t, []string{events.TypeOrderPaid}, f.publisher.types())
	assert.Equal(t, orderID.String(), f.publisher.envelopes[0].Key)
	assert.Equal(t, "evt_cs_1", f.publisher.envelopes[0].CorrelationID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrdersPaid))
}

func TestHandleCheckoutCompleted_UnknownSession(t *testing.T) {
	f := newPaymentFixture(t)

	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_missing")))

	assert.Zero(t, f.repo.calls("MarkOrderPaid"))
	assert.Empty(t, f.repo.jobs)
	assert.Empty(t, f.publisher.types())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WebhookUnmatched.WithLabelValues(billing.EventCheckoutSessionCompleted)))
}

func TestHandleCheckoutCompleted_DuplicateDelivery(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedPending(t, "cs_dup", 1)
	event := completed("cs_dup")

	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), event))
	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), event))

	assert.Len(t, f.repo.orderItems, 1)
	assert.Len(t, f.repo.jobs, 1)
	assert.Equal(t, int32(4), f.repo.variants[0].Stock)
	assert.Equal(t, 1, f.repo.calls("MarkOrderPaid"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WebhookDuplicates.WithLabelValues(billing.EventCheckoutSessionCompleted)))
}

func TestHandleCheckoutCompleted_LostRaceOnStatusUpdate(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedPending(t, "cs_race", 1)
	f.repo.MarkOrderPaidFunc = func(ctx context.Context, arg repository.MarkOrderPaidParams) (int64, error) {
		return 0, nil
	}

	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_race")))

	assert.Empty(t, f.repo.orderItems)
	assert.Empty(t, f.repo.jobs)
	assert.Zero(t, f.repo.calls("DecrementVariantStock"))
}

func TestHandleCheckoutCompleted_TransientFailuresAreRetryable(t *testing.T) {
	t.Run("lookup", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.repo.GetOrderBySessionIDFunc = func(ctx context.Context, id pgtype.Text) (repository.Order, error) {
			return repository.Order{}, errors.New("too many connections")
		}
		err := f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_x"))
		assert.True(t, domain.IsRetryable(err))
		assert.Equal(t, ErrOrderLookupFailed.Message, domain.ErrorMessage(err))
		assert.Equal(t, "payment.checkout_completed", domain.ErrorOp(err))
	})

	t.Run("mark paid", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedPending(t, "cs_y", 1)
		f.repo.MarkOrderPaidFunc = func(ctx context.Context, arg repository.MarkOrderPaidParams) (int64, error) {
			return 0, errors.New("deadlock detected")
		}
		err := f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_y"))
		assert.True(t, domain.IsRetryable(err))
		assert.Equal(t, ErrMarkPaidFailed.Message, domain.ErrorMessage(err))
		assert.Empty(t, f.repo.orderItems)
	})
}

func TestHandleCheckoutCompleted_StockShortfallStillPays(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.seedPending(t, "cs_short", 9)

	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_short")))

	assert.Equal(t, string(domain.OrderStatusPaid), f.repo.order(orderID).Status)
	assert.Equal(t, int32(5), f.repo.variants[0].Stock, "stock never goes negative")
	assert.Len(t, f.repo.orderItems, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StockShortfalls))
}

func TestHandleCheckoutCompleted_StockShortfallReportedToSentry(t *testing.T) {
	var captured []*sentry.Event
	cleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
		Enabled: true,
		DSN:     "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			captured = append(captured, event)
			return nil
		},
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanup()
		_, _ = telemetry.InitSentry(telemetry.SentryConfig{Enabled: false}, testLogger())
	})

	f := newPaymentFixture(t)
	orderID := f.seedPending(t, "cs_short_sentry", 9)

	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_short_sentry")))

	require.Len(t, captured, 1)
	assert.Equal(t, "insufficient stock for paid order line", captured[0].Message)
	assert.Equal(t, sentry.LevelWarning, captured[0].Level)
	assert.Equal(t, orderID.String(), captured[0].Extra["order_id"])
}

func TestHandleCheckoutCompleted_BestEffortSteps(t *testing.T) {
	f := newPaymentFixture(t)
	orderID := f.seedPending(t, "cs_best", 1)
	f.repo.EnqueueJobFunc = func(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error) {
		return repository.Job{}, errors.New("jobs table locked")
	}
	f.publisher.err = errors.New("broker down")

	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_best")))

	assert.Equal(t, string(domain.OrderStatusPaid), f.repo.order(orderID).Status)
	assert.Len(t, f.repo.orderItems, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FinalizationStepFailures.WithLabelValues("confirmation_email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EventPublishFailures.WithLabelValues(events.TypeOrderPaid)))
}

func TestHandleCheckoutCompleted_MissingPayerEmail(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedPending(t, "cs_noemail", 1)
	event := completed("cs_noemail")
	event.PayerEmail = ""

	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), event))

	require.Len(t, f.repo.jobs, 1)
	var payload jobs.OrderConfirmationPayload
	require.NoError(t, json.Unmarshal(f.repo.jobs[0].Payload, &payload))
	assert.Equal(t, UnknownPayerEmail, payload.Email)
}

func TestHandleCheckoutCompleted_CorruptSnapshot(t *testing.T) {
	f := newPaymentFixture(t)
	id := uuid.New()
	f.repo.putOrder(repository.Order{
		ID:              postgres.UUID(id),
		OwnerID:         postgres.UUID(f.owner),
		Status:          string(domain.OrderStatusPending),
		StripeSessionID: postgres.Text("cs_corrupt"),
		TempCart:        []byte("{not json"),
	})

	require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_corrupt")))

	assert.Equal(t, string(domain.OrderStatusPaid), f.repo.order(id).Status)
	assert.Empty(t, f.repo.orderItems)
}

func TestHandleChargeRefunded(t *testing.T) {
	t.Run("paid order becomes refunded", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.seedPending(t, "cs_r", 1)
		require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_r")))

		err := f.svc.HandleChargeRefunded(context.Background(), domain.ChargeRefunded{
			EventID: "evt_ref", ChargeID: "ch_1", PaymentIntentID: "pi_cs_r",
		})
		require.NoError(t, err)

		assert.Equal(t, string(domain.OrderStatusRefunded), f.repo.order(orderID).Status)
		assert.Equal(t, []string{events.TypeOrderPaid, events.TypeOrderRefunded}, f.publisher.types())
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrdersRefunded))
	})

	t.Run("pending order is left alone", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.seedPending(t, "cs_p", 1)
		o := f.repo.order(orderID)
		o.PaymentReference = postgres.Text("pi_pending")
		f.repo.putOrder(o)

		err := f.svc.HandleChargeRefunded(context.Background(), domain.ChargeRefunded{
			EventID: "evt_ref", ChargeID: "ch_2", PaymentIntentID: "pi_pending",
		})
		require.NoError(t, err)

		assert.Equal(t, string(domain.OrderStatusPending), f.repo.order(orderID).Status)
		assert.Zero(t, f.repo.calls("MarkOrderRefunded"))
		assert.Empty(t, f.publisher.types())
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newPaymentFixture(t)
		err := f.svc.HandleChargeRefunded(context.Background(), domain.ChargeRefunded{
			EventID: "evt_ref", ChargeID: "ch_3", PaymentIntentID: "pi_unknown",
		})
		require.NoError(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WebhookUnmatched.WithLabelValues(billing.EventChargeRefunded)))
	})

	t.Run("no payment intent", func(t *testing.T) {
		f := newPaymentFixture(t)
		err := f.svc.HandleChargeRefunded(context.Background(), domain.ChargeRefunded{EventID: "evt_ref", ChargeID: "ch_4"})
		require.NoError(t, err)
		assert.Zero(t, f.repo.calls("GetOrderByPaymentReference"))
	})

	t.Run("second refund is a duplicate", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedPending(t, "cs_rr", 1)
		require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), completed("cs_rr")))
		event := domain.ChargeRefunded{EventID: "evt_ref", ChargeID: "ch_5", PaymentIntentID: "pi_cs_rr"}

		require.NoError(t, f.svc.HandleChargeRefunded(context.Background(), event))
		require.NoError(t, f.svc.HandleChargeRefunded(context.Background(), event))

		assert.Equal(t, 1, f.repo.calls("MarkOrderRefunded"))
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WebhookDuplicates.WithLabelValues(billing.EventChargeRefunded)))
	})
}
