package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/manicvanity/storefront/internal/billing"
	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/handler"
	"github.com/manicvanity/storefront/internal/middleware"
	"github.com/manicvanity/storefront/internal/telemetry"
)

// SignatureHeader carries Stripe's HMAC of the raw payload.
const SignatureHeader = "Stripe-Signature"

// StripeHandler receives Stripe webhook events and hands the verified ones
// to the payment service.
type StripeHandler struct {
	provider billing.Provider
	payments domain.PaymentService
	metrics  *telemetry.BusinessMetrics
	logger   *slog.Logger
}

func NewStripeHandler(provider billing.Provider, payments domain.PaymentService, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *StripeHandler {
	if metrics == nil {
		metrics = telemetry.NewNopBusinessMetrics()
	}
	return &StripeHandler{
		provider: provider,
		payments: payments,
		metrics:  metrics,
		logger:   logger.With("handler", "stripe_webhook"),
	}
}

// HandleWebhook handles POST /webhooks/stripe.
//
// Nothing is looked up before the signature checks out. A verified event is
// acknowledged with 200 unless processing hit a transient failure, in which
// case a 5xx lets Stripe redeliver it.
//
// Stripe CLI testing:
//
//	stripe listen --forward-to localhost:3000/webhooks/stripe
//	stripe trigger checkout.session.completed
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	logger := middleware.GetLogger(ctx, h.logger)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handler.ErrorResponse(w, r, domain.Errorf(domain.ETOOLARGE, "webhook.stripe", "Payload too large"))
			return
		}
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "Error reading request body"))
		return
	}

	event, err := h.provider.VerifyWebhook(payload, r.Header.Get(SignatureHeader))
	if err != nil {
		if errors.Is(err, billing.ErrMalformedEvent) {
			// Signed by Stripe but undecodable; a redelivery would fail the same way.
			logger.Error("malformed webhook event", "error", err, "payload_bytes", len(payload))
			telemetry.CaptureErrorFromContext(ctx, err, nil)
			acknowledge(w)
			return
		}
		h.metrics.WebhookSignatureFailures.Inc()
		logger.Warn("webhook signature rejected",
			"security_event", true,
			"signature_present", r.Header.Get(SignatureHeader) != "",
			"client_ip", middleware.GetClientIP(r),
			"error", err,
		)
		handler.ErrorResponse(w, r, domain.ErrInvalidSignature)
		return
	}

	logger = logger.With("event_id", event.ID, "event_type", event.Type)
	h.metrics.WebhookReceived.WithLabelValues(event.Type).Inc()
	defer func() {
		h.metrics.WebhookLatency.WithLabelValues(event.Type).Observe(time.Since(start).Seconds())
	}()

	switch event.Type {
	case billing.EventCheckoutSessionCompleted:
		err = h.checkoutCompleted(r, event, logger)
	case billing.EventChargeRefunded:
		err = h.chargeRefunded(r, event, logger)
	default:
		logger.Info("unhandled webhook event type")
	}

	if err != nil && domain.IsRetryable(err) {
		logger.Error("webhook processing failed; requesting redelivery", "error", err)
		handler.ErrorResponse(w, r, err)
		return
	}
	if err != nil {
		logger.Error("webhook processing failed", "error", err)
	}

	acknowledge(w)
}

func (h *StripeHandler) checkoutCompleted(r *http.Request, event *billing.Event, logger *slog.Logger) error {
	cs := event.CheckoutSession
	if cs == nil || cs.ID == "" {
		logger.Warn("checkout.session.completed without a session object")
		return nil
	}
	return h.payments.HandleCheckoutCompleted(r.Context(), domain.CheckoutCompleted{
		EventID:         event.ID,
		SessionID:       cs.ID,
		PaymentIntentID: cs.PaymentIntentID,
		PayerEmail:      cs.CustomerEmail,
		AmountTotal:     cs.AmountTotal,
	})
}

func (h *StripeHandler) chargeRefunded(r *http.Request, event *billing.Event, logger *slog.Logger) error {
	ch := event.Charge
	if ch == nil {
		logger.Warn("charge.refunded without a charge object")
		return nil
	}
	return h.payments.HandleChargeRefunded(r.Context(), domain.ChargeRefunded{
		EventID:         event.ID,
		ChargeID:        ch.ID,
		PaymentIntentID: ch.PaymentIntentID,
	})
}

func acknowledge(w http.ResponseWriter) {
	handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
}
