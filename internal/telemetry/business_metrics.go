package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for the order lifecycle.
type BusinessMetrics struct {
	// Cart
	CartMerges *prometheus.CounterVec

	// Checkout
	CheckoutSessionsCreated     prometheus.Counter
	CheckoutFailures            *prometheus.CounterVec
	CheckoutOrderInsertFailures prometheus.Counter

	// Orders
	OrdersPaid         prometheus.Counter
	OrdersRefunded     prometheus.Counter
	OrderValue         prometheus.Histogram
	RevenueCollected   prometheus.Counter
	StalePendingOrders prometheus.Gauge

	// Finalisation
	StockShortfalls          prometheus.Counter
	FinalizationStepFailures *prometheus.CounterVec

	// Webhooks
	WebhookReceived          *prometheus.CounterVec
	WebhookSignatureFailures prometheus.Counter
	WebhookDuplicates        *prometheus.CounterVec
	WebhookUnmatched         *prometheus.CounterVec
	WebhookLatency           *prometheus.HistogramVec

	// Background jobs
	JobsEnqueued  *prometheus.CounterVec
	JobsProcessed *prometheus.CounterVec
	JobsFailed    *prometheus.CounterVec
	JobDuration   *prometheus.HistogramVec

	// Email delivery
	EmailSent   *prometheus.CounterVec
	EmailFailed *prometheus.CounterVec

	// Domain events
	EventsPublished      *prometheus.CounterVec
	EventPublishFailures *prometheus.CounterVec
}

// NewBusinessMetrics creates the metrics and registers them with reg. A nil
// reg uses the default registerer.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "manicvanity"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	subsystem := "business"
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		}, labels)
	}

	return &BusinessMetrics{
		CartMerges: counterVec("cart_merges_total", "Guest carts merged into account carts on sign-in", "result"),

		CheckoutSessionsCreated:     counter("checkout_sessions_created_total", "Checkout sessions created at the gateway"),
		CheckoutFailures:            counterVec("checkout_failures_total", "Checkout attempts that returned an error", "reason"),
		CheckoutOrderInsertFailures: counter("checkout_order_insert_failures_total", "Sessions created whose pending order could not be stored"),

		OrdersPaid:     counter("orders_paid_total", "Orders transitioned to paid"),
		OrdersRefunded: counter("orders_refunded_total", "Orders transitioned to refunded"),
		OrderValue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "order_value_cents",
			Help:      "Total of paid orders in minor currency units",
			Buckets:   []float64{1000, 2500, 5000, 10000, 25000, 50000, 100000},
		}),
		RevenueCollected: counter("revenue_collected_cents_total", "Sum of paid order totals in minor currency units"),
		StalePendingOrders: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stale_pending_orders",
			Help:      "Pending orders older than the report age at the last scan",
		}),

		StockShortfalls:          counter("stock_shortfall_total", "Order lines whose stock decrement found too little stock"),
		FinalizationStepFailures: counterVec("finalization_step_failures_total", "Best-effort finalisation steps that failed", "step"),

		WebhookReceived:          counterVec("webhook_received_total", "Verified webhook events received", "event_type"),
		WebhookSignatureFailures: counter("webhook_signature_failures_total", "Webhook requests rejected for a missing or invalid signature"),
		WebhookDuplicates:        counterVec("webhook_duplicates_total", "Webhook deliveries for orders already past pending", "event_type"),
		WebhookUnmatched:         counterVec("webhook_unmatched_total", "Webhook events with no matching order", "event_type"),
		WebhookLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_processing_duration_seconds",
			Help:      "Time spent handling a verified webhook event",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),

		JobsEnqueued:  counterVec("jobs_enqueued_total", "Background jobs enqueued", "job_type"),
		JobsProcessed: counterVec("jobs_processed_total", "Background jobs completed", "job_type"),
		JobsFailed:    counterVec("jobs_failed_total", "Background job attempts that failed", "job_type"),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Background job processing time",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"job_type"}),

		EmailSent:   counterVec("email_sent_total", "Emails handed to the mail transport", "template"),
		EmailFailed: counterVec("email_failed_total", "Emails the transport rejected", "template"),

		EventsPublished:      counterVec("events_published_total", "Domain events published", "event_type"),
		EventPublishFailures: counterVec("event_publish_failures_total", "Domain events that could not be published", "event_type"),
	}
}

// NewNopBusinessMetrics returns metrics registered with a private registry,
// for components constructed without a real one.
func NewNopBusinessMetrics() *BusinessMetrics {
	return NewBusinessMetrics("", prometheus.NewRegistry())
}

// Global instance for easy access from handlers
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace, nil)
	return Business
}
