package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the gateway circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive transient failures that open
	// the breaker. Default: 5
	MaxFailures uint32

	// Timeout is how long the breaker stays open before letting a probe
	// request through. Default: 30s
	Timeout time.Duration
}

// BreakerProvider guards the API calls of a Provider with a circuit breaker.
// Webhook verification is local and passes straight through.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[*CheckoutSession]
}

var _ Provider = (*BreakerProvider)(nil)

func NewBreakerProvider(next Provider, cfg BreakerConfig, logger *slog.Logger) *BreakerProvider {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*CheckoutSession](gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// Caller mistakes such as an unknown session id are not gateway
		// failures and must not trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTemporary(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerProvider{next: next, cb: cb}
}

func (b *BreakerProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	return b.execute(func() (*CheckoutSession, error) {
		return b.next.CreateCheckoutSession(ctx, params)
	})
}

func (b *BreakerProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	return b.execute(func() (*CheckoutSession, error) {
		return b.next.GetCheckoutSession(ctx, sessionID)
	})
}

func (b *BreakerProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	return b.next.VerifyWebhook(payload, signature)
}

// State exposes the breaker state for health reporting.
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerProvider) execute(fn func() (*CheckoutSession, error)) (*CheckoutSession, error) {
	cs, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrGatewayUnavailable, err)
	}
	return cs, err
}
