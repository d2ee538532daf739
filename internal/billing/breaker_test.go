package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBreakerProvider_OpensAfterTransientFailures(t *testing.T) {
	mock := NewMockProvider()
	mock.CreateCheckoutSessionFunc = func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
		return nil, &StripeError{Message: "upstream", HTTPStatus: 503}
	}

	b := NewBreakerProvider(mock, BreakerConfig{MaxFailures: 3, Timeout: time.Minute}, quietLogger())

	for range 3 {
		_, err := b.CreateCheckoutSession(context.Background(), CreateCheckoutSessionParams{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrGatewayUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.CreateCheckoutSession(context.Background(), CreateCheckoutSessionParams{})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Len(t, mock.CallLog, 3, "open breaker short-circuits the gateway")
}

func TestBreakerProvider_CallerErrorsDoNotTrip(t *testing.T) {
	mock := NewMockProvider()
	b := NewBreakerProvider(mock, BreakerConfig{MaxFailures: 2, Timeout: time.Minute}, quietLogger())

	for range 5 {
		_, err := b.GetCheckoutSession(context.Background(), "cs_missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerProvider_VerifyWebhookPassesThrough(t *testing.T) {
	mock := NewMockProvider()
	mock.CreateCheckoutSessionFunc = func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	b := NewBreakerProvider(mock, BreakerConfig{MaxFailures: 1, Timeout: time.Minute}, quietLogger())

	_, _ = b.CreateCheckoutSession(context.Background(), CreateCheckoutSessionParams{})
	require.Equal(t, gobreaker.StateOpen, b.State())

	ev, err := b.VerifyWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, "evt_mock", ev.ID)
}
