package billing

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Simulates successful checkout flows without calling Stripe API.
type MockProvider struct {
	// CreateCheckoutSessionFunc allows customizing session creation behavior
	CreateCheckoutSessionFunc func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSessionFunc allows customizing session retrieval behavior
	GetCheckoutSessionFunc func(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// VerifyWebhookFunc allows customizing webhook verification behavior
	VerifyWebhookFunc func(payload []byte, signature string) (*Event, error)

	// Sessions stores created sessions for retrieval
	Sessions map[string]*CheckoutSession

	// LastCreateParams is the most recent CreateCheckoutSession input
	LastCreateParams *CreateCheckoutSessionParams

	// CallLog tracks method calls for test assertions
	CallLog []string

	mu sync.Mutex
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sessions: make(map[string]*CheckoutSession),
		CallLog:  []string{},
	}
}

// CreateCheckoutSession creates a mock checkout session.
func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCheckoutSession(%d items, %s)", len(params.LineItems), params.Currency))
	m.LastCreateParams = &params
	m.mu.Unlock()

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	var total int64
	for _, item := range params.LineItems {
		total += item.UnitAmountCents * item.Quantity
	}

	id := "cs_test_" + uuid.NewString()
	cs := &CheckoutSession{
		ID:                id,
		URL:               "https://checkout.stripe.com/c/pay/" + id,
		AmountTotal:       total,
		Currency:          params.Currency,
		PaymentStatus:     "unpaid",
		Status:            "open",
		ClientReferenceID: params.ClientReferenceID,
		Metadata:          params.Metadata,
	}

	m.mu.Lock()
	m.Sessions[id] = cs
	m.mu.Unlock()
	return cs, nil
}

// GetCheckoutSession retrieves a mock checkout session.
func (m *MockProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetCheckoutSession(%s)", sessionID))
	m.mu.Unlock()

	if m.GetCheckoutSessionFunc != nil {
		return m.GetCheckoutSessionFunc(ctx, sessionID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.Sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cs, nil
}

// VerifyWebhook accepts any non-empty signature by default.
func (m *MockProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, "VerifyWebhook")
	m.mu.Unlock()

	if m.VerifyWebhookFunc != nil {
		return m.VerifyWebhookFunc(payload, signature)
	}
	if signature == "" {
		return nil, ErrInvalidWebhookSignature
	}
	return &Event{ID: "evt_mock", Type: "mock.event"}, nil
}
