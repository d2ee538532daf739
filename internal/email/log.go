package email

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// LogSender writes emails to the log instead of delivering them. It keeps
// every message it was given so development tooling and tests can inspect
// them.
type LogSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Email
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With("sender", "log")}
}

func (s *LogSender) Send(_ context.Context, email *Email) (string, error) {
	if len(email.To) == 0 {
		return "", ErrNoRecipients
	}

	id := "log-" + uuid.NewString()
	s.logger.Info("email",
		"message_id", id,
		"to", email.To,
		"subject", email.Subject,
		"body", email.TextBody,
	)

	s.mu.Lock()
	s.sent = append(s.sent, *email)
	s.mu.Unlock()

	return id, nil
}

// Sent returns a copy of the messages sent so far.
func (s *LogSender) Sent() []Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Email(nil), s.sent...)
}
