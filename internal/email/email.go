package email

import "context"

// Email represents an email message to be sent.
type Email struct {
	To       []string          // Recipient email addresses
	From     string            // Sender, "Name <address>" or a bare address
	Subject  string            // Email subject
	TextBody string            // Plain text body
	HTMLBody string            // HTML body (optional)
	Headers  map[string]string // Custom headers (optional)
}

// Sender defines the interface for sending emails.
// Implementations can use SMTP or simply log the message in development.
type Sender interface {
	// Send sends an email message.
	// Returns a message ID for correlation in logs.
	Send(ctx context.Context, email *Email) (string, error)
}
