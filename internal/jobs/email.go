package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/manicvanity/storefront/internal/email"
	"github.com/manicvanity/storefront/internal/repository"
)

// Job type constants for email jobs
const (
	JobTypeOrderConfirmation = "email:order_confirmation"

	QueueEmail = "email"
)

// Enqueuer is the subset of the query layer needed to schedule jobs.
type Enqueuer interface {
	EnqueueJob(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error)
}

// OrderConfirmationPayload represents the payload for an order confirmation email job
type OrderConfirmationPayload struct {
	OrderID    uuid.UUID `json:"order_id"`
	Email      string    `json:"email"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
}

// EnqueueOrderConfirmation enqueues an order confirmation email job
func EnqueueOrderConfirmation(ctx context.Context, q Enqueuer, payload OrderConfirmationPayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	metadata, err := json.Marshal(map[string]string{"order_id": payload.OrderID.String()})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = q.EnqueueJob(ctx, repository.EnqueueJobParams{
		JobType:    JobTypeOrderConfirmation,
		Queue:      QueueEmail,
		Payload:    payloadJSON,
		Priority:   100,
		MaxRetries: 3,
		ScheduledAt: pgtype.Timestamptz{
			Time:  time.Now(),
			Valid: true,
		},
		TimeoutSeconds: 30,
		Metadata:       metadata,
	})

	return err
}

// ConfirmationSender delivers order confirmation emails.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, data email.OrderConfirmationEmail) error
}

// ProcessEmailJob processes an email job based on its type
func ProcessEmailJob(ctx context.Context, job *repository.Job, sender ConfirmationSender) error {
	switch job.JobType {
	case JobTypeOrderConfirmation:
		var payload OrderConfirmationPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal order confirmation payload: %w", err)
		}

		return sender.SendOrderConfirmation(ctx, email.OrderConfirmationEmail{
			OrderID:    payload.OrderID,
			Email:      payload.Email,
			TotalCents: payload.TotalCents,
			Currency:   payload.Currency,
		})

	default:
		return fmt.Errorf("unknown email job type: %s", job.JobType)
	}
}

// IsEmailJob checks if a job type is an email job
func IsEmailJob(jobType string) bool {
	return jobType == JobTypeOrderConfirmation
}
