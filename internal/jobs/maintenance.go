package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/manicvanity/storefront/internal/repository"
	"github.com/manicvanity/storefront/internal/telemetry"
)

// Job type constants for maintenance jobs
const (
	JobTypeReportStalePending = "maintenance:report_stale_pending"

	QueueMaintenance = "maintenance"
)

// ReportStalePendingPayload sets the age after which a pending order is
// reported.
type ReportStalePendingPayload struct {
	OlderThanSeconds int64 `json:"older_than_seconds"`
}

// EnqueueReportStalePending schedules a scan for pending orders older than
// olderThan. Pending orders are only reported, never changed.
func EnqueueReportStalePending(ctx context.Context, q Enqueuer, olderThan time.Duration) error {
	payloadJSON, err := json.Marshal(ReportStalePendingPayload{OlderThanSeconds: int64(olderThan.Seconds())})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = q.EnqueueJob(ctx, repository.EnqueueJobParams{
		JobType:    JobTypeReportStalePending,
		Queue:      QueueMaintenance,
		Payload:    payloadJSON,
		Priority:   10, // Low priority - maintenance task
		MaxRetries: 1,  // Don't retry on failure, will run again next scheduled time
		ScheduledAt: pgtype.Timestamptz{
			Time:  time.Now(),
			Valid: true,
		},
		TimeoutSeconds: 60,
		Metadata:       []byte("{}"),
	})

	return err
}

// StaleOrderCounter counts pending orders created before a cutoff.
type StaleOrderCounter interface {
	CountStalePendingOrders(ctx context.Context, createdAt pgtype.Timestamptz) (int64, error)
}

// ProcessMaintenanceJob processes a maintenance job based on its type
func ProcessMaintenanceJob(ctx context.Context, job *repository.Job, q StaleOrderCounter, metrics *telemetry.BusinessMetrics, logger *slog.Logger) error {
	switch job.JobType {
	case JobTypeReportStalePending:
		var payload ReportStalePendingPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal stale pending payload: %w", err)
		}
		_, err := reportStalePending(ctx, q, time.Duration(payload.OlderThanSeconds)*time.Second, metrics, logger)
		return err
	default:
		return fmt.Errorf("unknown maintenance job type: %s", job.JobType)
	}
}

func reportStalePending(ctx context.Context, q StaleOrderCounter, olderThan time.Duration, metrics *telemetry.BusinessMetrics, logger *slog.Logger) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	count, err := q.CountStalePendingOrders(ctx, pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("failed to count stale pending orders: %w", err)
	}

	metrics.StalePendingOrders.Set(float64(count))
	if count > 0 {
		logger.Warn("pending orders awaiting payment past report age",
			"count", count,
			"older_than", olderThan,
		)
	}
	return count, nil
}

// IsMaintenanceJob checks if a job type is a maintenance job
func IsMaintenanceJob(jobType string) bool {
	return jobType == JobTypeReportStalePending
}
