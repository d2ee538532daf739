package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/manicvanity/storefront/internal/jobs"
	"github.com/manicvanity/storefront/internal/repository"
	"github.com/manicvanity/storefront/internal/telemetry"
)

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string

	// PollInterval is how often to check for new jobs
	PollInterval time.Duration

	// MaxConcurrency is the maximum number of jobs to process concurrently
	MaxConcurrency int

	// Queue name to process (empty string = all queues)
	Queue string

	// StaleReportEvery schedules a report_stale_pending job at this
	// interval. Zero disables the schedule.
	StaleReportEvery time.Duration

	// StalePendingAfter is the age at which a pending order is reported.
	StalePendingAfter time.Duration
}

// Queries is the job queue surface the worker drives.
type Queries interface {
	jobs.Enqueuer
	jobs.StaleOrderCounter
	ClaimNextJob(ctx context.Context, arg repository.ClaimNextJobParams) (repository.Job, error)
	CompleteJob(ctx context.Context, id pgtype.UUID) error
	FailJob(ctx context.Context, arg repository.FailJobParams) (repository.Job, error)
}

// Worker processes background jobs
type Worker struct {
	config  Config
	queries Queries
	emails  jobs.ConfirmationSender
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger

	inflight sync.WaitGroup
}

// NewWorker creates a new background job worker
func NewWorker(
	queries Queries,
	emails jobs.ConfirmationSender,
	metrics *telemetry.BusinessMetrics,
	config Config,
	logger *slog.Logger,
) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 5
	}
	if config.StalePendingAfter == 0 {
		config.StalePendingAfter = 48 * time.Hour
	}
	if metrics == nil {
		metrics = telemetry.NewNopBusinessMetrics()
	}

	return &Worker{
		config:  config,
		queries: queries,
		emails:  emails,
		metrics: metrics,
		logger:  logger.With("component", "worker", "worker_id", config.WorkerID),
	}
}

// Start processes jobs until ctx is cancelled, then waits for in-flight jobs
// to finish before returning.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"queue", w.config.Queue,
		"poll_interval", w.config.PollInterval,
		"max_concurrency", w.config.MaxConcurrency,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	var staleC <-chan time.Time
	if w.config.StaleReportEvery > 0 {
		staleTicker := time.NewTicker(w.config.StaleReportEvery)
		defer staleTicker.Stop()
		staleC = staleTicker.C
	}

	// Semaphore for concurrency control
	sem := make(chan struct{}, w.config.MaxConcurrency)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down, waiting for in-flight jobs")
			w.inflight.Wait()
			w.logger.Info("worker stopped")
			return nil

		case <-staleC:
			if err := jobs.EnqueueReportStalePending(ctx, w.queries, w.config.StalePendingAfter); err != nil {
				w.logger.Error("failed to schedule stale pending report", "error", err)
			}

		case <-ticker.C:
			select {
			case sem <- struct{}{}:
				w.inflight.Add(1)
				go func() {
					defer w.inflight.Done()
					defer func() { <-sem }()
					// Drain the queue while there is work.
					for ctx.Err() == nil && w.claimAndProcess(ctx) {
					}
				}()
			default:
				// At max concurrency, skip this poll
			}
		}
	}
}

// claimAndProcess claims and processes a single job. It reports whether a
// job was claimed.
func (w *Worker) claimAndProcess(ctx context.Context) bool {
	job, err := w.queries.ClaimNextJob(ctx, repository.ClaimNextJobParams{
		WorkerID: pgtype.Text{String: w.config.WorkerID, Valid: true},
		Queue:    w.config.Queue,
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) && ctx.Err() == nil {
			w.logger.Error("failed to claim job", "error", err)
		}
		return false
	}

	// A claimed job runs to completion even if shutdown starts.
	jobCtx := context.WithoutCancel(ctx)
	logger := w.logger.With("job_id", uuid.UUID(job.ID.Bytes), "job_type", job.JobType)
	logger.Info("processing job", "retry_count", job.RetryCount)

	start := time.Now()
	err = w.processJob(jobCtx, &job)
	w.metrics.JobDuration.WithLabelValues(job.JobType).Observe(time.Since(start).Seconds())

	if err != nil {
		w.metrics.JobsFailed.WithLabelValues(job.JobType).Inc()
		failed, ferr := w.queries.FailJob(jobCtx, repository.FailJobParams{
			ID:           job.ID,
			ErrorMessage: pgtype.Text{String: err.Error(), Valid: true},
		})
		if ferr != nil {
			logger.Error("failed to record job failure", "error", ferr, "job_error", err)
			return true
		}
		if failed.Status == "failed" {
			logger.Error("job failed permanently", "error", err, "retry_count", failed.RetryCount)
			telemetry.CaptureError(err, map[string]interface{}{
				"job_id":   uuid.UUID(job.ID.Bytes).String(),
				"job_type": job.JobType,
			})
		} else {
			logger.Warn("job failed, will retry", "error", err, "retry_count", failed.RetryCount)
		}
		return true
	}

	w.metrics.JobsProcessed.WithLabelValues(job.JobType).Inc()
	if err := w.queries.CompleteJob(jobCtx, job.ID); err != nil {
		logger.Error("failed to mark job complete", "error", err)
		return true
	}
	logger.Info("job completed")
	return true
}

// processJob processes a single job
func (w *Worker) processJob(ctx context.Context, job *repository.Job) (err error) {
	timeout := time.Duration(job.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	switch {
	case jobs.IsEmailJob(job.JobType):
		return jobs.ProcessEmailJob(ctx, job, w.emails)
	case jobs.IsMaintenanceJob(job.JobType):
		return jobs.ProcessMaintenanceJob(ctx, job, w.queries, w.metrics, w.logger)
	default:
		return fmt.Errorf("unknown job type: %s", job.JobType)
	}
}
