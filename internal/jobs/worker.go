package jobs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"moodlog/internal/metrics"

	"go.uber.org/zap"
)

// Reminder is what a Notifier delivers to a user.
type Reminder struct {
	JobID   string
	UserID  string
	Message string
}

type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to the log instead of an outbound channel.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, r Reminder) error {
	n.Log.Info("check-in reminder",
		zap.String("job_id", r.JobID),
		zap.String("user_id", r.UserID),
		zap.String("message", r.Message),
	)
	return nil
}

type Worker struct {
	ID       string
	Repo     Repo
	Notifier Notifier
	Log      *zap.Logger
	Interval time.Duration
	Now      func() time.Time
}

func (w *Worker) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// drain everything that is due before waiting again
			for w.Poll(ctx) {
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// Poll claims and handles at most one due job. It reports whether a job was handled.
func (w *Worker) Poll(ctx context.Context) bool {
	job, err := w.Repo.Claim(ctx, w.ID, w.now())
	if err != nil {
		w.Log.Warn("worker claim error", zap.String("worker", w.ID), zap.Error(err))
		return false
	}
	if job == nil {
		return false
	}
	w.handle(ctx, job)
	return true
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeCheckinReminder:
		w.handleReminder(ctx, job)
	default:
		w.fail(ctx, job, "unknown job type")
	}
}

func (w *Worker) handleReminder(ctx context.Context, job *Job) {
	var p reminderPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		w.fail(ctx, job, "bad payload")
		return
	}

	if err := w.Notifier.Notify(ctx, Reminder{JobID: job.ID, UserID: job.UserID, Message: p.Message}); err != nil {
		w.Log.Warn("reminder dispatch failed", zap.String("job_id", job.ID), zap.Error(err))
		w.retry(ctx, job, err.Error())
		return
	}

	if err := w.Repo.MarkDone(ctx, job.ID); err != nil {
		w.Log.Error("mark job done", zap.String("job_id", job.ID), zap.Error(err))
	}
	metrics.RemindersProcessed.WithLabelValues("done").Inc()
}

func (w *Worker) fail(ctx context.Context, job *Job, errMsg string) {
	if err := w.Repo.MarkFailed(ctx, job.ID, errMsg); err != nil {
		w.Log.Error("mark job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	metrics.RemindersProcessed.WithLabelValues("failed").Inc()
}

func (w *Worker) retry(ctx context.Context, job *Job, errMsg string) {
	attempts := job.Attempts + 1
	maxAttempts := job.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if attempts >= maxAttempts {
		w.fail(ctx, job, errMsg)
		return
	}

	if err := w.Repo.RetryLater(ctx, job.ID, attempts, w.now().Add(Backoff(attempts)), errMsg); err != nil {
		w.Log.Error("reschedule job", zap.String("job_id", job.ID), zap.Error(err))
	}
	metrics.RemindersProcessed.WithLabelValues("retried").Inc()
}

// Backoff is 2^attempts seconds, capped at ten minutes.
func Backoff(attempts int) time.Duration {
	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	return time.Duration(sec) * time.Second
}
