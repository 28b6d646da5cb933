package jobs

import (
	"context"
	"time"
)

// Running jobs locked longer than this are handed back to the queue.
const staleLock = 5 * time.Minute

// Repo is the job queue. Claim returns (nil, nil) when nothing is due.
type Repo interface {
	Enqueue(ctx context.Context, j *Job) error
	Claim(ctx context.Context, workerID string, now time.Time) (*Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	RetryLater(ctx context.Context, id string, attempts int, runAt time.Time, errMsg string) error
	// CancelPending cancels a pending job owned by userID and reports whether one matched.
	CancelPending(ctx context.Context, userID, id string) (bool, error)
}
