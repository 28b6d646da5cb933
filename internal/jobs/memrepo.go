package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemRepo is an in-process queue for the memory driver and tests.
type MemRepo struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func NewMemRepo() *MemRepo {
	return &MemRepo{jobs: map[string]*Job{}}
}

func (r *MemRepo) Enqueue(_ context.Context, j *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j.ID = uuid.NewString()
	now := time.Now()
	j.CreatedAt, j.UpdatedAt = now, now
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *MemRepo) Claim(_ context.Context, workerID string, now time.Time) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due *Job
	for _, j := range r.jobs {
		if j.Status == StatusRunning && j.LockedAt != nil && j.LockedAt.Before(now.Add(-staleLock)) {
			j.Status, j.LockedBy, j.LockedAt = StatusPending, nil, nil
		}
		if j.Status != StatusPending || j.RunAt.After(now) {
			continue
		}
		if due == nil || j.RunAt.Before(due.RunAt) {
			due = j
		}
	}
	if due == nil {
		return nil, nil
	}

	lockedAt := now
	due.Status = StatusRunning
	due.LockedBy = &workerID
	due.LockedAt = &lockedAt
	due.UpdatedAt = now
	cp := *due
	return &cp, nil
}

func (r *MemRepo) update(id string, fn func(j *Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j, ok := r.jobs[id]; ok {
		fn(j)
		j.UpdatedAt = time.Now()
	}
}

func (r *MemRepo) MarkDone(_ context.Context, id string) error {
	r.update(id, func(j *Job) { j.Status = StatusDone })
	return nil
}

func (r *MemRepo) MarkFailed(_ context.Context, id string, errMsg string) error {
	r.update(id, func(j *Job) {
		j.Status = StatusFailed
		j.LastError = &errMsg
	})
	return nil
}

func (r *MemRepo) RetryLater(_ context.Context, id string, attempts int, runAt time.Time, errMsg string) error {
	r.update(id, func(j *Job) {
		j.Status = StatusPending
		j.Attempts = attempts
		j.RunAt = runAt
		j.LockedBy, j.LockedAt = nil, nil
		j.LastError = &errMsg
	})
	return nil
}

func (r *MemRepo) CancelPending(_ context.Context, userID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok || j.UserID != userID || j.Status != StatusPending {
		return false, nil
	}
	j.Status = StatusCancelled
	j.UpdatedAt = time.Now()
	return true, nil
}

// Get returns a copy of the job with id.
func (r *MemRepo) Get(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}
