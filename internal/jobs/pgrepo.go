package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PGRepo struct {
	DB *gorm.DB
}

func (r *PGRepo) Enqueue(ctx context.Context, j *Job) error {
	j.ID = uuid.NewString()
	now := time.Now()
	j.CreatedAt, j.UpdatedAt = now, now
	return r.DB.WithContext(ctx).Create(j).Error
}

// Claim one due job atomically using SKIP LOCKED.
func (r *PGRepo) Claim(ctx context.Context, workerID string, now time.Time) (*Job, error) {
	var job Job
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
update jobs
set status='PENDING', locked_by=null, locked_at=null, updated_at=?
where status='RUNNING' and locked_at is not null and locked_at < ?
`, now, now.Add(-staleLock)).Error; err != nil {
			return err
		}

		// FOR UPDATE SKIP LOCKED ensures no double-claim
		q := tx.Raw(`
with cte as (
  select id
  from jobs
  where status='PENDING' and run_at <= ?
  order by run_at asc
  for update skip locked
  limit 1
)
update jobs
set status='RUNNING', locked_by=?, locked_at=?, updated_at=?
where id in (select id from cte)
returning *;
`, now, workerID, now, now)

		return q.Scan(&job).Error
	})
	if err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, nil
	}
	return &job, nil
}

func (r *PGRepo) MarkDone(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='DONE', updated_at=now() where id=?`, id).Error
}

func (r *PGRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='FAILED', last_error=?, updated_at=now() where id=?`, errMsg, id).Error
}

func (r *PGRepo) RetryLater(ctx context.Context, id string, attempts int, runAt time.Time, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`
update jobs
set status='PENDING',
    attempts=?,
    run_at=?,
    locked_by=null,
    locked_at=null,
    last_error=?,
    updated_at=now()
where id=?`, attempts, runAt, errMsg, id).Error
}

func (r *PGRepo) CancelPending(ctx context.Context, userID, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Exec(`
update jobs
set status='CANCELLED', updated_at=now()
where id=? and user_id=? and status='PENDING'`, id, userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
