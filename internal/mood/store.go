package mood

import (
	"context"
	"time"
)

// Store is the persistence contract for mood entries. Create assigns e.ID.
// FindSince returns a user's entries with Date >= since, oldest first.
type Store interface {
	Create(ctx context.Context, e *Entry) error
	FindSince(ctx context.Context, userID string, since time.Time) ([]Entry, error)
}
