package mood

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore keeps entries in process memory. Used by the memory driver and tests.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Create(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	stored := *e
	stored.Tags = append([]string{}, e.Tags...)
	s.entries = append(s.entries, stored)
	return nil
}

func (s *MemStore) FindSince(_ context.Context, userID string, since time.Time) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Entry{}
	for _, e := range s.entries {
		if e.UserID != userID || e.Date.Before(since) {
			continue
		}
		e.Tags = append([]string{}, e.Tags...)
		out = append(out, e)
	}

	// insertion order breaks ties
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
