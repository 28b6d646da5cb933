package mood

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moodlog/internal/metrics"

	"go.uber.org/zap"
)

type Service struct {
	Store Store
	Log   *zap.Logger
	// Now is overridable for tests.
	Now func() time.Time
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{Store: store, Log: log, Now: time.Now}
}

// Record validates and persists one entry. Nothing is written when validation fails.
func (s *Service) Record(ctx context.Context, c Candidate) (Entry, error) {
	now := s.Now()

	e, err := Validate(c, now)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			CountRejection(verr.Code)
		}
		return Entry{}, err
	}

	e.CreatedAt = now
	e.UpdatedAt = now
	if err := s.Store.Create(ctx, &e); err != nil {
		return Entry{}, fmt.Errorf("create mood entry: %w", err)
	}

	metrics.MoodEntriesRecorded.Inc()
	s.logger().Debug("mood entry recorded",
		zap.String("user_id", e.UserID),
		zap.String("entry_id", e.ID),
		zap.Int("mood", e.Mood),
	)
	return e, nil
}

// History returns the user's entries dated within the trailing window of
// days, oldest first. Negative days fall back to DefaultHistoryDays.
func (s *Service) History(ctx context.Context, userID string, days int) ([]Entry, error) {
	if days < 0 {
		days = DefaultHistoryDays
	}
	since := windowStart(s.Now(), days)

	entries, err := s.Store.FindSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("find mood entries: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// CountRejection records a refused ingestion attempt under its reason code.
// Callers that reject input before it reaches Record use it directly.
func CountRejection(code string) {
	metrics.MoodEntriesRejected.WithLabelValues(code).Inc()
}

// Windows wider than maxWindowDays are clamped; since never precedes
// earliestSince, the lowest timestamp every store accepts.
const maxWindowDays = 1 << 22

var earliestSince = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

func windowStart(now time.Time, days int) time.Time {
	since := now.AddDate(0, 0, -min(days, maxWindowDays))
	if since.Before(earliestSince) {
		return earliestSince
	}
	return since
}

// Summary aggregates the same window History returns.
func (s *Service) Summary(ctx context.Context, userID string, days int) (Summary, error) {
	if days < 0 {
		days = DefaultHistoryDays
	}
	entries, err := s.History(ctx, userID, days)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(days, entries), nil
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
