package mood

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// EntryRow is the Postgres shape of an Entry.
type EntryRow struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"`
	UserID    string         `gorm:"type:text;not null;index:idx_mood_user_date,priority:1"`
	Mood      int            `gorm:"not null;check:chk_mood_range,mood >= 1 AND mood <= 10"`
	Tags      pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Notes     string         `gorm:"type:text;not null;default:''"`
	Date      time.Time      `gorm:"type:timestamptz;not null;index:idx_mood_user_date,priority:2"`
	CreatedAt time.Time      `gorm:"type:timestamptz;not null"`
	UpdatedAt time.Time      `gorm:"type:timestamptz;not null"`
}

func (EntryRow) TableName() string { return "mood_entries" }

func (r EntryRow) entry() Entry {
	return Entry{
		ID:        r.ID,
		UserID:    r.UserID,
		Mood:      r.Mood,
		Tags:      append([]string{}, r.Tags...),
		Notes:     r.Notes,
		Date:      r.Date,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type PGStore struct {
	DB *gorm.DB
}

func (s *PGStore) Create(ctx context.Context, e *Entry) error {
	row := EntryRow{
		ID:        uuid.NewString(),
		UserID:    e.UserID,
		Mood:      e.Mood,
		Tags:      pq.StringArray(e.Tags),
		Notes:     e.Notes,
		Date:      e.Date,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if row.Tags == nil {
		row.Tags = pq.StringArray{}
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	e.ID = row.ID
	return nil
}

func (s *PGStore) FindSince(ctx context.Context, userID string, since time.Time) ([]Entry, error) {
	var rows []EntryRow
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date asc, created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry())
	}
	return out, nil
}
