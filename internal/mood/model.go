package mood

import "time"

const (
	MinMood = 1
	MaxMood = 10

	DefaultHistoryDays = 30
)

// Entry is one self-reported mood check-in. It is created once and never updated.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Mood      int       `json:"mood"`
	Tags      []string  `json:"tags"`
	Notes     string    `json:"notes"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Candidate is an unvalidated ingestion request. Mood is a float so that
// non-integer input reaches the validator instead of being truncated.
type Candidate struct {
	UserID string   `validate:"required"`
	Mood   *float64 `validate:"required,min=1,max=10"`
	Tags   []string `validate:"dive,moodtag"`
	Notes  string
	Date   *time.Time
}
