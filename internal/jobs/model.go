package jobs

import (
	"encoding/json"
	"time"
)

const (
	TypeCheckinReminder = "CHECKIN_REMINDER"

	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusDone      = "DONE"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"

	DefaultMaxAttempts = 8
	DefaultMessage     = "Time for a mood check-in"
)

type Job struct {
	ID     string `gorm:"type:varchar(36);primaryKey" bson:"_id"`
	UserID string `gorm:"type:text;index;not null" bson:"userId"`

	Type    string `gorm:"type:text;not null" bson:"type"`
	Payload []byte `gorm:"type:jsonb;not null;default:'{}'::jsonb" bson:"payload"`

	RunAt  time.Time `gorm:"index;not null" bson:"runAt"`
	Status string    `gorm:"index;not null;default:'PENDING'" bson:"status"`

	Attempts    int `gorm:"not null;default:0" bson:"attempts"`
	MaxAttempts int `gorm:"not null;default:8" bson:"maxAttempts"`

	LockedBy *string    `gorm:"type:text" bson:"lockedBy,omitempty"`
	LockedAt *time.Time `gorm:"type:timestamptz" bson:"lockedAt,omitempty"`

	LastError *string `gorm:"type:text" bson:"lastError,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" bson:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" bson:"updatedAt"`
}

type reminderPayload struct {
	Message string `json:"message"`
}

// NewReminder builds a pending check-in reminder job; ID is assigned by the repo.
func NewReminder(userID string, runAt time.Time, message string) (*Job, error) {
	if message == "" {
		message = DefaultMessage
	}
	payload, err := json.Marshal(reminderPayload{Message: message})
	if err != nil {
		return nil, err
	}
	return &Job{
		UserID:      userID,
		Type:        TypeCheckinReminder,
		Payload:     payload,
		RunAt:       runAt,
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
	}, nil
}
