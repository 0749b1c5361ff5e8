package jobs

import "time"

// DispatchJob is one pending delivery of an alert to one recipient. Jobs
// are the durable leg of notification scheduling: in-process timers fire
// fast, jobs survive restarts.
type DispatchJob struct {
	ID uint64 `gorm:"primaryKey"`

	// Handle is the positive 31-bit hash of Key; Cancel works by handle.
	Handle int32  `gorm:"index;not null"`
	Key    string `gorm:"index;type:text;not null"`

	Recipient string `gorm:"type:text;not null"`
	Title     string `gorm:"type:text;not null"`
	Body      string `gorm:"type:text;not null;default:''"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"` // PENDING/RUNNING/DONE/FAILED/CANCELLED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
