package maintenance

import "time"

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue"
)

const (
	UnitHours = "hours"
	UnitDays  = "days"
	UnitWeeks = "weeks"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

func ValidUnit(u string) bool {
	switch u {
	case UnitHours, UnitDays, UnitWeeks:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Maintenance is a scheduled obligation whose next_due_date drives reminder
// timing. NextDueDate is date-only; time of day is normalized by the
// scheduler.
type Maintenance struct {
	ID            uint64  `gorm:"primaryKey"`
	Title         string  `gorm:"type:text;not null"`
	EquipmentID   *uint64 `gorm:"index"`
	EquipmentName string  `gorm:"type:text;not null;default:''"`

	NextDueDate time.Time `gorm:"type:date;not null"`
	Status      string    `gorm:"index;type:text;not null;default:'scheduled'"`
	Priority    string    `gorm:"type:text;not null;default:'medium'"`

	NotificationEnabled         bool   `gorm:"not null;default:true"`
	NotificationTimeBeforeValue int    `gorm:"not null;default:1"`
	NotificationTimeBeforeUnit  string `gorm:"type:text;not null;default:'days'"`

	// RecurrenceDays > 0 reschedules the maintenance that many days after
	// completion instead of closing it.
	RecurrenceDays int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

const (
	InterventionOpen       = "open"
	InterventionInProgress = "in-progress"
	InterventionDone       = "done"
)

// Intervention is a work log entry, optionally closing out a maintenance.
type Intervention struct {
	ID            uint64  `gorm:"primaryKey"`
	EquipmentID   *uint64 `gorm:"index"`
	MaintenanceID *uint64 `gorm:"index"`

	Title       string `gorm:"type:text;not null"`
	Report      string `gorm:"type:text;not null;default:''"`
	Status      string `gorm:"index;type:text;not null;default:'open'"`
	PerformedBy uint64 `gorm:"index;not null"`

	StartedAt   *time.Time `gorm:"type:timestamptz"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"not null;default:now()"`
}
