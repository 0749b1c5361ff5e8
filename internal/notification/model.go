package notification

import "time"

// Notification is a one-shot user reminder. Recipients is kept as raw text
// because historical rows carry several shapes (JSON array, set literal,
// bare id); use ParseRecipients before trusting it.
type Notification struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	Title       string    `gorm:"type:text;not null"`
	Body        string    `gorm:"type:text;not null;default:''"`
	ScheduledAt time.Time `gorm:"index;type:timestamptz;not null"`
	IsCompleted bool      `gorm:"index;not null;default:false"`
	CreatedBy   string    `gorm:"index;type:text;not null"`
	Recipients  string    `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
}

// VisibleTo reports whether userID may see the notification: the creator
// always can, everyone else only via the recipient set.
func (n Notification) VisibleTo(userID string) bool {
	if n.CreatedBy == userID {
		return true
	}
	recips, err := ParseRecipients(n.Recipients)
	if err != nil {
		return false
	}
	for _, r := range recips {
		if r == userID {
			return true
		}
	}
	return false
}
