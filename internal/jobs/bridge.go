package jobs

import (
	"context"
	"time"

	"gorm.io/gorm"

	"cmms/internal/alert"
	"cmms/internal/notification"
)

// Bridge exposes the job table as the scheduler's durable scheduling
// capability: one PENDING row per recipient at fireAt, cancellable by
// handle while still pending.
type Bridge struct {
	DB *gorm.DB

	// Recipients resolves a composite key to delivery addresses. Keys
	// without recipients schedule nothing.
	Recipients func(ctx context.Context, key string) []string
}

var _ alert.Bridge = (*Bridge)(nil)

func (b *Bridge) Schedule(ctx context.Context, handle int32, key, title, body string, fireAt time.Time) error {
	var recipients []string
	if b.Recipients != nil {
		recipients = b.Recipients(ctx, key)
	}
	if len(recipients) == 0 {
		return nil
	}

	return b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// re-scheduling replaces any pending rows for the same handle
		if err := tx.Where("handle = ? AND status = 'PENDING'", handle).
			Delete(&DispatchJob{}).Error; err != nil {
			return err
		}
		for _, r := range recipients {
			j := DispatchJob{
				Handle:    handle,
				Key:       key,
				Recipient: r,
				Title:     title,
				Body:      body,
				RunAt:     fireAt,
				Status:    "PENDING",
			}
			if err := tx.Create(&j).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Bridge) Cancel(ctx context.Context, handle int32) error {
	return b.DB.WithContext(ctx).
		Where("handle = ? AND status = 'PENDING'", handle).
		Delete(&DispatchJob{}).Error
}

// NotificationRecipients builds a Recipients resolver that looks up the
// backing notification row for reminder keys. Maintenance keys dispatch to
// nobody by default; maintenance alerts stay on the in-process path.
func NotificationRecipients(db *gorm.DB) func(ctx context.Context, key string) []string {
	return func(ctx context.Context, key string) []string {
		const prefix = "notif-"
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			return nil
		}
		var n notification.Notification
		if err := db.WithContext(ctx).First(&n, "id = ?", key[len(prefix):]).Error; err != nil {
			return nil
		}
		recips, err := notification.ParseRecipients(n.Recipients)
		if err != nil {
			return nil
		}
		if n.CreatedBy != "" {
			for _, r := range recips {
				if r == n.CreatedBy {
					return recips
				}
			}
			recips = append(recips, n.CreatedBy)
		}
		return recips
	}
}
