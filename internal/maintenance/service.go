package maintenance

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	DB *gorm.DB
}

// Complete closes a maintenance. Recurring maintenances are rescheduled
// RecurrenceDays after the completion date and reset to scheduled.
func (s *Service) Complete(ctx context.Context, id uint64, at time.Time) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m Maintenance
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]any{
			"status":     StatusCompleted,
			"updated_at": at,
		}
		if m.RecurrenceDays > 0 {
			updates["status"] = StatusScheduled
			updates["next_due_date"] = at.AddDate(0, 0, m.RecurrenceDays)
		}

		return tx.Model(&Maintenance{}).Where("id = ?", id).Updates(updates).Error
	})
}

// CompleteIntervention marks the intervention done and, when it is linked to
// a maintenance, completes that maintenance too.
func (s *Service) CompleteIntervention(ctx context.Context, id uint64, at time.Time) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var iv Intervention
		if err := tx.First(&iv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if iv.Status == InterventionDone {
			return nil
		}

		if err := tx.Model(&Intervention{}).Where("id = ?", id).Updates(map[string]any{
			"status":       InterventionDone,
			"completed_at": at,
		}).Error; err != nil {
			return err
		}

		if iv.MaintenanceID == nil {
			return nil
		}

		var m Maintenance
		if err := tx.First(&m, *iv.MaintenanceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // maintenance deleted meanwhile, intervention still closes
			}
			return err
		}

		updates := map[string]any{
			"status":     StatusCompleted,
			"updated_at": at,
		}
		if m.RecurrenceDays > 0 {
			updates["status"] = StatusScheduled
			updates["next_due_date"] = at.AddDate(0, 0, m.RecurrenceDays)
		}
		return tx.Model(&Maintenance{}).Where("id = ?", m.ID).Updates(updates).Error
	})
}

// MarkOverdue flips scheduled/in-progress maintenances whose due date has
// passed to overdue. Called from the sweep; the scheduler itself never
// writes maintenance rows.
func (s *Service) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	res := s.DB.WithContext(ctx).Model(&Maintenance{}).
		Where("status IN ? AND next_due_date < ?", []string{StatusScheduled, StatusInProgress}, day).
		Updates(map[string]any{"status": StatusOverdue, "updated_at": today})
	return res.RowsAffected, res.Error
}
