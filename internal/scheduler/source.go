package scheduler

import (
	"context"

	"gorm.io/gorm"

	"cmms/internal/maintenance"
	"cmms/internal/notification"
)

// GormSource reads the live record collections from Postgres.
type GormSource struct {
	DB *gorm.DB
}

func (s *GormSource) Reminders(ctx context.Context) ([]notification.Notification, error) {
	var out []notification.Notification
	err := s.DB.WithContext(ctx).
		Where("is_completed = false").
		Find(&out).Error
	return out, err
}

func (s *GormSource) DueMaintenance(ctx context.Context) ([]maintenance.Maintenance, error) {
	var out []maintenance.Maintenance
	err := s.DB.WithContext(ctx).
		Where("notification_enabled = true AND status <> ?", maintenance.StatusCompleted).
		Find(&out).Error
	return out, err
}
