package db

import (
	"fmt"

	"cmms/internal/auth"
	"cmms/internal/equipment"
	"cmms/internal/facility"
	"cmms/internal/inventory"
	"cmms/internal/jobs"
	"cmms/internal/maintenance"
	"cmms/internal/notification"
	"cmms/internal/scheduler"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&facility.Building{},
		&facility.Service{},
		&facility.Location{},
		&equipment.Equipment{},
		&equipment.Group{},
		&equipment.GroupMember{},
		&equipment.PartLink{},
		&inventory.Part{},
		&maintenance.Maintenance{},
		&maintenance.Intervention{},
		&notification.Notification{},
		&jobs.DispatchJob{},
		&scheduler.State{},
	); err != nil {
		return err
	}

	// Helpful indexes
	// Note: table/column names depend on GORM naming. Default is snake_case plural.
	stmts := []string{
		`create index if not exists idx_equipment_tags on equipment using gin (tags);`,
		`create index if not exists idx_maint_due on maintenances(status, next_due_date);`,
		`create index if not exists idx_notif_sched on notifications(is_completed, scheduled_at);`,
		`create index if not exists idx_jobs_due on dispatch_jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on dispatch_jobs(status, locked_at);`,
		`create index if not exists idx_jobs_handle on dispatch_jobs(handle, status);`,
		`create index if not exists idx_interventions_equipment on interventions(equipment_id, created_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
