package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"nudge/internal/auth"
	"nudge/internal/reminder"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&reminder.Reminder{},
		&reminder.Task{},
		&reminder.Client{},
		&reminder.TenantChannelConfig{},
		&reminder.DispatchRun{},
		&auth.User{},
	); err != nil {
		return err
	}

	stmts := []string{
		// claim scan: due pending rows per tenant in schedule order
		`create index if not exists idx_reminders_due on reminders(tenant_id, status, scheduled_at);`,
		// stale-claim sweep
		`create index if not exists idx_reminders_claimed on reminders(status, claimed_at);`,
		`create index if not exists idx_runs_tenant_started on dispatch_runs(tenant_id, started_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
