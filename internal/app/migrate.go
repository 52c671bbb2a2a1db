package app

import (
	"go-attendance/internal/attendance"
	"go-attendance/internal/audit"
	"go-attendance/internal/calendar"
	"go-attendance/internal/employee"
	"go-attendance/internal/payroll"

	"gorm.io/gorm"
)

// outboxDDL is kept as raw SQL because the outbox is written through
// database/sql, not through a gorm model.
var outboxDDL = []string{
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id             UUID PRIMARY KEY,
		request_id     VARCHAR(64),
		aggregate_type VARCHAR(50) NOT NULL,
		aggregate_id   VARCHAR(64) NOT NULL,
		event_type     VARCHAR(50) NOT NULL,
		topic          VARCHAR(100) NOT NULL,
		payload        JSONB NOT NULL,
		status         VARCHAR(10) NOT NULL DEFAULT 'pending',
		retry_count    INT NOT NULL DEFAULT 0,
		next_retry_at  TIMESTAMPTZ,
		error_message  TEXT,
		processed_at   TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_events_pending
		ON outbox_events (status, created_at)
		WHERE status IN ('pending', 'failed')`,
}

// Migrate creates or updates every table the services use.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&employee.Employee{},
		&attendance.Event{},
		&calendar.Holiday{},
		&calendar.Leave{},
		&payroll.Report{},
		&audit.AuditLog{},
	); err != nil {
		return err
	}
	for _, stmt := range outboxDDL {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
