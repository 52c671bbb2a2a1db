package attendance

import (
	"context"
	"database/sql"
	"time"

	"go-attendance/internal/shared/connection"
	"go-attendance/internal/shared/scope"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const effectiveOnly = "kind <> 'TOMBSTONE' AND NOT EXISTS (SELECT 1 FROM attendance_events s WHERE s.supersedes_id = attendance_events.id)"

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// LockEmployee takes the employee row lock; only valid inside WithTx.
	LockEmployee(ctx context.Context, employeeID string) (*EmployeeSnapshot, error)
	Create(ctx context.Context, e *Event) error
	FindByID(ctx context.Context, id string) (*Event, error)
	IsSuperseded(ctx context.Context, id string) (bool, error)
	// EffectiveBetween returns effective events with work dates in [from, to],
	// ordered by occurred_at then insertion order.
	EffectiveBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Event, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) LockEmployee(ctx context.Context, employeeID string) (*EmployeeSnapshot, error) {
	var snap EmployeeSnapshot
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("id, email, is_active, public_key, join_date").
		Where("id = ?", employeeID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&snap).Error
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *repository) Create(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Event, error) {
	var e Event
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) IsSuperseded(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Event{}).
		Where("supersedes_id = ?", id).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) EffectiveBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Event, error) {
	var rows []Event
	err := r.db.WithContext(ctx).
		Scopes(scope.Employee(employeeID), scope.DateRange("work_date", from, to)).
		Where(effectiveOnly).
		Order("occurred_at ASC, seq ASC").
		Find(&rows).Error
	return rows, err
}
