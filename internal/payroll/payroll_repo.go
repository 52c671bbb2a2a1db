package payroll

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-attendance/internal/shared/connection"
	"go-attendance/internal/shared/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Report) error
	Update(ctx context.Context, r *Report) error
	// FindForUpdate returns the employee's report for month, row-locked, or
	// nil when there is none.
	FindForUpdate(ctx context.Context, employeeID string, month time.Time) (*Report, error)
	// ListForUpdate row-locks every report of month, optionally for one
	// employee.
	ListForUpdate(ctx context.Context, month time.Time, employeeID string) ([]Report, error)
	List(ctx context.Context, month time.Time, employeeID string) ([]Report, error)
	AnyLocked(ctx context.Context, month time.Time, employeeIDs []uuid.UUID) (bool, error)
	IsLocked(ctx context.Context, employeeID string, month time.Time) (bool, error)
	Unlock(ctx context.Context, id uuid.UUID, actorID, reason string, at time.Time) error
	Delete(ctx context.Context, ids []uuid.UUID) error
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

func (r *repository) Create(ctx context.Context, rep *Report) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *repository) Update(ctx context.Context, rep *Report) error {
	return r.db.WithContext(ctx).Save(rep).Error
}

func (r *repository) FindForUpdate(ctx context.Context, employeeID string, month time.Time) (*Report, error) {
	var rep Report
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(scope.Employee(employeeID)).
		Where("month = ?", month.Format("2006-01-02")).
		First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *repository) ListForUpdate(ctx context.Context, month time.Time, employeeID string) ([]Report, error) {
	var rows []Report
	err := r.monthQuery(ctx, month, employeeID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, month time.Time, employeeID string) ([]Report, error) {
	var rows []Report
	err := r.monthQuery(ctx, month, employeeID).
		Order("employee_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) AnyLocked(ctx context.Context, month time.Time, employeeIDs []uuid.UUID) (bool, error) {
	if len(employeeIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Report{}).
		Where("month = ? AND status = ?", month.Format("2006-01-02"), StatusLocked).
		Where("employee_id IN ?", employeeIDs).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) IsLocked(ctx context.Context, employeeID string, month time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Report{}).
		Scopes(scope.Employee(employeeID)).
		Where("month = ? AND status = ?", month.Format("2006-01-02"), StatusLocked).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Unlock(ctx context.Context, id uuid.UUID, actorID, reason string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Report{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        StatusUnlocked,
			"unlocked_by":   actorID,
			"unlocked_at":   at,
			"unlock_reason": reason,
			"updated_at":    at,
		}).Error
}

func (r *repository) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&Report{}, "id IN ?", ids).Error
}

func (r *repository) monthQuery(ctx context.Context, month time.Time, employeeID string) *gorm.DB {
	q := r.db.WithContext(ctx).Where("month = ?", month.Format("2006-01-02"))
	if employeeID != "" {
		q = q.Scopes(scope.Employee(employeeID))
	}
	return q
}
