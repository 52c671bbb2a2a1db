package calendar

import (
	"context"
	"database/sql"
	"time"

	"go-attendance/internal/shared/connection"
	"go-attendance/internal/shared/scope"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateHoliday(ctx context.Context, h *Holiday) error
	FindHolidayByID(ctx context.Context, id string) (*Holiday, error)
	DeleteHoliday(ctx context.Context, id string) error
	HolidaysBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)

	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	CreateLeave(ctx context.Context, l *Leave) error
	FindLeaveByID(ctx context.Context, id string) (*Leave, error)
	RevokeLeave(ctx context.Context, id, actorID string, at time.Time) error
	HasOverlappingLeave(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	// ApprovedLeavesBetween returns approved leaves touching [from, to].
	ApprovedLeavesBetween(ctx context.Context, from, to time.Time) ([]Leave, error)
	ListLeaves(ctx context.Context, employeeID string) ([]Leave, error)
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

func (r *repository) CreateHoliday(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) FindHolidayByID(ctx context.Context, id string) (*Holiday, error) {
	var h Holiday
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&h, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repository) DeleteHoliday(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Holiday{}, "id = ?", id).Error
}

func (r *repository) HolidaysBetween(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	var rows []Holiday
	err := r.db.WithContext(ctx).
		Scopes(scope.DateRange("date", from, to)).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateLeave(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindLeaveByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) RevokeLeave(ctx context.Context, id, actorID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     LeaveStatusRevoked,
			"revoked_by": actorID,
			"revoked_at": at,
			"updated_at": at,
		}).Error
}

func (r *repository) HasOverlappingLeave(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Scopes(scope.Employee(employeeID)).
		Where("status = ?", LeaveStatusApproved).
		Where("NOT (end_date < ? OR start_date > ?)", start.Format("2006-01-02"), end.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ApprovedLeavesBetween(ctx context.Context, from, to time.Time) ([]Leave, error) {
	var rows []Leave
	err := r.db.WithContext(ctx).
		Where("status = ?", LeaveStatusApproved).
		Where("NOT (end_date < ? OR start_date > ?)", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListLeaves(ctx context.Context, employeeID string) ([]Leave, error) {
	db := r.db.WithContext(ctx)
	if employeeID != "" {
		db = db.Scopes(scope.Employee(employeeID))
	}
	var rows []Leave
	err := db.Order("start_date DESC").Find(&rows).Error
	return rows, err
}
