package audit

import (
	"context"
	"database/sql"
	"errors"

	"go-attendance/internal/shared/connection"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// LockChain serialises appends for the rest of the transaction.
	LockChain(ctx context.Context) error
	Last(ctx context.Context) (*AuditLog, error)
	Append(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
	// Chain returns every row in append order.
	Chain(ctx context.Context) ([]AuditLog, error)
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

func (r *repository) LockChain(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext('audit_logs'))").Error
}

func (r *repository) Last(ctx context.Context) (*AuditLog, error) {
	var row AuditLog
	err := r.db.WithContext(ctx).Order("seq DESC").Limit(1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Append(ctx context.Context, entry *AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&AuditLog{})
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []AuditLog
	err := q.Order("seq DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *repository) Chain(ctx context.Context) ([]AuditLog, error) {
	var rows []AuditLog
	err := r.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error
	return rows, err
}
