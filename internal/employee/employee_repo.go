package employee

import (
	"context"
	"database/sql"

	"go-attendance/internal/shared/connection"
	"go-attendance/internal/shared/scope"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock

// Reader is the read side other features use to look up employees.
type Reader interface {
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindAllActive(ctx context.Context) ([]Employee, error)
}

type Repository interface {
	Reader
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, e *Employee) error
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

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).Order("full_name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllActive(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Scopes(scope.Active()).
		Order("full_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Update writes profile fields only. Device binding columns belong to the
// device service and are never touched here.
func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", e.ID).
		Updates(map[string]any{
			"full_name":      e.FullName,
			"email":          e.Email,
			"monthly_salary": e.MonthlySalary,
			"join_date":      e.JoinDate,
			"is_active":      e.IsActive,
			"updated_at":     e.UpdatedAt,
		}).Error
}
