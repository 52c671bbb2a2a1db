package employee

import (
	"context"
	"database/sql"
	"strings"
	"time"

	employeeerrors "go-attendance/internal/employee/errors"
	"go-attendance/internal/shared/clock"
	"go-attendance/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Deactivate(ctx context.Context, id string) error
}

// DayCache drops every cached timesheet day of an employee.
type DayCache interface {
	InvalidateEmployee(ctx context.Context, employeeID string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	days   DayCache
	now    func() time.Time
	logger *zap.Logger
}

// NewService builds the employee service. days may be nil.
func NewService(db *sql.DB, repo Repository, days DayCache, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{db: db, repo: repo, days: days, now: time.Now, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	salary, err := parseSalary(req.MonthlySalary)
	if err != nil {
		return EmployeeResponse{}, err
	}
	joinDate, err := clock.ParseDate(req.JoinDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoinDate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	now := s.now().UTC()
	empl := &Employee{
		ID:            uuid.New(),
		FullName:      strings.TrimSpace(req.FullName),
		Email:         normalizeEmail(req.Email),
		MonthlySalary: salary,
		JoinDate:      joinDate,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
		log.Warn("create employee persist failed", zap.String("email", empl.Email), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return EmployeeResponse{}, err
	}

	log.Info("employee created", zap.String("employee_id", empl.ID.String()))
	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	res := make([]EmployeeResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	salary, err := parseSalary(req.MonthlySalary)
	if err != nil {
		return EmployeeResponse{}, err
	}
	joinDate, err := clock.ParseDate(req.JoinDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoinDate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	joinMoved := !empl.JoinDate.Equal(joinDate)
	empl.FullName = strings.TrimSpace(req.FullName)
	empl.Email = normalizeEmail(req.Email)
	empl.MonthlySalary = salary
	empl.JoinDate = joinDate
	if req.IsActive != nil {
		empl.IsActive = *req.IsActive
	}
	empl.UpdatedAt = s.now().UTC()

	if err := qtx.Update(ctx, empl); err != nil {
		log.Warn("update employee persist failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return EmployeeResponse{}, err
	}

	// the join date decides which days resolve as pre-employment
	if joinMoved && s.days != nil {
		if err := s.days.InvalidateEmployee(ctx, id); err != nil {
			log.Error("timesheet cache invalidation failed", zap.String("employee_id", id), zap.Error(err))
		}
	}
	return mapToResponse(*empl), nil
}

// Deactivate removes the employee from payroll runs. Ledger history stays.
func (s *service) Deactivate(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	empl.IsActive = false
	empl.UpdatedAt = s.now().UTC()
	if err := qtx.Update(ctx, empl); err != nil {
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	contextutil.GetLogger(ctx, s.logger).Info("employee deactivated", zap.String("employee_id", id))
	return nil
}

func parseSalary(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero, employeeerrors.ErrInvalidSalary
	}
	return d.Round(2), nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:                e.ID.String(),
		FullName:          e.FullName,
		Email:             e.Email,
		MonthlySalary:     e.MonthlySalary.StringFixed(2),
		JoinDate:          e.JoinDate.Format(clock.DateLayout),
		IsActive:          e.IsActive,
		DeviceBound:       e.HasDevice(),
		DeviceFingerprint: e.DeviceFingerprint,
	}
	if e.DeviceBoundAt != nil {
		v := e.DeviceBoundAt.UTC().Format(time.RFC3339)
		resp.DeviceBoundAt = &v
	}
	return resp
}
