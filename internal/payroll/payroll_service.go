package payroll

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-attendance/internal/audit"
	"go-attendance/internal/calendar"
	"go-attendance/internal/employee"
	"go-attendance/internal/events"
	"go-attendance/internal/messaging/kafka"
	payrollerrors "go-attendance/internal/payroll/errors"
	"go-attendance/internal/shared/apperror"
	"go-attendance/internal/shared/clock"
	"go-attendance/internal/shared/contextutil"
	"go-attendance/internal/shared/lock"
	"go-attendance/internal/shared/metrics"
	"go-attendance/internal/timesheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resolver produces the resolved days of a month straight from the ledger.
type Resolver interface {
	ResolveMonth(ctx context.Context, emp employee.Employee, month time.Time, cal *calendar.Context) ([]timesheet.DailyRecord, error)
}

// CalendarSource builds the holiday and leave lookup for a month.
type CalendarSource interface {
	ForMonth(ctx context.Context, month time.Time) (*calendar.Context, error)
}

type Service interface {
	Generate(ctx context.Context, actorID string, req GeneratePayrollRequest) (GenerateResponse, error)
	Unlock(ctx context.Context, actorID string, req UnlockPayrollRequest) (UnlockResponse, error)
	Reset(ctx context.Context, actorID string, req ResetPayrollRequest) (ResetResponse, error)
	GetReports(ctx context.Context, month, employeeID string) ([]ReportResponse, error)
	IsLocked(ctx context.Context, employeeID string, month time.Time) (bool, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Reader
	resolver  Resolver
	calendar  CalendarSource
	locker    lock.Locker
	audit     audit.Recorder
	outbox    kafka.OutboxRepository
	zone      *clock.Zone
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Reader,
	resolver Resolver,
	cal CalendarSource,
	locker lock.Locker,
	recorder audit.Recorder,
	outbox kafka.OutboxRepository,
	zone *clock.Zone,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		resolver:  resolver,
		calendar:  cal,
		locker:    locker,
		audit:     recorder,
		outbox:    outbox,
		zone:      zone,
		logger:    l,
	}
}

func (s *service) Generate(ctx context.Context, actorID string, req GeneratePayrollRequest) (GenerateResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	month, err := s.parseMonth(req.Month)
	if err != nil {
		return GenerateResponse{}, err
	}
	if month.After(s.zone.MonthOf(s.zone.Now())) {
		return GenerateResponse{}, payrollerrors.ErrFutureMonth
	}

	targets, err := s.targets(ctx, req.EmployeeID)
	if err != nil {
		return GenerateResponse{}, err
	}

	ids := make([]uuid.UUID, 0, len(targets))
	for _, e := range targets {
		ids = append(ids, e.ID)
	}
	locked, err := s.repo.AnyLocked(ctx, month, ids)
	if err != nil {
		return GenerateResponse{}, err
	}
	if locked {
		return GenerateResponse{}, payrollerrors.ErrAlreadyLocked
	}

	cal, err := s.calendar.ForMonth(ctx, month)
	if err != nil {
		return GenerateResponse{}, err
	}
	holidays := make(map[string]bool)
	for _, d := range clock.DaysIn(month) {
		if cal.IsHoliday(d) {
			holidays[d.Format(clock.DateLayout)] = true
		}
	}

	resp := GenerateResponse{
		Month:   month.Format(clock.MonthLayout),
		Reports: make([]ReportResponse, 0, len(targets)),
	}
	// Reports commit one by one. Failures are listed beside the locked reports.
	var firstErr error
	for _, emp := range targets {
		rep, err := s.generateOne(ctx, actorID, emp, month, cal, holidays)
		if err != nil {
			log.Error("payroll generation failed",
				zap.String("employee_id", emp.ID.String()),
				zap.String("month", resp.Month),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			resp.Failed = append(resp.Failed, failureOf(emp, err))
			continue
		}
		resp.Reports = append(resp.Reports, mapReport(*rep))
	}
	if len(resp.Reports) == 0 {
		return GenerateResponse{}, firstErr
	}

	log.Info("payroll generated",
		zap.String("month", resp.Month),
		zap.Int("reports", len(resp.Reports)),
		zap.Int("failed", len(resp.Failed)),
	)
	return resp, nil
}

func failureOf(emp employee.Employee, err error) GenerateFailure {
	f := GenerateFailure{
		EmployeeID:   emp.ID.String(),
		EmployeeName: emp.FullName,
		Code:         apperror.ErrInternal.Code,
		Message:      apperror.ErrInternal.Message,
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		f.Code = appErr.Code
		f.Message = appErr.Message
	}
	return f
}

func (s *service) generateOne(
	ctx context.Context,
	actorID string,
	emp employee.Employee,
	month time.Time,
	cal *calendar.Context,
	holidays map[string]bool,
) (*Report, error) {
	employeeID := emp.ID.String()

	release, err := s.locker.Acquire(ctx, lock.EmployeeKey(employeeID))
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	existing, err := qtx.FindForUpdate(ctx, employeeID, month)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Locked() {
		return nil, payrollerrors.ErrAlreadyLocked
	}

	days, err := s.resolver.ResolveMonth(ctx, emp, month, cal)
	if err != nil {
		return nil, err
	}

	rep := Aggregate(AggregateInput{
		EmployeeID: emp.ID,
		Month:      month,
		BaseSalary: emp.MonthlySalary,
		JoinDate:   emp.JoinDate,
		Days:       days,
		Holidays:   holidays,
		Through:    s.zone.Today(),
	})
	now := s.zone.Now()
	rep.EmployeeName = emp.FullName
	rep.Status = StatusLocked
	rep.GeneratedBy = actorID
	rep.GeneratedAt = now
	rep.UpdatedAt = now

	if existing != nil {
		rep.ID = existing.ID
		rep.CreatedAt = existing.CreatedAt
		err = qtx.Update(ctx, &rep)
	} else {
		rep.ID = uuid.New()
		rep.CreatedAt = now
		err = qtx.Create(ctx, &rep)
	}
	if err != nil {
		return nil, err
	}

	monthKey := month.Format(clock.MonthLayout)
	if err := s.audit.Record(ctx, tx, audit.Entry{
		Action:     audit.ActionPayrollGenerated,
		ActorID:    actorID,
		EmployeeID: employeeID,
		SubjectID:  rep.ID.String(),
		Meta: map[string]any{
			"month":        monthKey,
			"net_salary":   rep.NetSalary.StringFixed(2),
			"working_days": rep.WorkingDays,
			"regenerated":  existing != nil,
		},
	}); err != nil {
		return nil, err
	}
	if err := s.publish(ctx, tx, events.EventPayrollLocked, rep, actorID, ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	metrics.PayrollReports.WithLabelValues("generated").Inc()
	return &rep, nil
}

func (s *service) Unlock(ctx context.Context, actorID string, req UnlockPayrollRequest) (UnlockResponse, error) {
	month, err := s.parseMonth(req.Month)
	if err != nil {
		return UnlockResponse{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return UnlockResponse{}, apperror.ErrReasonRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UnlockResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	rows, err := qtx.ListForUpdate(ctx, month, req.EmployeeID)
	if err != nil {
		return UnlockResponse{}, err
	}
	if len(rows) == 0 {
		return UnlockResponse{}, payrollerrors.ErrPayrollNotFound
	}

	now := s.zone.Now()
	unlocked := 0
	for _, rep := range rows {
		if !rep.Locked() {
			continue
		}
		if err := qtx.Unlock(ctx, rep.ID, actorID, reason, now); err != nil {
			return UnlockResponse{}, err
		}
		if err := s.audit.Record(ctx, tx, audit.Entry{
			Action:     audit.ActionPayrollUnlocked,
			ActorID:    actorID,
			EmployeeID: rep.EmployeeID.String(),
			SubjectID:  rep.ID.String(),
			Reason:     reason,
			Meta:       map[string]any{"month": month.Format(clock.MonthLayout)},
		}); err != nil {
			return UnlockResponse{}, err
		}
		if err := s.publish(ctx, tx, events.EventPayrollUnlocked, rep, actorID, reason); err != nil {
			return UnlockResponse{}, err
		}
		unlocked++
	}
	if unlocked == 0 {
		return UnlockResponse{}, payrollerrors.ErrNotLocked
	}

	if err := tx.Commit(); err != nil {
		return UnlockResponse{}, err
	}
	metrics.PayrollReports.WithLabelValues("unlocked").Add(float64(unlocked))
	contextutil.GetLogger(ctx, s.logger).Info("payroll unlocked",
		zap.String("month", month.Format(clock.MonthLayout)),
		zap.Int("reports", unlocked),
	)
	return UnlockResponse{Month: month.Format(clock.MonthLayout), Unlocked: unlocked}, nil
}

func (s *service) Reset(ctx context.Context, actorID string, req ResetPayrollRequest) (ResetResponse, error) {
	month, err := s.parseMonth(req.Month)
	if err != nil {
		return ResetResponse{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return ResetResponse{}, apperror.ErrReasonRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ResetResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	rows, err := qtx.ListForUpdate(ctx, month, req.EmployeeID)
	if err != nil {
		return ResetResponse{}, err
	}
	if len(rows) == 0 {
		return ResetResponse{}, payrollerrors.ErrPayrollNotFound
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, rep := range rows {
		ids = append(ids, rep.ID)
		if err := s.audit.Record(ctx, tx, audit.Entry{
			Action:     audit.ActionPayrollReset,
			ActorID:    actorID,
			EmployeeID: rep.EmployeeID.String(),
			SubjectID:  rep.ID.String(),
			Reason:     reason,
			Meta: map[string]any{
				"month":      month.Format(clock.MonthLayout),
				"status":     rep.Status,
				"net_salary": rep.NetSalary.StringFixed(2),
			},
		}); err != nil {
			return ResetResponse{}, err
		}
		if err := s.publish(ctx, tx, events.EventPayrollReset, rep, actorID, reason); err != nil {
			return ResetResponse{}, err
		}
	}
	if err := qtx.Delete(ctx, ids); err != nil {
		return ResetResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ResetResponse{}, err
	}
	metrics.PayrollReports.WithLabelValues("reset").Add(float64(len(ids)))
	contextutil.GetLogger(ctx, s.logger).Info("payroll reset",
		zap.String("month", month.Format(clock.MonthLayout)),
		zap.Int("reports", len(ids)),
	)
	return ResetResponse{Month: month.Format(clock.MonthLayout), Deleted: len(ids)}, nil
}

func (s *service) GetReports(ctx context.Context, month, employeeID string) ([]ReportResponse, error) {
	m := s.zone.MonthOf(s.zone.Now())
	if strings.TrimSpace(month) != "" {
		parsed, err := s.parseMonth(month)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	rows, err := s.repo.List(ctx, m, employeeID)
	if err != nil {
		return nil, err
	}
	out := make([]ReportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapReport(r))
	}
	return out, nil
}

func (s *service) IsLocked(ctx context.Context, employeeID string, month time.Time) (bool, error) {
	return s.repo.IsLocked(ctx, employeeID, clock.MonthStart(month))
}

func (s *service) targets(ctx context.Context, employeeID string) ([]employee.Employee, error) {
	if employeeID == "" {
		all, err := s.employees.FindAllActive(ctx)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, payrollerrors.ErrNoEmployees
		}
		return all, nil
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, payrollerrors.ErrEmployeeNotFound
	}
	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return []employee.Employee{*emp}, nil
}

func (s *service) parseMonth(v string) (time.Time, error) {
	m, err := clock.ParseMonth(strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidMonth
	}
	return m, nil
}

func (s *service) publish(ctx context.Context, tx *sql.Tx, eventType string, rep Report, actorID, reason string) error {
	return kafka.Enqueue(ctx, kafka.Bind(s.outbox, tx), "payroll_report", rep.ID.String(),
		eventType, events.PayrollLifecycleTopic,
		events.PayrollLifecycleEvent{
			EventType:  eventType,
			ReportID:   rep.ID.String(),
			EmployeeID: rep.EmployeeID.String(),
			Month:      rep.Month.Format(clock.MonthLayout),
			NetSalary:  rep.NetSalary.StringFixed(2),
			ActorID:    actorID,
			Reason:     reason,
			OccurredAt: s.zone.Now(),
		})
}

func mapReport(r Report) ReportResponse {
	resp := ReportResponse{
		ID:             r.ID.String(),
		EmployeeID:     r.EmployeeID.String(),
		EmployeeName:   r.EmployeeName,
		Month:          r.Month.Format(clock.MonthLayout),
		Status:         r.Status,
		BaseSalary:     r.BaseSalary.StringFixed(2),
		DailyRate:      r.DailyRate.StringFixed(2),
		NetSalary:      r.NetSalary.StringFixed(2),
		WorkingDays:    r.WorkingDays,
		PresentDays:    r.PresentDays,
		HalfDays:       r.HalfDays,
		AbsentDays:     r.AbsentDays,
		HolidayDays:    r.HolidayDays,
		LeaveDays:      r.LeaveDays,
		SundayDays:     r.SundayDays,
		DailyBreakdown: r.DailyBreakdown,
		GeneratedBy:    r.GeneratedBy,
		GeneratedAt:    r.GeneratedAt.UTC().Format(time.RFC3339),
		UnlockedBy:     r.UnlockedBy,
		UnlockReason:   r.UnlockReason,
	}
	if resp.DailyBreakdown == nil {
		resp.DailyBreakdown = Breakdown{}
	}
	if r.UnlockedAt != nil {
		v := r.UnlockedAt.UTC().Format(time.RFC3339)
		resp.UnlockedAt = &v
	}
	return resp
}
