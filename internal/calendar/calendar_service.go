package calendar

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-attendance/internal/audit"
	calendarerrors "go-attendance/internal/calendar/errors"
	"go-attendance/internal/events"
	"go-attendance/internal/messaging/kafka"
	"go-attendance/internal/shared/apperror"
	"go-attendance/internal/shared/clock"
	"go-attendance/internal/shared/contextutil"
	"go-attendance/internal/shared/lock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LockChecker reports whether an employee's payroll for a month is locked.
type LockChecker interface {
	IsLocked(ctx context.Context, employeeID string, month time.Time) (bool, error)
}

// DayInvalidator drops whatever was derived from one employee day.
type DayInvalidator interface {
	InvalidateDay(ctx context.Context, employeeID string, date time.Time) error
}

type Service interface {
	ForMonth(ctx context.Context, month time.Time) (*Context, error)
	ForRange(ctx context.Context, from, to time.Time) (*Context, error)

	DeclareHoliday(ctx context.Context, adminID string, req DeclareHolidayRequest) (HolidayResponse, error)
	RemoveHoliday(ctx context.Context, adminID, holidayID, reason string) error
	ListHolidays(ctx context.Context, year int) ([]HolidayResponse, error)

	GrantLeave(ctx context.Context, adminID string, req GrantLeaveRequest) (LeaveResponse, error)
	RevokeLeave(ctx context.Context, adminID, leaveID, reason string) error
	ListLeaves(ctx context.Context, employeeID string) ([]LeaveResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	locker      lock.Locker
	audit       audit.Recorder
	outbox      kafka.OutboxRepository
	payroll     LockChecker
	invalidator DayInvalidator
	zone        *clock.Zone
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	locker lock.Locker,
	recorder audit.Recorder,
	outbox kafka.OutboxRepository,
	payroll LockChecker,
	invalidator DayInvalidator,
	zone *clock.Zone,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("calendar.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		locker:      locker,
		audit:       recorder,
		outbox:      outbox,
		payroll:     payroll,
		invalidator: invalidator,
		zone:        zone,
		logger:      l,
	}
}

func (s *service) ForMonth(ctx context.Context, month time.Time) (*Context, error) {
	return s.ForRange(ctx, clock.MonthStart(month), clock.MonthEnd(month))
}

func (s *service) ForRange(ctx context.Context, from, to time.Time) (*Context, error) {
	holidays, err := s.repo.HolidaysBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	leaves, err := s.repo.ApprovedLeavesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return NewContext(holidays, leaves), nil
}

func (s *service) DeclareHoliday(ctx context.Context, adminID string, req DeclareHolidayRequest) (HolidayResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	date, err := clock.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return HolidayResponse{}, calendarerrors.ErrInvalidDateFormat
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HolidayResponse{}, err
	}
	defer tx.Rollback()

	h := &Holiday{
		ID:          uuid.New(),
		Date:        date,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   adminID,
		CreatedAt:   s.zone.Now(),
	}
	if err := s.repo.WithTx(tx).CreateHoliday(ctx, h); err != nil {
		return HolidayResponse{}, mapRepositoryError(err)
	}

	if err := s.audit.Record(ctx, tx, audit.Entry{
		Action:    audit.ActionHolidayDeclared,
		ActorID:   adminID,
		SubjectID: h.ID.String(),
		Reason:    h.Name,
		Meta:      map[string]any{"date": req.Date},
	}); err != nil {
		return HolidayResponse{}, err
	}
	if err := s.publishChange(ctx, tx, events.EventHolidayDeclared, h, adminID); err != nil {
		return HolidayResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return HolidayResponse{}, err
	}
	log.Info("holiday declared", zap.String("date", req.Date), zap.String("holiday_id", h.ID.String()))
	return mapHoliday(*h), nil
}

func (s *service) RemoveHoliday(ctx context.Context, adminID, holidayID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.ErrReasonRequired
	}
	if _, err := uuid.Parse(holidayID); err != nil {
		return calendarerrors.ErrHolidayNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	h, err := qtx.FindHolidayByID(ctx, holidayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return calendarerrors.ErrHolidayNotFound
		}
		return err
	}
	if err := qtx.DeleteHoliday(ctx, holidayID); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, tx, audit.Entry{
		Action:    audit.ActionHolidayRemoved,
		ActorID:   adminID,
		SubjectID: holidayID,
		Reason:    reason,
		Meta:      map[string]any{"date": h.Date.Format(clock.DateLayout), "name": h.Name},
	}); err != nil {
		return err
	}
	if err := s.publishChange(ctx, tx, events.EventHolidayRemoved, h, adminID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	contextutil.GetLogger(ctx, s.logger).Info("holiday removed", zap.String("holiday_id", holidayID))
	return nil
}

func (s *service) publishChange(ctx context.Context, tx *sql.Tx, eventType string, h *Holiday, actorID string) error {
	return kafka.Enqueue(ctx, kafka.Bind(s.outbox, tx), "holiday", h.ID.String(),
		eventType, events.CalendarChangedTopic,
		events.CalendarChangedEvent{
			EventType:  eventType,
			HolidayID:  h.ID.String(),
			Date:       h.Date.Format(clock.DateLayout),
			ActorID:    actorID,
			OccurredAt: s.zone.Now(),
		})
}

func (s *service) ListHolidays(ctx context.Context, year int) ([]HolidayResponse, error) {
	if year == 0 {
		year = s.zone.Today().Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	rows, err := s.repo.HolidaysBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]HolidayResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, mapHoliday(h))
	}
	return out, nil
}

func (s *service) GrantLeave(ctx context.Context, adminID string, req GrantLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("employee_id", req.EmployeeID))

	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveResponse{}, calendarerrors.ErrEmployeeNotFound
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return LeaveResponse{}, apperror.ErrReasonRequired
	}

	release, err := s.locker.Acquire(ctx, lock.EmployeeKey(req.EmployeeID))
	if err != nil {
		return LeaveResponse{}, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	exists, err := qtx.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !exists {
		return LeaveResponse{}, calendarerrors.ErrEmployeeNotFound
	}
	if err := s.ensureUnlocked(ctx, req.EmployeeID, start, end); err != nil {
		return LeaveResponse{}, err
	}
	overlap, err := qtx.HasOverlappingLeave(ctx, req.EmployeeID, start, end)
	if err != nil {
		return LeaveResponse{}, err
	}
	if overlap {
		return LeaveResponse{}, calendarerrors.ErrLeaveOverlap
	}

	now := s.zone.Now()
	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: empID,
		LeaveType:  req.LeaveType,
		StartDate:  start,
		EndDate:    end,
		TotalDays:  int(end.Sub(start).Hours()/24) + 1,
		Reason:     reason,
		Status:     LeaveStatusApproved,
		ApprovedBy: adminID,
		ApprovedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := qtx.CreateLeave(ctx, l); err != nil {
		return LeaveResponse{}, err
	}

	if err := s.audit.Record(ctx, tx, audit.Entry{
		Action:     audit.ActionLeaveGranted,
		ActorID:    adminID,
		EmployeeID: req.EmployeeID,
		SubjectID:  l.ID.String(),
		Reason:     reason,
		Meta: map[string]any{
			"leave_type": l.LeaveType,
			"start_date": start.Format(clock.DateLayout),
			"end_date":   end.Format(clock.DateLayout),
		},
	}); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}
	s.invalidateRange(ctx, req.EmployeeID, start, end)
	log.Info("leave granted", zap.String("leave_id", l.ID.String()))
	return mapLeave(*l), nil
}

func (s *service) RevokeLeave(ctx context.Context, adminID, leaveID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.ErrReasonRequired
	}
	if _, err := uuid.Parse(leaveID); err != nil {
		return calendarerrors.ErrLeaveNotFound
	}

	existing, err := s.repo.FindLeaveByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return calendarerrors.ErrLeaveNotFound
		}
		return err
	}
	employeeID := existing.EmployeeID.String()

	release, err := s.locker.Acquire(ctx, lock.EmployeeKey(employeeID))
	if err != nil {
		return err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := qtx.FindLeaveByID(ctx, leaveID)
	if err != nil {
		return err
	}
	if l.Status != LeaveStatusApproved {
		return calendarerrors.ErrLeaveNotFound
	}
	if err := s.ensureUnlocked(ctx, employeeID, l.StartDate, l.EndDate); err != nil {
		return err
	}
	if err := qtx.RevokeLeave(ctx, leaveID, adminID, s.zone.Now()); err != nil {
		return err
	}
	if err := s.audit.Record(ctx, tx, audit.Entry{
		Action:     audit.ActionLeaveRevoked,
		ActorID:    adminID,
		EmployeeID: employeeID,
		SubjectID:  leaveID,
		Reason:     reason,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.invalidateRange(ctx, employeeID, l.StartDate, l.EndDate)
	return nil
}

func (s *service) ListLeaves(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	rows, err := s.repo.ListLeaves(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	out := make([]LeaveResponse, 0, len(rows))
	for _, l := range rows {
		out = append(out, mapLeave(l))
	}
	return out, nil
}

func (s *service) ensureUnlocked(ctx context.Context, employeeID string, start, end time.Time) error {
	if s.payroll == nil {
		return nil
	}
	for m := clock.MonthStart(start); !m.After(end); m = m.AddDate(0, 1, 0) {
		locked, err := s.payroll.IsLocked(ctx, employeeID, m)
		if err != nil {
			return err
		}
		if locked {
			return calendarerrors.ErrPayrollLocked
		}
	}
	return nil
}

func (s *service) invalidateRange(ctx context.Context, employeeID string, start, end time.Time) {
	if s.invalidator == nil {
		return
	}
	today := s.zone.Today()
	for d := start; !d.After(end) && !d.After(today); d = d.AddDate(0, 0, 1) {
		if err := s.invalidator.InvalidateDay(ctx, employeeID, d); err != nil {
			contextutil.GetLogger(ctx, s.logger).Warn("invalidate timesheet day",
				zap.String("employee_id", employeeID),
				zap.String("date", d.Format(clock.DateLayout)),
				zap.Error(err),
			)
		}
	}
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := clock.ParseDate(strings.TrimSpace(startRaw))
	if err != nil {
		return time.Time{}, time.Time{}, calendarerrors.ErrInvalidDateFormat
	}
	end := start
	if strings.TrimSpace(endRaw) != "" {
		if end, err = clock.ParseDate(strings.TrimSpace(endRaw)); err != nil {
			return time.Time{}, time.Time{}, calendarerrors.ErrInvalidDateFormat
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, calendarerrors.ErrInvalidDateRange
	}
	return start, end, nil
}

func mapRepositoryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return calendarerrors.ErrHolidayExists
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return calendarerrors.ErrHolidayExists
	}
	return err
}

func mapHoliday(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:          h.ID.String(),
		Date:        h.Date.Format(clock.DateLayout),
		Name:        h.Name,
		Description: h.Description,
	}
}

func mapLeave(l Leave) LeaveResponse {
	return LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format(clock.DateLayout),
		EndDate:    l.EndDate.Format(clock.DateLayout),
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Status:     l.Status,
		ApprovedBy: l.ApprovedBy,
	}
}
