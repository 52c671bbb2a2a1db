package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	attendanceerrors "go-attendance/internal/attendance/errors"
	"go-attendance/internal/audit"
	"go-attendance/internal/shared/apperror"
	"go-attendance/internal/shared/clock"
	"go-attendance/internal/shared/contextutil"
	"go-attendance/internal/shared/lock"
	"go-attendance/internal/shared/metrics"
	"go-attendance/internal/signature"

	"github.com/google/uuid"
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
	CheckIn(ctx context.Context, employeeID string, req SignedSubmission) (EventResponse, error)
	CheckOut(ctx context.Context, employeeID string, req SignedSubmission) (EventResponse, error)
	Record(ctx context.Context, cmd RecordCommand) (Event, error)
	AddManual(ctx context.Context, adminID string, req ManualEventRequest) (EventResponse, error)
	Correct(ctx context.Context, adminID, eventID string, req CorrectEventRequest) (EventResponse, error)
	Delete(ctx context.Context, adminID, eventID string, req DeleteEventRequest) (EventResponse, error)
	EventsForDay(ctx context.Context, employeeID string, date time.Time) ([]Event, error)
	EventsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]Event, error)
	ListDay(ctx context.Context, employeeID, date string) ([]EventResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	locker      lock.Locker
	audit       audit.Recorder
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
	payroll LockChecker,
	invalidator DayInvalidator,
	zone *clock.Zone,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		locker:      locker,
		audit:       recorder,
		payroll:     payroll,
		invalidator: invalidator,
		zone:        zone,
		logger:      l,
	}
}

func (s *service) CheckIn(ctx context.Context, employeeID string, req SignedSubmission) (EventResponse, error) {
	return s.submit(ctx, employeeID, signature.IntentCheckIn, req)
}

func (s *service) CheckOut(ctx context.Context, employeeID string, req SignedSubmission) (EventResponse, error) {
	return s.submit(ctx, employeeID, signature.IntentCheckOut, req)
}

func (s *service) submit(ctx context.Context, employeeID string, intent signature.Intent, req SignedSubmission) (EventResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("employee_id", employeeID),
		zap.String("intent", string(intent)),
	)

	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return EventResponse{}, attendanceerrors.ErrEmployeeNotFound
	}

	now := s.zone.Now()
	expected := signature.BuildMessage(employeeID, now, intent, s.zone)
	if strings.TrimSpace(req.DataToVerify) != expected {
		metrics.TrustFailures.WithLabelValues("message_mismatch").Inc()
		metrics.Rejections.WithLabelValues(apperror.CodeTrustFailure).Inc()
		log.Warn("signed message mismatch", zap.String("received", req.DataToVerify))
		return EventResponse{}, attendanceerrors.ErrMessageMismatch
	}

	verify := func(snap *EmployeeSnapshot) error {
		if !snap.IsActive {
			return attendanceerrors.ErrEmployeeInactive
		}
		switch err := signature.VerifyBound(snap.PublicKey, expected, req.Signature); {
		case errors.Is(err, signature.ErrNotBound):
			return attendanceerrors.ErrDeviceNotBound
		case err != nil:
			log.Warn("signature verification failed")
			return attendanceerrors.ErrSignatureInvalid
		}
		return nil
	}

	ev, err := s.apply(ctx, mutation{
		cmd: RecordCommand{
			EmployeeID:        empID,
			Kind:              kindOf(intent),
			OccurredAt:        now,
			Origin:            OriginDevice,
			SignatureVerified: true,
			ActorID:           employeeID,
			Latitude:          req.Latitude,
			Longitude:         req.Longitude,
		},
		verify: verify,
	})
	if err != nil {
		return EventResponse{}, err
	}
	log.Info("attendance recorded", zap.String("event_id", ev.ID.String()))
	return s.mapToResponse(*ev), nil
}

// Record appends an event for callers that already established trust: an
// employee event must arrive verified and an admin event must carry a reason.
func (s *service) Record(ctx context.Context, cmd RecordCommand) (Event, error) {
	if err := validateCommand(cmd); err != nil {
		return Event{}, err
	}

	m := mutation{cmd: cmd}
	if cmd.Origin == OriginDevice {
		m.verify = requireActive
	}
	if cmd.SupersedesID != nil {
		original, err := s.loadEffective(ctx, cmd.SupersedesID.String())
		if err != nil {
			return Event{}, err
		}
		if original.EmployeeID != cmd.EmployeeID {
			return Event{}, attendanceerrors.ErrEventNotFound
		}
		m.replaced = original
	}
	if cmd.Origin.IsAdmin() {
		m.audit = &audit.Entry{
			Action:  auditActionFor(cmd),
			ActorID: cmd.ActorID,
			Reason:  strings.TrimSpace(cmd.Reason),
		}
	}

	ev, err := s.apply(ctx, m)
	if err != nil {
		return Event{}, err
	}
	return *ev, nil
}

func (s *service) AddManual(ctx context.Context, adminID string, req ManualEventRequest) (EventResponse, error) {
	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return EventResponse{}, attendanceerrors.ErrEmployeeNotFound
	}
	intent, err := signature.ParseIntent(req.Intent)
	if err != nil {
		return EventResponse{}, attendanceerrors.ErrInvalidIntent
	}
	at, err := s.parseTimestamp(req.Timestamp)
	if err != nil {
		return EventResponse{}, err
	}

	ev, err := s.Record(ctx, RecordCommand{
		EmployeeID: empID,
		Kind:       kindOf(intent),
		OccurredAt: at,
		Origin:     OriginAdminManual,
		ActorID:    adminID,
		Reason:     req.Reason,
		SourceNote: "manual entry",
	})
	if err != nil {
		return EventResponse{}, err
	}
	return s.mapToResponse(ev), nil
}

func (s *service) Correct(ctx context.Context, adminID, eventID string, req CorrectEventRequest) (EventResponse, error) {
	if req.Intent == nil && req.Timestamp == nil {
		return EventResponse{}, attendanceerrors.ErrNothingToCorrect
	}
	original, err := s.loadEffective(ctx, eventID)
	if err != nil {
		return EventResponse{}, err
	}

	kind := original.Kind
	if req.Intent != nil {
		intent, err := signature.ParseIntent(*req.Intent)
		if err != nil {
			return EventResponse{}, attendanceerrors.ErrInvalidIntent
		}
		kind = kindOf(intent)
	}
	at := original.OccurredAt
	if req.Timestamp != nil {
		if at, err = s.parseTimestamp(*req.Timestamp); err != nil {
			return EventResponse{}, err
		}
	}

	ev, err := s.Record(ctx, RecordCommand{
		EmployeeID:   original.EmployeeID,
		Kind:         kind,
		OccurredAt:   at,
		Origin:       OriginAdminCorrection,
		SupersedesID: &original.ID,
		ActorID:      adminID,
		Reason:       req.Reason,
		SourceNote:   "correction",
		Latitude:     original.Latitude,
		Longitude:    original.Longitude,
	})
	if err != nil {
		return EventResponse{}, err
	}
	return s.mapToResponse(ev), nil
}

func (s *service) Delete(ctx context.Context, adminID, eventID string, req DeleteEventRequest) (EventResponse, error) {
	original, err := s.loadEffective(ctx, eventID)
	if err != nil {
		return EventResponse{}, err
	}

	ev, err := s.Record(ctx, RecordCommand{
		EmployeeID:   original.EmployeeID,
		Kind:         KindTombstone,
		OccurredAt:   original.OccurredAt,
		Origin:       OriginAdminDeletion,
		SupersedesID: &original.ID,
		ActorID:      adminID,
		Reason:       req.Reason,
		SourceNote:   "deletion",
	})
	if err != nil {
		return EventResponse{}, err
	}
	return s.mapToResponse(ev), nil
}

func (s *service) EventsForDay(ctx context.Context, employeeID string, date time.Time) ([]Event, error) {
	return s.EventsForRange(ctx, employeeID, date, date)
}

func (s *service) EventsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]Event, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, attendanceerrors.ErrEmployeeNotFound
	}
	return s.repo.EffectiveBetween(ctx, employeeID, from, to)
}

func (s *service) ListDay(ctx context.Context, employeeID, date string) ([]EventResponse, error) {
	day, err := clock.ParseDate(date)
	if err != nil {
		return nil, apperror.InvalidField("date")
	}
	rows, err := s.EventsForDay(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	out := make([]EventResponse, 0, len(rows))
	for _, e := range rows {
		out = append(out, s.mapToResponse(e))
	}
	return out, nil
}

type mutation struct {
	cmd      RecordCommand
	replaced *Event
	verify   func(*EmployeeSnapshot) error
	audit    *audit.Entry
}

// apply appends one event under the employee lock and row lock.
func (s *service) apply(ctx context.Context, m mutation) (ev *Event, err error) {
	defer func() {
		var appErr *apperror.AppError
		if err != nil && errors.As(err, &appErr) {
			metrics.Rejections.WithLabelValues(appErr.Code).Inc()
		}
	}()

	employeeID := m.cmd.EmployeeID.String()
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
	snap, err := qtx.LockEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendanceerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	if m.verify != nil {
		if err := m.verify(snap); err != nil {
			return nil, err
		}
	}

	if m.replaced != nil {
		superseded, err := qtx.IsSuperseded(ctx, m.replaced.ID.String())
		if err != nil {
			return nil, err
		}
		if superseded {
			return nil, attendanceerrors.ErrEventSuperseded
		}
	}

	ev = &Event{
		ID:                uuid.New(),
		EmployeeID:        m.cmd.EmployeeID,
		Kind:              m.cmd.Kind,
		OccurredAt:        m.cmd.OccurredAt.UTC(),
		WorkDate:          s.zone.DateOf(m.cmd.OccurredAt),
		Origin:            m.cmd.Origin,
		SignatureVerified: m.cmd.SignatureVerified,
		SupersedesID:      m.cmd.SupersedesID,
		ActorID:           m.cmd.ActorID,
		Reason:            optional(m.cmd.Reason),
		SourceNote:        m.cmd.SourceNote,
		Latitude:          m.cmd.Latitude,
		Longitude:         m.cmd.Longitude,
		CreatedAt:         s.zone.Now(),
	}

	if ev.Origin.IsAdmin() {
		months := []time.Time{clock.MonthStart(ev.WorkDate)}
		if m.replaced != nil && !clock.MonthStart(m.replaced.WorkDate).Equal(months[0]) {
			months = append(months, clock.MonthStart(m.replaced.WorkDate))
		}
		for _, month := range months {
			if err := s.ensureUnlocked(ctx, employeeID, month); err != nil {
				return nil, err
			}
		}
	}

	if ev.Kind != KindTombstone {
		day, err := qtx.EffectiveBetween(ctx, employeeID, ev.WorkDate, ev.WorkDate)
		if err != nil {
			return nil, err
		}
		var replacedID *uuid.UUID
		if m.replaced != nil {
			replacedID = &m.replaced.ID
		}
		if err := checkSequence(day, *ev, replacedID); err != nil {
			return nil, err
		}
	}

	if err := qtx.Create(ctx, ev); err != nil {
		return nil, err
	}

	if m.audit != nil {
		entry := *m.audit
		entry.EmployeeID = employeeID
		entry.SubjectID = ev.ID.String()
		entry.Meta = map[string]any{
			"event_id":    ev.ID.String(),
			"kind":        string(ev.Kind),
			"occurred_at": ev.OccurredAt.Format(time.RFC3339),
		}
		if m.replaced != nil {
			entry.SubjectID = m.replaced.ID.String()
			entry.Meta["original_event_id"] = m.replaced.ID.String()
			entry.Meta["original_occurred_at"] = m.replaced.OccurredAt.Format(time.RFC3339)
			entry.Meta["original_kind"] = string(m.replaced.Kind)
		}
		if err := s.audit.Record(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.EventsRecorded.WithLabelValues(string(ev.Kind), string(ev.Origin)).Inc()
	s.invalidate(ctx, employeeID, ev.WorkDate)
	if m.replaced != nil && !m.replaced.WorkDate.Equal(ev.WorkDate) {
		s.invalidate(ctx, employeeID, m.replaced.WorkDate)
	}
	return ev, nil
}

func (s *service) ensureUnlocked(ctx context.Context, employeeID string, month time.Time) error {
	if s.payroll == nil {
		return nil
	}
	locked, err := s.payroll.IsLocked(ctx, employeeID, month)
	if err != nil {
		return err
	}
	if locked {
		return attendanceerrors.ErrPayrollLocked
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, employeeID string, date time.Time) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateDay(ctx, employeeID, date); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("invalidate timesheet day",
			zap.String("employee_id", employeeID),
			zap.String("date", date.Format(clock.DateLayout)),
			zap.Error(err),
		)
	}
}

// loadEffective returns an event that can still be corrected or deleted.
func (s *service) loadEffective(ctx context.Context, eventID string) (*Event, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, attendanceerrors.ErrEventNotFound
	}
	ev, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendanceerrors.ErrEventNotFound
		}
		return nil, err
	}
	if ev.Kind == KindTombstone {
		return nil, attendanceerrors.ErrEventNotFound
	}
	superseded, err := s.repo.IsSuperseded(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if superseded {
		return nil, attendanceerrors.ErrEventSuperseded
	}
	return ev, nil
}

func (s *service) parseTimestamp(v string) (time.Time, error) {
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, attendanceerrors.ErrInvalidTimestamp
	}
	if at.After(s.zone.Now()) {
		return time.Time{}, attendanceerrors.ErrFutureTimestamp
	}
	return at.UTC(), nil
}

func validateCommand(cmd RecordCommand) error {
	switch cmd.Origin {
	case OriginDevice:
		if !cmd.SignatureVerified {
			return attendanceerrors.ErrUnsignedEmployeeEvent
		}
		if cmd.Kind == KindTombstone || cmd.SupersedesID != nil {
			return apperror.ErrForbidden
		}
	case OriginAdminManual, OriginAdminCorrection, OriginAdminDeletion:
		if strings.TrimSpace(cmd.Reason) == "" {
			return apperror.ErrReasonRequired
		}
		if cmd.Origin != OriginAdminManual && cmd.SupersedesID == nil {
			return apperror.RequiredField("supersedes_id")
		}
		if (cmd.Kind == KindTombstone) != (cmd.Origin == OriginAdminDeletion) {
			return apperror.InvalidField("kind")
		}
	default:
		return apperror.InvalidField("origin")
	}
	if cmd.Kind != KindCheckIn && cmd.Kind != KindCheckOut && cmd.Kind != KindTombstone {
		return apperror.InvalidField("kind")
	}
	if cmd.ActorID == "" {
		return apperror.RequiredField("actor_id")
	}
	return nil
}

func requireActive(snap *EmployeeSnapshot) error {
	if !snap.IsActive {
		return attendanceerrors.ErrEmployeeInactive
	}
	return nil
}

func auditActionFor(cmd RecordCommand) audit.Action {
	switch cmd.Origin {
	case OriginAdminCorrection:
		return audit.ActionAttendanceCorrected
	case OriginAdminDeletion:
		return audit.ActionAttendanceDeleted
	}
	return audit.ActionAttendanceManualAdd
}

func kindOf(intent signature.Intent) Kind {
	if intent == signature.IntentCheckOut {
		return KindCheckOut
	}
	return KindCheckIn
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *service) mapToResponse(e Event) EventResponse {
	resp := EventResponse{
		ID:                e.ID.String(),
		EmployeeID:        e.EmployeeID.String(),
		Kind:              string(e.Kind),
		OccurredAt:        e.OccurredAt.UTC().Format(time.RFC3339),
		WorkDate:          e.WorkDate.Format(clock.DateLayout),
		Origin:            string(e.Origin),
		SignatureVerified: e.SignatureVerified,
		ActorID:           e.ActorID,
		Reason:            e.Reason,
		Latitude:          e.Latitude,
		Longitude:         e.Longitude,
	}
	if e.SupersedesID != nil {
		v := e.SupersedesID.String()
		resp.SupersedesID = &v
	}
	return resp
}
