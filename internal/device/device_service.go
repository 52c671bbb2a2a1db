package device

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-attendance/internal/audit"
	deviceerrors "go-attendance/internal/device/errors"
	"go-attendance/internal/events"
	"go-attendance/internal/messaging/kafka"
	"go-attendance/internal/shared/apperror"
	"go-attendance/internal/shared/contextutil"
	"go-attendance/internal/shared/lock"
	"go-attendance/internal/shared/metrics"
	"go-attendance/internal/signature"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Register(ctx context.Context, employeeID string, req RegisterDeviceRequest) (DeviceStatusResponse, error)
	Verify(ctx context.Context, employeeID, message, sig string) (bool, error)
	Reset(ctx context.Context, adminID, employeeID, reason string) error
	Status(ctx context.Context, employeeID string) (DeviceStatusResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	locker lock.Locker
	audit  audit.Recorder
	outbox kafka.OutboxRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	locker lock.Locker,
	recorder audit.Recorder,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("device.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("device.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		locker: locker,
		audit:  recorder,
		outbox: outbox,
		now:    time.Now,
		logger: l,
	}
}

func (s *service) Register(ctx context.Context, employeeID string, req RegisterDeviceRequest) (DeviceStatusResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("employee_id", employeeID))

	if _, err := uuid.Parse(employeeID); err != nil {
		return DeviceStatusResponse{}, deviceerrors.ErrEmployeeNotFound
	}
	if _, err := signature.ParsePublicKeyPEM(req.PublicKey); err != nil {
		log.Warn("register device rejected key", zap.Error(err))
		return DeviceStatusResponse{}, apperror.Wrap(err, deviceerrors.ErrInvalidPublicKey.Code,
			deviceerrors.ErrInvalidPublicKey.Message, deviceerrors.ErrInvalidPublicKey.HTTPStatus)
	}

	release, err := s.locker.Acquire(ctx, lock.EmployeeKey(employeeID))
	if err != nil {
		return DeviceStatusResponse{}, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DeviceStatusResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ident, err := qtx.LockByID(ctx, employeeID)
	if err != nil {
		return DeviceStatusResponse{}, mapRepositoryError(err)
	}
	if !ident.IsActive {
		return DeviceStatusResponse{}, deviceerrors.ErrEmployeeInactive
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), ident.Email) {
		metrics.TrustFailures.WithLabelValues("email_mismatch").Inc()
		log.Warn("register device email mismatch")
		return DeviceStatusResponse{}, deviceerrors.ErrEmailMismatch
	}
	if ident.Bound() {
		return DeviceStatusResponse{}, deviceerrors.ErrDeviceAlreadyBound
	}

	now := s.now().UTC()
	pem := strings.TrimSpace(req.PublicKey)
	fingerprint := strings.TrimSpace(req.DeviceFingerprint)
	bound, err := qtx.BindKey(ctx, employeeID, pem, fingerprint, now)
	if err != nil {
		return DeviceStatusResponse{}, err
	}
	if !bound {
		return DeviceStatusResponse{}, deviceerrors.ErrDeviceAlreadyBound
	}

	if err := kafka.Enqueue(ctx, kafka.Bind(s.outbox, tx), "employee", employeeID,
		events.EventDeviceRegistered, events.DeviceBindingTopic,
		events.DeviceBindingEvent{
			EventType:  events.EventDeviceRegistered,
			EmployeeID: employeeID,
			ActorID:    employeeID,
			OccurredAt: now,
		}); err != nil {
		return DeviceStatusResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return DeviceStatusResponse{}, err
	}

	log.Info("device registered")
	ident.PublicKey = &pem
	if fingerprint != "" {
		ident.DeviceFingerprint = &fingerprint
	}
	ident.DeviceBoundAt = &now
	return mapToStatus(*ident), nil
}

// Verify checks sig against the currently registered key. An unknown
// employee or an unbound device is a failed verification, not an error.
func (s *service) Verify(ctx context.Context, employeeID, message, sig string) (bool, error) {
	ident, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return signature.VerifyBound(ident.PublicKey, message, sig) == nil, nil
}

func (s *service) Reset(ctx context.Context, adminID, employeeID, reason string) error {
	log := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("employee_id", employeeID),
		zap.String("admin_id", adminID),
	)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.ErrReasonRequired
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return deviceerrors.ErrEmployeeNotFound
	}

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
	ident, err := qtx.LockByID(ctx, employeeID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !ident.Bound() {
		return deviceerrors.ErrNoDeviceBound
	}
	if err := qtx.ClearKey(ctx, employeeID); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, tx, audit.Entry{
		Action:     audit.ActionDeviceReset,
		ActorID:    adminID,
		EmployeeID: employeeID,
		SubjectID:  employeeID,
		Reason:     reason,
		Meta:       map[string]any{"device_fingerprint": ident.DeviceFingerprint},
	}); err != nil {
		return err
	}

	now := s.now().UTC()
	if err := kafka.Enqueue(ctx, kafka.Bind(s.outbox, tx), "employee", employeeID,
		events.EventDeviceReset, events.DeviceBindingTopic,
		events.DeviceBindingEvent{
			EventType:  events.EventDeviceReset,
			EmployeeID: employeeID,
			ActorID:    adminID,
			Reason:     reason,
			OccurredAt: now,
		}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("device reset")
	return nil
}

func (s *service) Status(ctx context.Context, employeeID string) (DeviceStatusResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return DeviceStatusResponse{}, deviceerrors.ErrEmployeeNotFound
	}
	ident, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		return DeviceStatusResponse{}, mapRepositoryError(err)
	}
	return mapToStatus(*ident), nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return deviceerrors.ErrEmployeeNotFound
	}
	return err
}

func mapToStatus(i Identity) DeviceStatusResponse {
	resp := DeviceStatusResponse{
		EmployeeID:        i.ID.String(),
		Bound:             i.Bound(),
		DeviceFingerprint: i.DeviceFingerprint,
	}
	if i.DeviceBoundAt != nil {
		v := i.DeviceBoundAt.UTC().Format(time.RFC3339)
		resp.BoundAt = &v
	}
	return resp
}
