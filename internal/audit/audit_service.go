package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go-attendance/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is one privileged action to be written to the trail.
type Entry struct {
	Action     Action
	ActorID    string
	EmployeeID string
	SubjectID  string
	Reason     string
	Meta       map[string]any
}

// Recorder appends entries inside the caller's transaction, so an action
// and its audit row commit or roll back together.
type Recorder interface {
	Record(ctx context.Context, tx *sql.Tx, entry Entry) error
}

type Service interface {
	Recorder
	List(ctx context.Context, filter ListFilter) ([]AuditLogResponse, error)
	Verify(ctx context.Context) (VerifyResponse, error)
}

type service struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("audit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.service")
	}
	return &service{repo: repo, now: time.Now, logger: l}
}

func (s *service) Record(ctx context.Context, tx *sql.Tx, entry Entry) error {
	qrepo := s.repo.WithTx(tx)
	if err := qrepo.LockChain(ctx); err != nil {
		return fmt.Errorf("lock audit chain: %w", err)
	}
	prev, err := qrepo.Last(ctx)
	if err != nil {
		return fmt.Errorf("read audit chain: %w", err)
	}

	meta := "{}"
	if len(entry.Meta) > 0 {
		b, err := json.Marshal(entry.Meta)
		if err != nil {
			return fmt.Errorf("encode audit meta: %w", err)
		}
		meta = string(b)
	}

	row := &AuditLog{
		ID:         uuid.New(),
		Action:     entry.Action,
		ActorID:    entry.ActorID,
		EmployeeID: optional(entry.EmployeeID),
		SubjectID:  optional(entry.SubjectID),
		Reason:     entry.Reason,
		Meta:       meta,
		RequestID:  contextutil.GetRequestID(ctx),
		CreatedAt:  s.now().UTC(),
	}
	if prev != nil {
		row.PrevHash = prev.Hash
	}
	row.Hash = HashEntry(*row)

	if err := qrepo.Append(ctx, row); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	contextutil.GetLogger(ctx, s.logger).Info("audit entry recorded",
		zap.String("action", string(row.Action)),
		zap.String("actor_id", row.ActorID),
		zap.String("employee_id", entry.EmployeeID),
		zap.String("subject_id", entry.SubjectID),
	)
	return nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]AuditLogResponse, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	res := make([]AuditLogResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) Verify(ctx context.Context) (VerifyResponse, error) {
	rows, err := s.repo.Chain(ctx)
	if err != nil {
		return VerifyResponse{}, err
	}
	resp := VerifyResponse{Entries: len(rows), Intact: true}
	if i := VerifyChain(rows); i >= 0 {
		resp.Intact = false
		id := rows[i].ID.String()
		resp.BrokenAt = &id
		contextutil.GetLogger(ctx, s.logger).Error("audit chain broken",
			zap.String("audit_id", id),
			zap.Int64("seq", rows[i].Seq),
		)
	}
	return resp, nil
}

// HashEntry is the chain link of one row: it covers the row's content and
// the previous row's hash.
func HashEntry(row AuditLog) string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
		row.Action,
		row.ActorID,
		deref(row.EmployeeID),
		deref(row.SubjectID),
		row.Reason,
		row.Meta,
		row.CreatedAt.UTC().Format(time.RFC3339Nano),
		row.PrevHash,
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VerifyChain checks rows in ascending seq order. It returns the index of
// the first broken link, or -1.
func VerifyChain(rows []AuditLog) int {
	prev := ""
	for i, r := range rows {
		if r.PrevHash != prev || HashEntry(r) != r.Hash {
			return i
		}
		prev = r.Hash
	}
	return -1
}

func mapToResponse(r AuditLog) AuditLogResponse {
	var meta any
	_ = json.Unmarshal([]byte(r.Meta), &meta)
	return AuditLogResponse{
		ID:         r.ID.String(),
		Action:     string(r.Action),
		ActorID:    r.ActorID,
		EmployeeID: r.EmployeeID,
		SubjectID:  r.SubjectID,
		Reason:     r.Reason,
		Meta:       meta,
		Hash:       r.Hash,
		PrevHash:   r.PrevHash,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
