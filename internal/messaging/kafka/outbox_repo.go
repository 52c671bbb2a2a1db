package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go-attendance/internal/shared/contextutil"

	"github.com/google/uuid"
)

// MaxOutboxRetries parks an event after this many failed publishes.
const MaxOutboxRetries = 20

const (
	OutboxClaimLease  = 2 * time.Minute
	OutboxBaseBackoff = 15 * time.Second
	OutboxMaxBackoff  = time.Hour

	maxOutboxErrorLen = 500
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
	// parked events are left for an operator to inspect
	OutboxStatusParked = "parked"
)

// ErrOutboxEventGone is returned when a mark finds no row in a markable state.
var ErrOutboxEventGone = errors.New("outbox event not found or already settled")

type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	CreatedAt     time.Time
}

// NewOutboxEvent encodes payload as a pending event carrying the request id
// of ctx.
func NewOutboxEvent(ctx context.Context, aggregateType, aggregateID, eventType, topic string, payload any) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	event := OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        OutboxStatusPending,
	}
	return event, ValidateOutboxEvent(event)
}

// Bind returns repo joined to tx, or nil when no outbox is configured.
func Bind(repo OutboxRepository, tx *sql.Tx) OutboxRepository {
	if repo == nil {
		return nil
	}
	return repo.WithTx(tx)
}

// Enqueue is NewOutboxEvent followed by Create on repo.
func Enqueue(ctx context.Context, repo OutboxRepository, aggregateType, aggregateID, eventType, topic string, payload any) error {
	if repo == nil {
		return nil
	}
	event, err := NewOutboxEvent(ctx, aggregateType, aggregateID, eventType, topic, payload)
	if err != nil {
		return err
	}
	return repo.Create(ctx, event)
}

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	query := `
        INSERT INTO outbox_events (
            id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	exec := r.execer()
	_, err := exec.ExecContext(
		ctx, query,
		event.ID, event.RequestID, event.AggregateType,
		event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
	)
	return err
}

// ListPending claims up to limit due events for this worker. Claimed rows are
// leased through next_retry_at so a second replica skips them until the lease
// runs out or the row is marked.
func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	query := `
WITH due AS (
	SELECT id FROM outbox_events
	WHERE status IN ($1, $2)
		AND COALESCE(next_retry_at, created_at) <= NOW()
	ORDER BY created_at
	LIMIT $3
	FOR UPDATE SKIP LOCKED
)
UPDATE outbox_events o
SET next_retry_at = NOW() + make_interval(secs => $4), updated_at = NOW()
FROM due
WHERE o.id = due.id
RETURNING o.id::text, COALESCE(o.request_id, ''), o.aggregate_type, o.aggregate_id,
	o.event_type, o.topic, o.payload, o.status, o.retry_count, o.created_at
`
	rows, err := r.db.QueryContext(ctx, query,
		OutboxStatusPending, OutboxStatusFailed, limit, OutboxClaimLease.Seconds())
	if err != nil {
		return nil, fmt.Errorf("claim outbox events: %w", err)
	}
	defer rows.Close()

	var claimed []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.RequestID, &e.AggregateType, &e.AggregateID,
			&e.EventType, &e.Topic, &e.Payload, &e.Status, &e.RetryCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		claimed = append(claimed, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// RETURNING gives no order guarantee; publish oldest first.
	sort.SliceStable(claimed, func(i, j int) bool { return claimed[i].CreatedAt.Before(claimed[j].CreatedAt) })
	return claimed, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE outbox_events
SET status = $2, processed_at = NOW(), next_retry_at = NULL, error_message = NULL, updated_at = NOW()
WHERE id = $1 AND status <> $2`, id, OutboxStatusSent)
	if err != nil {
		return fmt.Errorf("mark outbox %s sent: %w", id, err)
	}
	return requireRow(res, id)
}

// MarkFailed records a publish failure. The wait doubles per attempt up to
// OutboxMaxBackoff, and the event is parked once MaxOutboxRetries is reached.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	if len(reason) > maxOutboxErrorLen {
		reason = reason[:maxOutboxErrorLen]
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE outbox_events
SET retry_count = retry_count + 1,
	status = CASE WHEN retry_count + 1 >= $4 THEN $5 ELSE $2 END,
	error_message = $3,
	next_retry_at = NOW() + make_interval(secs => LEAST($6 * POWER(2, LEAST(retry_count, 16)), $7)),
	updated_at = NOW()
WHERE id = $1 AND status IN ($8, $2)`,
		id, OutboxStatusFailed, reason, MaxOutboxRetries, OutboxStatusParked,
		OutboxBaseBackoff.Seconds(), OutboxMaxBackoff.Seconds(), OutboxStatusPending)
	if err != nil {
		return fmt.Errorf("mark outbox %s failed: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrOutboxEventGone, id)
	}
	return nil
}

func (r *outboxRepository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed, OutboxStatusParked:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
