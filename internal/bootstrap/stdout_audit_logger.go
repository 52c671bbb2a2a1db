package bootstrap

import (
	"context"
	"time"

	"go-attendance/internal/audit"

	"go.uber.org/zap"
)

// AuditLog is a process-level event that has no database transaction to
// join, such as the server stopping.
type AuditLog struct {
	Action  audit.Action
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

type StdoutAuditLogger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewStdoutAuditLogger(logger ...*zap.Logger) *StdoutAuditLogger {
	l := zap.L()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &StdoutAuditLogger{logger: l.Named("audit"), now: time.Now}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	l.logger.Info("audit event",
		zap.String("timestamp", l.now().UTC().Format(time.RFC3339)),
		zap.String("action", string(entry.Action)),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
