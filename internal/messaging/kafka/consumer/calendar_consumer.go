package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-attendance/internal/events"
	"go-attendance/internal/shared/clock"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// DateInvalidator drops cached daily records of every employee for a date.
type DateInvalidator interface {
	InvalidateDate(ctx context.Context, date time.Time) error
}

// ConsumeCalendarChanged invalidates cached timesheet days whenever a holiday
// is declared or removed.
func ConsumeCalendarChanged(
	ctx context.Context,
	reader MessageReader,
	cache DateInvalidator,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.calendar_changed")
	log.Info("calendar consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("calendar consumer stopped")
				return
			}
			log.Error("fetch calendar message failed", zap.Error(err))
			continue
		}

		if err := HandleCalendarChanged(ctx, msg, cache); err != nil {
			// Left uncommitted so the message is redelivered.
			log.Error("handle calendar message failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit calendar message failed", zap.Error(err))
		}
	}
}

// HandleCalendarChanged applies one message. Undecodable messages are
// dropped (nil error) since redelivery cannot fix them.
func HandleCalendarChanged(ctx context.Context, msg kafkago.Message, cache DateInvalidator) error {
	var event events.CalendarChangedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		zap.L().Warn("drop undecodable calendar event", zap.Error(err))
		return nil
	}
	date, err := clock.ParseDate(event.Date)
	if err != nil {
		zap.L().Warn("drop calendar event with bad date", zap.String("date", event.Date))
		return nil
	}
	return cache.InvalidateDate(ctx, date)
}
