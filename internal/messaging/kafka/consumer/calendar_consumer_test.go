package consumer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-attendance/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeInvalidator struct {
	dates []time.Time
	err   error
}

func (f *fakeInvalidator) InvalidateDate(ctx context.Context, date time.Time) error {
	f.dates = append(f.dates, date)
	return f.err
}

type fakeReader struct {
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func TestHandleCalendarChanged(t *testing.T) {
	cache := &fakeInvalidator{}

	err := consumer.HandleCalendarChanged(context.Background(), kafkago.Message{
		Value: []byte(`{"event_type":"holiday_declared","date":"2024-03-25"}`),
	}, cache)

	assert.NoError(t, err)
	assert.Equal(t, []time.Time{time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)}, cache.dates)
}

func TestHandleCalendarChanged_DropsGarbage(t *testing.T) {
	cache := &fakeInvalidator{}

	assert.NoError(t, consumer.HandleCalendarChanged(context.Background(), kafkago.Message{Value: []byte("{")}, cache))
	assert.NoError(t, consumer.HandleCalendarChanged(context.Background(), kafkago.Message{Value: []byte(`{"date":"25/03"}`)}, cache))
	assert.Empty(t, cache.dates)
}

func TestConsumeCalendarChanged_CommitsOnlyHandled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := &fakeInvalidator{err: errors.New("redis down")}
	reader := &fakeReader{
		cancel: cancel,
		msgs: []kafkago.Message{
			{Offset: 1, Value: []byte(`{"date":"2024-03-25"}`)},
			{Offset: 2, Value: []byte(`not json`)},
		},
	}

	consumer.ConsumeCalendarChanged(ctx, reader, cache, zap.NewNop())

	assert.Equal(t, []int64{2}, reader.committed)
}
