package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/meeting_room/internal/core/ports"
	"github.com/srgjo27/meeting_room/internal/platform/config"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaNotifier_Send(t *testing.T) {
	w := &fakeWriter{}
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	k := &KafkaNotifier{writer: w, now: func() time.Time { return at }}

	err := k.Send(context.Background(), ports.Notification{
		To:      "admin@example.com",
		Subject: "s",
		Body:    "b",
		Key:     "42",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, EventTypeEscalation, header(msg, HeaderEventType))
	assert.Equal(t, eventSource, header(msg, HeaderSource))

	_, err = uuid.Parse(header(msg, HeaderEventID))
	assert.NoError(t, err)

	var event EscalationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EscalationEvent{To: "admin@example.com", Subject: "s", Body: "b", Key: "42", OccurredAt: at}, event)
}

func TestKafkaNotifier_SendError(t *testing.T) {
	k := &KafkaNotifier{writer: &fakeWriter{err: errors.New("leader not available")}, now: time.Now}

	err := k.Send(context.Background(), ports.Notification{Key: "1"})
	assert.ErrorContains(t, err, "leader not available")
}

func TestNewKafkaNotifier_Validation(t *testing.T) {
	_, err := NewKafkaNotifier(config.Kafka{Topic: "t"})
	assert.ErrorContains(t, err, "broker")

	_, err = NewKafkaNotifier(config.Kafka{Brokers: []string{"localhost:9092"}})
	assert.ErrorContains(t, err, "topic")

	k, err := NewKafkaNotifier(config.Kafka{Brokers: []string{"localhost:9092"}, Topic: "t"})
	require.NoError(t, err)
	assert.NoError(t, k.Close())
}
