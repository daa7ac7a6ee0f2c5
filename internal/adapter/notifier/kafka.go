package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/srgjo27/meeting_room/internal/core/ports"
	"github.com/srgjo27/meeting_room/internal/platform/config"
)

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"

	EventTypeEscalation = "booking.escalation_requested"
	eventSource         = "meeting-room-api"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EscalationEvent is the payload published for a downstream mail worker.
type EscalationEvent struct {
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
}

type KafkaNotifier struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafkaNotifier(cfg config.Kafka) (*KafkaNotifier, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}

	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  3,
	}

	return &KafkaNotifier{writer: writer, now: time.Now}, nil
}

func (k *KafkaNotifier) Send(ctx context.Context, n ports.Notification) error {
	value, err := json.Marshal(EscalationEvent{
		To:         n.To,
		Subject:    n.Subject,
		Body:       n.Body,
		Key:        n.Key,
		OccurredAt: k.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode escalation event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(uuid.NewString())},
			{Key: HeaderEventType, Value: []byte(EventTypeEscalation)},
			{Key: HeaderSource, Value: []byte(eventSource)},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish escalation event: %w", err)
	}

	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
