// Package kafka publishes committed domain events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"replenishment/internal/pkg/ddd"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the wire format of a published event. Payload is the full event
// as JSON.
type Envelope struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AggregateID string          `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Payload     json.RawMessage `json:"payload"`
}

// EventPublisher implements ports.EventPublisher. Messages are keyed by
// aggregate id so events of one aggregate stay ordered within a partition.
type EventPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewEventPublisher(brokers []string, topic string, timeout time.Duration) *EventPublisher {
	return NewEventPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}, timeout)
}

// NewEventPublisherWithWriter is used by tests and by callers that configure
// the writer themselves.
func NewEventPublisherWithWriter(writer messageWriter, timeout time.Duration) *EventPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &EventPublisher{writer: writer, timeout: timeout}
}

// Publish writes all events in one batch.
func (p *EventPublisher) Publish(ctx context.Context, events []ddd.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := toMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d events: %w", len(msgs), err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(e ddd.DomainEvent) (kafka.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s: %w", e.EventName(), err)
	}

	value, err := json.Marshal(Envelope{
		ID:          e.EventID().String(),
		Name:        e.EventName(),
		AggregateID: e.AggregateID().String(),
		OccurredAt:  e.OccurredAt(),
		Payload:     payload,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal envelope of %s: %w", e.EventName(), err)
	}

	return kafka.Message{
		Key:   []byte(e.AggregateID().String()),
		Value: value,
		Time:  e.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event-name", Value: []byte(e.EventName())},
		},
	}, nil
}
