// Package ddd contains the small building blocks shared by aggregates:
// domain events and the recorder aggregates embed to collect them.
package ddd

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by an aggregate. Events are collected during a
// unit of work and published after a successful commit.
type DomainEvent interface {
	EventID() uuid.UUID
	EventName() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// BaseEvent implements the identity part of DomainEvent. Concrete events embed
// it and add their payload fields.
type BaseEvent struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	AggregateOf uuid.UUID `json:"aggregateId"`
	At          time.Time `json:"occurredAt"`
}

func NewBaseEvent(name string, aggregateID uuid.UUID, at time.Time) BaseEvent {
	return BaseEvent{
		ID:          uuid.New(),
		Name:        name,
		AggregateOf: aggregateID,
		At:          at.UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseEvent) EventName() string      { return e.Name }
func (e BaseEvent) AggregateID() uuid.UUID { return e.AggregateOf }
func (e BaseEvent) OccurredAt() time.Time  { return e.At }

// EventSource is implemented by aggregates that raise domain events.
type EventSource interface {
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

// EventRecorder is embedded by aggregates.
type EventRecorder struct {
	events []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

func (r *EventRecorder) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *EventRecorder) ClearDomainEvents() {
	r.events = nil
}
