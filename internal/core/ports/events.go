package ports

import (
	"context"

	"replenishment/internal/pkg/ddd"
)

// EventPublisher delivers domain events to the outside world after a commit.
type EventPublisher interface {
	Publish(ctx context.Context, events []ddd.DomainEvent) error
}
