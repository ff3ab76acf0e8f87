// Package ports defines the contracts between the replenishment core and its
// infrastructure: repositories, the unit of work, the geometry provider, the
// distributed locker, the event publisher and number generation.
package ports

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Update is an optimistic write: it succeeds only when the stored version
// equals the version the aggregate was loaded with, and fails with
// errs.ErrConflict otherwise.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order with a version check.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id or fails with errs.ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetMany retrieves the orders with the given ids. Missing ids are skipped.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error)

	// FindPlanningCandidates returns confirmed or planned orders that are not
	// assigned to a route and need no approval. An empty productClass matches
	// every class.
	FindPlanningCandidates(ctx context.Context, productClass string) ([]*order.Order, error)
}
