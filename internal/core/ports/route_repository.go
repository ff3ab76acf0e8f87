package ports

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
)

// RouteRepository persists routes together with their stops and optimization
// history. Update checks the route version.
type RouteRepository interface {
	Add(ctx context.Context, aggregate *route.Route) error
	Update(ctx context.Context, aggregate *route.Route) error
	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// FindUnfinishedByOrder returns the draft, planned, active or delayed route
	// carrying orderID, or errs.ErrObjectNotFound.
	FindUnfinishedByOrder(ctx context.Context, orderID kernel.UUID) (*route.Route, error)

	// FindCompleted returns routes completed inside period. An empty
	// productClass matches every class.
	FindCompleted(ctx context.Context, period kernel.Period, productClass string) ([]*route.Route, error)
}
