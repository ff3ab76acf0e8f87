package commands

import (
	"errors"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var ErrCompleteRouteCommandIsNotConstructed = errors.New(
	"CompleteRouteCommand must be created via NewCompleteRouteCommand constructor",
)

// CompleteRouteCommand closes a route. Actual distance and duration are
// optional overrides of the values derived from the stops.
type CompleteRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID
	actuals route.Actuals

	guard guard.ConstructorGuard
}

func NewCompleteRouteCommand(routeID kernel.UUID, actualDistanceKm *float64, actualDuration *time.Duration) (CompleteRouteCommand, error) {
	cmd := CompleteRouteCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := routeID.Validate(); err != nil {
		return CompleteRouteCommand{}, err
	}
	if actualDistanceKm != nil && *actualDistanceKm < 0 {
		return CompleteRouteCommand{}, errs.NewValueIsOutOfRangeError("actual distance", *actualDistanceKm, 0, "+inf")
	}
	if actualDuration != nil && *actualDuration < 0 {
		return CompleteRouteCommand{}, errs.NewValueIsOutOfRangeError("actual duration", actualDuration.String(), 0, "+inf")
	}

	cmd.routeID = routeID
	cmd.actuals = route.Actuals{DistanceKm: actualDistanceKm, Duration: actualDuration}
	return cmd, nil
}

func (c CompleteRouteCommand) Validate() error {
	return c.guard.Validate(ErrCompleteRouteCommandIsNotConstructed)
}

func (c CompleteRouteCommand) RouteID() kernel.UUID   { return c.routeID }
func (c CompleteRouteCommand) Actuals() route.Actuals { return c.actuals }
