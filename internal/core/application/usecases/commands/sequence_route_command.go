package commands

import (
	"errors"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"
)

var ErrSequenceRouteCommandIsNotConstructed = errors.New(
	"SequenceRouteCommand must be created via NewSequenceRouteCommand constructor",
)

// SequenceRouteCommand re-orders the stops of a route that has not started.
type SequenceRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

func NewSequenceRouteCommand(routeID kernel.UUID) (SequenceRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return SequenceRouteCommand{}, err
	}

	return SequenceRouteCommand{
		routeID: routeID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c SequenceRouteCommand) Validate() error {
	return c.guard.Validate(ErrSequenceRouteCommandIsNotConstructed)
}

func (c SequenceRouteCommand) RouteID() kernel.UUID { return c.routeID }
