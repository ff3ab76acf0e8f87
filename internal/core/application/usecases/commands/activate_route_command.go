package commands

import (
	"errors"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"
)

var ErrActivateRouteCommandIsNotConstructed = errors.New(
	"ActivateRouteCommand must be created via NewActivateRouteCommand constructor",
)

// ActivateRouteCommand dispatches a planned route.
type ActivateRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

func NewActivateRouteCommand(routeID kernel.UUID) (ActivateRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return ActivateRouteCommand{}, err
	}

	return ActivateRouteCommand{
		routeID: routeID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ActivateRouteCommand) Validate() error {
	return c.guard.Validate(ErrActivateRouteCommandIsNotConstructed)
}

func (c ActivateRouteCommand) RouteID() kernel.UUID { return c.routeID }
