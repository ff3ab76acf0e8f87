package commands

import (
	"errors"
	"strings"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"
)

var ErrCancelRouteCommandIsNotConstructed = errors.New(
	"CancelRouteCommand must be created via NewCancelRouteCommand constructor",
)

// CancelRouteCommand aborts a route. The reason is optional.
type CancelRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

func NewCancelRouteCommand(routeID kernel.UUID, reason string) (CancelRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return CancelRouteCommand{}, err
	}

	return CancelRouteCommand{
		routeID: routeID,
		reason:  strings.TrimSpace(reason),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CancelRouteCommand) Validate() error {
	return c.guard.Validate(ErrCancelRouteCommandIsNotConstructed)
}

func (c CancelRouteCommand) RouteID() kernel.UUID { return c.routeID }
func (c CancelRouteCommand) Reason() string       { return c.reason }
