package commands

import (
	"errors"
	"strings"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var (
	ErrDelayRouteCommandIsNotConstructed = errors.New(
		"DelayRouteCommand must be created via NewDelayRouteCommand constructor",
	)
	ErrReasonIsRequired = errs.NewValueIsRequiredError("reason")
)

// DelayRouteCommand flags a running route as delayed.
type DelayRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

func NewDelayRouteCommand(routeID kernel.UUID, reason string) (DelayRouteCommand, error) {
	reason = strings.TrimSpace(reason)

	var reasonErr error
	if reason == "" {
		reasonErr = ErrReasonIsRequired
	}
	if err := errors.Join(routeID.Validate(), reasonErr); err != nil {
		return DelayRouteCommand{}, err
	}

	return DelayRouteCommand{
		routeID: routeID,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c DelayRouteCommand) Validate() error {
	return c.guard.Validate(ErrDelayRouteCommandIsNotConstructed)
}

func (c DelayRouteCommand) RouteID() kernel.UUID { return c.routeID }
func (c DelayRouteCommand) Reason() string       { return c.reason }
