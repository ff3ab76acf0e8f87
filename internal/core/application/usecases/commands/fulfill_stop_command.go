package commands

import (
	"errors"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"
)

var ErrFulfillStopCommandIsNotConstructed = errors.New(
	"FulfillStopCommand must be created via NewFulfillStopCommand constructor",
)

// FulfillStopCommand records the quantity discharged at a stop. Zero is a
// valid delivered quantity. A zero completion time means now.
type FulfillStopCommand struct { //nolint:recvcheck //using for validation
	routeID     kernel.UUID
	stopID      kernel.UUID
	quantity    kernel.Quantity
	completedAt time.Time

	guard guard.ConstructorGuard
}

func NewFulfillStopCommand(
	routeID, stopID kernel.UUID,
	quantity kernel.Quantity,
	completedAt time.Time,
) (FulfillStopCommand, error) {
	if err := errors.Join(routeID.Validate(), stopID.Validate()); err != nil {
		return FulfillStopCommand{}, err
	}

	return FulfillStopCommand{
		routeID:     routeID,
		stopID:      stopID,
		quantity:    quantity,
		completedAt: completedAt.UTC(),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c FulfillStopCommand) Validate() error {
	return c.guard.Validate(ErrFulfillStopCommandIsNotConstructed)
}

func (c FulfillStopCommand) RouteID() kernel.UUID      { return c.routeID }
func (c FulfillStopCommand) StopID() kernel.UUID       { return c.stopID }
func (c FulfillStopCommand) Quantity() kernel.Quantity { return c.quantity }
func (c FulfillStopCommand) CompletedAt() time.Time    { return c.completedAt }
