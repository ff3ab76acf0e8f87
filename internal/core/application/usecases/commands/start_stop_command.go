package commands

import (
	"errors"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"
)

var ErrStartStopCommandIsNotConstructed = errors.New(
	"StartStopCommand must be created via NewStartStopCommand constructor",
)

// StartStopCommand records the truck's arrival at a stop. A zero arrival time
// means now.
type StartStopCommand struct { //nolint:recvcheck //using for validation
	routeID   kernel.UUID
	stopID    kernel.UUID
	arrivedAt time.Time

	guard guard.ConstructorGuard
}

func NewStartStopCommand(routeID, stopID kernel.UUID, arrivedAt time.Time) (StartStopCommand, error) {
	if err := errors.Join(routeID.Validate(), stopID.Validate()); err != nil {
		return StartStopCommand{}, err
	}

	return StartStopCommand{
		routeID:   routeID,
		stopID:    stopID,
		arrivedAt: arrivedAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c StartStopCommand) Validate() error {
	return c.guard.Validate(ErrStartStopCommandIsNotConstructed)
}

func (c StartStopCommand) RouteID() kernel.UUID { return c.routeID }
func (c StartStopCommand) StopID() kernel.UUID  { return c.stopID }
func (c StartStopCommand) ArrivedAt() time.Time { return c.arrivedAt }
