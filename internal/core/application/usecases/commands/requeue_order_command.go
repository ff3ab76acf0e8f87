package commands

import (
	"errors"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"
)

var ErrRequeueOrderCommandIsNotConstructed = errors.New(
	"RequeueOrderCommand must be created via NewRequeueOrderCommand constructor",
)

// RequeueOrderCommand returns an undelivered order left on a finished route to
// the planning pool.
type RequeueOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRequeueOrderCommand(orderID kernel.UUID) (RequeueOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RequeueOrderCommand{}, err
	}

	return RequeueOrderCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RequeueOrderCommand) Validate() error {
	return c.guard.Validate(ErrRequeueOrderCommandIsNotConstructed)
}

func (c RequeueOrderCommand) OrderID() kernel.UUID { return c.orderID }
