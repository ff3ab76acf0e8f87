package commands

import (
	"errors"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"
)

var ErrPlanOrderCommandIsNotConstructed = errors.New(
	"PlanOrderCommand must be created via NewPlanOrderCommand constructor",
)

// PlanOrderCommand admits a confirmed order to planning for a period.
type PlanOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	period  kernel.Period

	guard guard.ConstructorGuard
}

func NewPlanOrderCommand(orderID kernel.UUID, period kernel.Period) (PlanOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), period.Validate()); err != nil {
		return PlanOrderCommand{}, err
	}

	return PlanOrderCommand{
		orderID: orderID,
		period:  period,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c PlanOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlanOrderCommandIsNotConstructed)
}

func (c PlanOrderCommand) OrderID() kernel.UUID  { return c.orderID }
func (c PlanOrderCommand) Period() kernel.Period { return c.period }
