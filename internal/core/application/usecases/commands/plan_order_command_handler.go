package commands

import (
	"context"

	"replenishment/internal/core/ports"
)

// PlanOrderCommandHandler records the planning period of an order.
type PlanOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
}

func NewPlanOrderCommandHandler(uowFactory OrderUoWFactory, clock ports.Clock) PlanOrderCommandHandler {
	return PlanOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h PlanOrderCommandHandler) Handle(ctx context.Context, cmd PlanOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = o.Plan(cmd.Period(), h.clock.Now()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
