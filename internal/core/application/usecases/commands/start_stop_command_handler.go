package commands

import (
	"context"

	"replenishment/internal/core/ports"
)

// StartStopCommandHandler marks a stop as arrived and its order as in transit.
// Starting an already started stop is a no-op.
type StartStopCommandHandler struct {
	uowFactory RouteUoWFactory
	clock      ports.Clock
}

func NewStartStopCommandHandler(uowFactory RouteUoWFactory, clock ports.Clock) StartStopCommandHandler {
	return StartStopCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h StartStopCommandHandler) Handle(ctx context.Context, cmd StartStopCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	at := cmd.ArrivedAt()
	if at.IsZero() {
		at = h.clock.Now()
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()
	r, err := routeRepo.Get(ctx, cmd.RouteID())
	if err != nil {
		return err
	}

	started, err := r.StartStop(cmd.StopID(), at)
	if err != nil || !started {
		return err
	}

	stop, err := r.Stop(cmd.StopID())
	if err != nil {
		return err
	}

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, stop.OrderID())
	if err != nil {
		return err
	}
	if err = o.StartTransit(at); err != nil {
		return err
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
