package commands

import (
	"context"

	"replenishment/internal/core/ports"
)

// CancelOrderCommandHandler cancels an order. When the order sits on a route
// that is still running, its stop is cancelled in the same transaction so the
// route can complete without it.
type CancelOrderCommandHandler struct {
	uowFactory RouteUoWFactory
	clock      ports.Clock
}

func NewCancelOrderCommandHandler(uowFactory RouteUoWFactory, clock ports.Clock) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
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

	routeID := o.RouteID()
	if err = o.Cancel(h.clock.Now()); err != nil {
		return err
	}

	if routeID != nil {
		routeRepo := uow.RouteRepository()
		r, err := routeRepo.Get(ctx, *routeID)
		if err != nil {
			return err
		}
		if !r.Status().IsFinished() {
			if err = r.CancelStopForOrder(o.ID()); err != nil {
				return err
			}
			if err = routeRepo.Update(ctx, r); err != nil {
				return err
			}
		}
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
