package commands

import (
	"context"

	"replenishment/internal/core/ports"
)

// DelayRouteCommandHandler marks an active route as delayed. Fulfillments
// keep working on a delayed route.
type DelayRouteCommandHandler struct {
	uowFactory RouteUoWFactory
	clock      ports.Clock
}

func NewDelayRouteCommandHandler(uowFactory RouteUoWFactory, clock ports.Clock) DelayRouteCommandHandler {
	return DelayRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h DelayRouteCommandHandler) Handle(ctx context.Context, cmd DelayRouteCommand) error {
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

	routeRepo := uow.RouteRepository()
	r, err := routeRepo.Get(ctx, cmd.RouteID())
	if err != nil {
		return err
	}

	if err = r.Delay(cmd.Reason(), h.clock.Now()); err != nil {
		return err
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
