package commands

import (
	"context"
	"fmt"

	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/errs"
)

// ActivateRouteCommandHandler moves a planned route to active. Every order
// whose stop is still open must be planned on this route.
type ActivateRouteCommandHandler struct {
	uowFactory RouteUoWFactory
	clock      ports.Clock
}

func NewActivateRouteCommandHandler(uowFactory RouteUoWFactory, clock ports.Clock) ActivateRouteCommandHandler {
	return ActivateRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h ActivateRouteCommandHandler) Handle(ctx context.Context, cmd ActivateRouteCommand) error {
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

	orders, err := uow.OrderRepository().GetMany(ctx, r.UndeliveredOrderIDs())
	if err != nil {
		return err
	}
	for _, o := range orders {
		if o.Status().IsTerminal() {
			continue
		}
		if o.RouteID() == nil || !o.RouteID().IsEqual(r.ID()) {
			return errs.NewStateIsInvalidErrorWithCause("route", r.Status().String(), "activate",
				fmt.Errorf("order %s is not assigned to route %s", o.Number(), r.Number()))
		}
	}

	if err = r.Activate(h.clock.Now()); err != nil {
		return err
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
