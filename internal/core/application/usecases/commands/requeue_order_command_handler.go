package commands

import (
	"context"
	"errors"

	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/errs"
)

// RequeueOrderCommandHandler releases an order from a completed or cancelled
// route. Orders on a route that is still running are rejected; cancel their
// stop through CancelOrder or flag an issue and complete the route first.
type RequeueOrderCommandHandler struct {
	uowFactory RouteUoWFactory
	clock      ports.Clock
}

func NewRequeueOrderCommandHandler(uowFactory RouteUoWFactory, clock ports.Clock) RequeueOrderCommandHandler {
	return RequeueOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h RequeueOrderCommandHandler) Handle(ctx context.Context, cmd RequeueOrderCommand) error {
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

	if o.RouteID() == nil {
		return errs.NewStateIsInvalidErrorWithCause("order", o.Status().String(), "requeue",
			errors.New("order is not assigned to a route"))
	}

	r, err := uow.RouteRepository().Get(ctx, *o.RouteID())
	if err != nil {
		return err
	}
	if !r.Status().IsFinished() {
		return errs.NewStateIsInvalidErrorWithCause("order", o.Status().String(), "requeue",
			errors.New("route "+r.Number()+" is still "+r.Status().String()))
	}

	if err = o.ReleaseFromRoute(h.clock.Now()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
