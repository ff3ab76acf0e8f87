package commands

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/ports"
)

// CancelRouteCommandHandler cancels a route and returns its undelivered orders
// to confirmed so they can be planned again. Deliveries already applied to
// site ledgers are kept.
type CancelRouteCommandHandler struct {
	uowFactory RouteUoWFactory
	clock      ports.Clock
}

func NewCancelRouteCommandHandler(uowFactory RouteUoWFactory, clock ports.Clock) CancelRouteCommandHandler {
	return CancelRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle returns the ids of the released orders.
func (h CancelRouteCommandHandler) Handle(ctx context.Context, cmd CancelRouteCommand) ([]kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	routeRepo := uow.RouteRepository()
	r, err := routeRepo.Get(ctx, cmd.RouteID())
	if err != nil {
		return nil, err
	}

	candidates, err := r.Cancel(cmd.Reason(), now)
	if err != nil {
		return nil, err
	}

	orderRepo := uow.OrderRepository()
	orders, err := orderRepo.GetMany(ctx, candidates)
	if err != nil {
		return nil, err
	}

	released := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		if o.Status().IsTerminal() || o.RouteID() == nil || !o.RouteID().IsEqual(r.ID()) {
			continue
		}
		if err = o.ReleaseFromRoute(now); err != nil {
			return nil, err
		}
		if err = orderRepo.Update(ctx, o); err != nil {
			return nil, err
		}
		released = append(released, o.ID())
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return released, nil
}
