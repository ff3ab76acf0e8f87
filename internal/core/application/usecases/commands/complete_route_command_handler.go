package commands

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/ports"
)

// CompleteRouteCommandHandler closes a route whose stops are all settled.
// Orders of stops that were flagged with an issue stay undelivered and are
// returned so the caller can re-queue them.
type CompleteRouteCommandHandler struct {
	uowFactory RouteUoWFactory
	clock      ports.Clock
}

func NewCompleteRouteCommandHandler(uowFactory RouteUoWFactory, clock ports.Clock) CompleteRouteCommandHandler {
	return CompleteRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h CompleteRouteCommandHandler) Handle(ctx context.Context, cmd CompleteRouteCommand) ([]kernel.UUID, error) {
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

	routeRepo := uow.RouteRepository()
	r, err := routeRepo.Get(ctx, cmd.RouteID())
	if err != nil {
		return nil, err
	}

	if err = r.Complete(cmd.Actuals(), h.clock.Now()); err != nil {
		return nil, err
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	var undelivered []kernel.UUID
	for _, s := range r.Stops() {
		if s.HasIssue() && !s.IsCompleted() {
			undelivered = append(undelivered, s.OrderID())
		}
	}

	return undelivered, nil
}
