package commands

import (
	"context"

	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/domain/services"
)

// SequenceRouteCommandHandler asks the geometry provider for a new stop order.
// The provider is called between two transactions; the route is written back
// with a version check.
type SequenceRouteCommandHandler struct {
	uowFactory RouteUoWFactory
	sequencer  StopSequencer
}

func NewSequenceRouteCommandHandler(uowFactory RouteUoWFactory, sequencer StopSequencer) SequenceRouteCommandHandler {
	return SequenceRouteCommandHandler{
		uowFactory: uowFactory,
		sequencer:  sequencer,
	}
}

func (h SequenceRouteCommandHandler) Handle(ctx context.Context, cmd SequenceRouteCommand) (services.SequenceOutcome, error) {
	if err := cmd.Validate(); err != nil {
		return services.SequenceOutcome{}, err
	}

	r, err := h.load(ctx, cmd)
	if err != nil {
		return services.SequenceOutcome{}, err
	}

	outcome, err := h.sequencer.Sequence(ctx, r)
	if err != nil {
		return services.SequenceOutcome{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return services.SequenceOutcome{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.RouteRepository().Update(ctx, r); err != nil {
		return services.SequenceOutcome{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return services.SequenceOutcome{}, err
	}

	return outcome, nil
}

func (h SequenceRouteCommandHandler) load(ctx context.Context, cmd SequenceRouteCommand) (*route.Route, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.RouteRepository().Get(ctx, cmd.RouteID())
}
