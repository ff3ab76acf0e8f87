package commands

import (
	"context"
)

// FlagStopIssueCommandHandler settles a stop without a delivery. The order
// stays undelivered and can be re-queued once the route is finished.
type FlagStopIssueCommandHandler struct {
	uowFactory RouteUoWFactory
}

func NewFlagStopIssueCommandHandler(uowFactory RouteUoWFactory) FlagStopIssueCommandHandler {
	return FlagStopIssueCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h FlagStopIssueCommandHandler) Handle(ctx context.Context, cmd FlagStopIssueCommand) error {
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

	if err = r.FlagStopIssue(cmd.StopID(), cmd.Description(), cmd.Resolution()); err != nil {
		return err
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
