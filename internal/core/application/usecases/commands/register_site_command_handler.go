package commands

import (
	"context"

	"replenishment/internal/core/domain/model/site"
)

// RegisterSiteCommandHandler persists a new site.
type RegisterSiteCommandHandler struct {
	uowFactory SiteUoWFactory
}

func NewRegisterSiteCommandHandler(uowFactory SiteUoWFactory) RegisterSiteCommandHandler {
	return RegisterSiteCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle fails with a validation error when the ledger is inconsistent
// (current above capacity, negative quantities) and with a ConflictError when
// the id is already taken.
func (h RegisterSiteCommandHandler) Handle(ctx context.Context, cmd RegisterSiteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	s, err := site.NewSite(cmd.SiteID(), cmd.Attributes())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.SiteRepository().Add(ctx, s); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
