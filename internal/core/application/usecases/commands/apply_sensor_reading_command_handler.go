package commands

import (
	"context"

	"replenishment/internal/core/ports"
)

// ApplySensorReadingCommandHandler sets a site's stock from a sensor reading.
// It takes the same per-site lock as deliveries, so a reading never
// interleaves with a ledger increment.
type ApplySensorReadingCommandHandler struct {
	uowFactory SiteUoWFactory
	locker     ports.Locker
}

func NewApplySensorReadingCommandHandler(uowFactory SiteUoWFactory, locker ports.Locker) ApplySensorReadingCommandHandler {
	return ApplySensorReadingCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
	}
}

// Handle reports whether the reading was applied. Readings not newer than the
// last applied one are ignored and return false without error.
func (h ApplySensorReadingCommandHandler) Handle(ctx context.Context, cmd ApplySensorReadingCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	var applied bool
	err := withLock(ctx, h.locker, ports.SiteLockKey(cmd.SiteID()), func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		siteRepo := uow.SiteRepository()
		s, err := siteRepo.GetForUpdate(ctx, cmd.SiteID())
		if err != nil {
			return err
		}

		applied, err = s.ApplySensorReading(cmd.Quantity(), cmd.At())
		if err != nil || !applied {
			return err
		}

		if err = siteRepo.Update(ctx, s); err != nil {
			return err
		}

		return uow.Commit(ctx)
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}
