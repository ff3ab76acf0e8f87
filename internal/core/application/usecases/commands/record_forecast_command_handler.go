package commands

import (
	"context"

	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/core/ports"
)

type RecordForecastCommandHandler struct {
	uowFactory KPIUoWFactory
	clock      ports.Clock
}

func NewRecordForecastCommandHandler(uowFactory KPIUoWFactory, clock ports.Clock) RecordForecastCommandHandler {
	return RecordForecastCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h RecordForecastCommandHandler) Handle(ctx context.Context, cmd RecordForecastCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	forecast, err := kpi.NewForecast(cmd.ProductClass(), cmd.Period(), cmd.Quantity(), h.clock.Now())
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

	if err = uow.ForecastRepository().Upsert(ctx, forecast); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
