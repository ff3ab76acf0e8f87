package commands

import (
	"context"
	"errors"

	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/core/domain/services"
	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// RecomputeKPICommandHandler recomputes and upserts one KPI record.
//
// Recomputation of the same key is serialized through the locker; disjoint
// keys run concurrently. Running it twice over unchanged inputs stores an
// identical record.
type RecomputeKPICommandHandler struct {
	uowFactory KPIUoWFactory
	locker     ports.Locker
	calculator services.KPICalculator
}

func NewRecomputeKPICommandHandler(
	uowFactory KPIUoWFactory,
	locker ports.Locker,
	calculator services.KPICalculator,
) RecomputeKPICommandHandler {
	return RecomputeKPICommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
		calculator: calculator,
	}
}

func (h RecomputeKPICommandHandler) Handle(ctx context.Context, cmd RecomputeKPICommand) (record *kpi.Record, err error) {
	ctx, span := tracing.Start(ctx, "RecomputeKPICommandHandler.Handle",
		attribute.String("kpi.class", cmd.Class().String()),
		attribute.String("kpi.period", cmd.Period().String()),
	)
	defer tracing.End(span, &err)

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	class, period := cmd.Class(), cmd.Period()
	err = withLock(ctx, h.locker, ports.KPILockKey(class.Key(period)), func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		routes, err := uow.RouteRepository().FindCompleted(ctx, period, class.ProductClass)
		if err != nil {
			return err
		}

		in := services.KPIInputs{Routes: routes}

		if class.Type == kpi.MetricForecastAccuracy {
			forecast, err := uow.ForecastRepository().Find(ctx, class.ProductClass, period)
			switch {
			case errors.Is(err, errs.ErrObjectNotFound):
			case err != nil:
				return err
			default:
				in.Forecast = forecast
			}
		}

		kpiRepo := uow.KPIRecordRepository()
		previous, err := kpiRepo.FindPrevious(ctx, class, period)
		switch {
		case errors.Is(err, errs.ErrObjectNotFound):
		case err != nil:
			return err
		default:
			in.Previous = previous
		}

		computed, err := h.calculator.Compute(class, period, in)
		if err != nil {
			return err
		}

		if err = kpiRepo.Upsert(ctx, computed); err != nil {
			return err
		}

		if err = uow.Commit(ctx); err != nil {
			return err
		}

		record = computed
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("kpi.sample_size", record.SampleSize()))
	return record, nil
}
