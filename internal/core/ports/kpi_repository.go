package ports

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
)

// KPIRecordRepository stores derived KPI records. Upsert overwrites the record
// with the same metric class and period.
type KPIRecordRepository interface {
	Upsert(ctx context.Context, record *kpi.Record) error

	// FindPrevious returns the latest record of class with the same horizon as
	// period that ends at or before its start, or errs.ErrObjectNotFound.
	FindPrevious(ctx context.Context, class kpi.MetricClass, period kernel.Period) (*kpi.Record, error)
}

// ForecastRepository stores externally supplied forecasts.
type ForecastRepository interface {
	Upsert(ctx context.Context, forecast *kpi.Forecast) error

	// Find returns the forecast for class and exactly period, or errs.ErrObjectNotFound.
	Find(ctx context.Context, productClass string, period kernel.Period) (*kpi.Forecast, error)
}
