package kpi

import (
	"errors"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"
)

var ErrForecastIsNotConstructed = errors.New("Forecast must be created via NewForecast or RestoreForecast")

// Forecast is an externally supplied expected delivered quantity for a
// product class over a period. A forecast is keyed by class and period, so
// recording it again replaces the quantity.
type Forecast struct {
	id           kernel.UUID
	productClass string
	period       kernel.Period
	quantity     kernel.Quantity
	recordedAt   time.Time

	guard guard.ConstructorGuard
}

func NewForecast(productClass string, period kernel.Period, quantity kernel.Quantity, now time.Time) (*Forecast, error) {
	productClass = strings.TrimSpace(productClass)
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return &Forecast{
		id:           forecastID(productClass, period),
		productClass: productClass,
		period:       period,
		quantity:     quantity,
		recordedAt:   now.UTC(),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func RestoreForecast(id kernel.UUID, productClass string, period kernel.Period, quantity kernel.Quantity, recordedAt time.Time) (*Forecast, error) {
	if err := errors.Join(id.Validate(), period.Validate()); err != nil {
		return nil, err
	}
	return &Forecast{
		id:           id,
		productClass: productClass,
		period:       period,
		quantity:     quantity,
		recordedAt:   recordedAt.UTC(),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (f *Forecast) Validate() error {
	if f == nil {
		return ErrForecastIsNotConstructed
	}
	return f.guard.Validate(ErrForecastIsNotConstructed)
}

func (f *Forecast) ID() kernel.UUID           { return f.id }
func (f *Forecast) ProductClass() string      { return f.productClass }
func (f *Forecast) Period() kernel.Period     { return f.period }
func (f *Forecast) Quantity() kernel.Quantity { return f.quantity }
func (f *Forecast) RecordedAt() time.Time     { return f.recordedAt }

func forecastID(productClass string, period kernel.Period) kernel.UUID {
	return kernel.NewNameBasedUUID("forecast|" + productClass + "|" +
		period.Start().Format(time.RFC3339) + "|" + period.End().Format(time.RFC3339))
}
