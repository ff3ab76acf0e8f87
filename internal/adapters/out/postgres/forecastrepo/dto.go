// Package forecastrepo persists forecast quantities per product class and
// period.
package forecastrepo

import (
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ForecastDTO struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductClass string          `gorm:"uniqueIndex:idx_forecasts_key;not null;default:''"`
	PeriodStart  time.Time       `gorm:"uniqueIndex:idx_forecasts_key;not null"`
	PeriodEnd    time.Time       `gorm:"uniqueIndex:idx_forecasts_key;not null"`
	Quantity     decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	RecordedAt   time.Time       `gorm:"not null"`
}

func (ForecastDTO) TableName() string {
	return "forecasts"
}

func fromDomain(f *kpi.Forecast) ForecastDTO {
	return ForecastDTO{
		ID:           f.ID().Bytes(),
		ProductClass: f.ProductClass(),
		PeriodStart:  f.Period().Start(),
		PeriodEnd:    f.Period().End(),
		Quantity:     f.Quantity().Decimal(),
		RecordedAt:   f.RecordedAt(),
	}
}

func toDomain(dto ForecastDTO) (*kpi.Forecast, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	period, err := kernel.NewPeriod(dto.PeriodStart, dto.PeriodEnd)
	if err != nil {
		return nil, err
	}
	quantity, err := kernel.NewQuantity(dto.Quantity)
	if err != nil {
		return nil, err
	}

	return kpi.RestoreForecast(id, dto.ProductClass, period, quantity, dto.RecordedAt.UTC())
}
