// Package kpirepo persists KPI records keyed by metric class and period.
package kpirepo

import (
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// KPIRecordDTO is the row of the kpi_records table. The natural key
// (metric_type, product_class, period_start, period_end) is unique; the id is
// derived from it.
type KPIRecordDTO struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	MetricType   int              `gorm:"uniqueIndex:idx_kpi_records_key;not null"`
	ProductClass string           `gorm:"uniqueIndex:idx_kpi_records_key;not null;default:''"`
	PeriodStart  time.Time        `gorm:"uniqueIndex:idx_kpi_records_key;not null"`
	PeriodEnd    time.Time        `gorm:"uniqueIndex:idx_kpi_records_key;not null;index"`
	Horizon      string           `gorm:"not null;default:''"`
	Value        *decimal.Decimal `gorm:"type:numeric(20,4)"`
	Target       *decimal.Decimal `gorm:"type:numeric(20,4)"`
	Trend        int              `gorm:"not null"`
	SampleSize   int              `gorm:"not null"`
	WithinTarget bool
	ComputedAt   time.Time `gorm:"autoUpdateTime"`
}

func (KPIRecordDTO) TableName() string {
	return "kpi_records"
}

func fromDomain(r *kpi.Record) KPIRecordDTO {
	return KPIRecordDTO{
		ID:           r.ID().Bytes(),
		MetricType:   int(r.Class().Type),
		ProductClass: r.Class().ProductClass,
		PeriodStart:  r.Period().Start(),
		PeriodEnd:    r.Period().End(),
		Horizon:      kpi.HorizonOf(r.Period()).String(),
		Value:        r.Value(),
		Target:       r.Target(),
		Trend:        int(r.Trend()),
		SampleSize:   r.SampleSize(),
		WithinTarget: r.WithinTarget(),
	}
}

// ToDomain is exported for the read side, which lists records with raw
// filters and reuses this mapping.
func ToDomain(dto KPIRecordDTO) (*kpi.Record, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	class, err := kpi.NewMetricClass(kpi.MetricType(dto.MetricType), dto.ProductClass)
	if err != nil {
		return nil, err
	}
	period, err := kernel.NewPeriod(dto.PeriodStart, dto.PeriodEnd)
	if err != nil {
		return nil, err
	}

	return kpi.RestoreRecord(id, class, period, dto.Value, dto.Target, kpi.Trend(dto.Trend), dto.SampleSize, dto.WithinTarget)
}
