package kpirepo

import (
	"context"

	"replenishment/internal/adapters/out/postgres/pgerr"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormKPIRecordRepository implements ports.KPIRecordRepository using GORM.
type GormKPIRecordRepository struct {
	db *gorm.DB
}

func NewGormKPIRecordRepository(db *gorm.DB) *GormKPIRecordRepository {
	return &GormKPIRecordRepository{db: db}
}

// Upsert inserts the record or overwrites the stored record with the same key.
func (r *GormKPIRecordRepository) Upsert(ctx context.Context, record *kpi.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "metric_type"},
			{Name: "product_class"},
			{Name: "period_start"},
			{Name: "period_end"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"value", "target", "trend", "sample_size", "within_target", "computed_at",
		}),
	}).Create(&dto).Error
}

// FindPrevious returns the latest record of the class and of the same horizon
// as period that ended at or before period starts. Weekly and monthly records
// ending on the same instant never stand in for each other.
func (r *GormKPIRecordRepository) FindPrevious(ctx context.Context, class kpi.MetricClass, period kernel.Period) (*kpi.Record, error) {
	var dto KPIRecordDTO
	err := r.db.WithContext(ctx).
		Where("metric_type = ? AND product_class = ? AND horizon = ? AND period_end <= ?",
			int(class.Type), class.ProductClass, kpi.HorizonOf(period).String(), period.Start()).
		Order("period_end DESC, id DESC").
		Take(&dto).Error
	if err != nil {
		return nil, pgerr.Translate(err, "kpi record", class.String())
	}

	return ToDomain(dto)
}
