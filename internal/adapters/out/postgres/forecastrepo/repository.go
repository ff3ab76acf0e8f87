package forecastrepo

import (
	"context"

	"replenishment/internal/adapters/out/postgres/pgerr"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormForecastRepository implements ports.ForecastRepository using GORM.
type GormForecastRepository struct {
	db *gorm.DB
}

func NewGormForecastRepository(db *gorm.DB) *GormForecastRepository {
	return &GormForecastRepository{db: db}
}

// Upsert replaces the quantity of an existing forecast for the same class and
// period.
func (r *GormForecastRepository) Upsert(ctx context.Context, forecast *kpi.Forecast) error {
	if err := forecast.Validate(); err != nil {
		return err
	}

	dto := fromDomain(forecast)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "product_class"},
			{Name: "period_start"},
			{Name: "period_end"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "recorded_at"}),
	}).Create(&dto).Error
}

func (r *GormForecastRepository) Find(ctx context.Context, productClass string, period kernel.Period) (*kpi.Forecast, error) {
	var dto ForecastDTO
	err := r.db.WithContext(ctx).
		Where("product_class = ? AND period_start = ? AND period_end = ?", productClass, period.Start(), period.End()).
		First(&dto).Error
	if err != nil {
		return nil, pgerr.Translate(err, "forecast", productClass+" "+period.String())
	}

	return toDomain(dto)
}
