package postgres

import (
	"replenishment/internal/adapters/out/postgres/forecastrepo"
	"replenishment/internal/adapters/out/postgres/kpirepo"
	"replenishment/internal/adapters/out/postgres/orderrepo"
	"replenishment/internal/adapters/out/postgres/routerepo"
	"replenishment/internal/adapters/out/postgres/siterepo"

	"gorm.io/gorm"
)

// Models lists every persisted table in dependency order.
func Models() []any {
	return []any{
		&siterepo.SiteDTO{},
		&orderrepo.OrderDTO{},
		&routerepo.RouteDTO{},
		&routerepo.StopDTO{},
		&routerepo.OptimizationDTO{},
		&kpirepo.KPIRecordDTO{},
		&forecastrepo.ForecastDTO{},
	}
}

// Migrate creates or updates the schema and the numbering sequences.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	for _, f := range numberFormats {
		if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS " + f.seq).Error; err != nil {
			return err
		}
	}

	return nil
}
