package routerepo

import (
	"context"

	"replenishment/internal/adapters/out/postgres/pgerr"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRouteRepository implements ports.RouteRepository using GORM. A route is
// written as one routes row, its route_stops rows and the append-only
// route_optimizations rows.
type GormRouteRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormRouteRepository(db *gorm.DB, tracker aggregateTracker) *GormRouteRepository {
	return &GormRouteRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormRouteRepository) Add(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "route", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the route row with a version check, upserts every stop and
// appends optimization attempts not stored yet.
func (r *GormRouteRepository) Update(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	dto := fromDomain(aggregate)
	dto.Version++
	result := db.Model(&RouteDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").Omit(clause.Associations, "id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Translate(result.Error, "route", aggregate.ID().String())
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&RouteDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return pgerr.Translate(gorm.ErrRecordNotFound, "route", aggregate.ID().String())
		}
		return pgerr.VersionMismatch("route", aggregate.ID().String(), aggregate.Version())
	}

	if len(dto.Stops) > 0 {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&dto.Stops).Error
		if err != nil {
			return err
		}
	}

	if len(dto.Optimizations) > 0 {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto.Optimizations).Error
		if err != nil {
			return err
		}
	}

	aggregate.IncrementVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RouteDTO
	if err := r.preloaded(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, pgerr.Translate(err, "route", id.String())
	}

	return toDomain(dto)
}

// FindUnfinishedByOrder returns the newest route that has a stop for the
// order and is neither completed nor cancelled.
func (r *GormRouteRepository) FindUnfinishedByOrder(ctx context.Context, orderID kernel.UUID) (*route.Route, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	stops := r.db.WithContext(ctx).Model(&StopDTO{}).Select("route_id").Where("order_id = ?", orderID.Bytes())

	var dto RouteDTO
	err := r.preloaded(ctx).
		Where("id IN (?)", stops).
		Where("status NOT IN ?", []int{int(route.StatusCompleted), int(route.StatusCancelled)}).
		Order("created_at DESC").
		First(&dto).Error
	if err != nil {
		return nil, pgerr.Translate(err, "route for order", orderID.String())
	}

	return toDomain(dto)
}

// FindCompleted returns routes completed within [start, end) of the period.
// An empty product class matches every class.
func (r *GormRouteRepository) FindCompleted(ctx context.Context, period kernel.Period, productClass string) ([]*route.Route, error) {
	q := r.preloaded(ctx).
		Where("status = ?", int(route.StatusCompleted)).
		Where("completed_at >= ? AND completed_at < ?", period.Start(), period.End())
	if productClass != "" {
		q = q.Where("product_class = ?", productClass)
	}

	var dtos []RouteDTO
	if err := q.Order("completed_at, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	routes := make([]*route.Route, 0, len(dtos))
	for _, dto := range dtos {
		rt, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}

	return routes, nil
}

func (r *GormRouteRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("Optimizations", func(db *gorm.DB) *gorm.DB { return db.Order("attempt") })
}
