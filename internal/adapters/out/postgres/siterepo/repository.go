package siterepo

import (
	"context"

	"replenishment/internal/adapters/out/postgres/pgerr"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/site"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSiteRepository implements ports.SiteRepository using GORM.
type GormSiteRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormSiteRepository(db *gorm.DB, tracker aggregateTracker) *GormSiteRepository {
	return &GormSiteRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormSiteRepository) Add(ctx context.Context, aggregate *site.Site) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "site", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the site when the stored version still matches the one it was
// read with, then advances the aggregate's version.
func (r *GormSiteRepository) Update(ctx context.Context, aggregate *site.Site) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version++
	result := r.db.WithContext(ctx).
		Model(&SiteDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, aggregate)
	}

	aggregate.IncrementVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormSiteRepository) Get(ctx context.Context, id kernel.UUID) (*site.Site, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

// GetForUpdate reads the site with a row lock held until the transaction ends.
func (r *GormSiteRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*site.Site, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormSiteRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*site.Site, error) {
	if len(ids) == 0 {
		return []*site.Site{}, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	var dtos []SiteDTO
	if err := r.db.WithContext(ctx).Where("id IN ?", raw).Order("name, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	sites := make([]*site.Site, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}

	return sites, nil
}

func (r *GormSiteRepository) get(_ context.Context, db *gorm.DB, id kernel.UUID) (*site.Site, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SiteDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, pgerr.Translate(err, "site", id.String())
	}

	return toDomain(dto)
}

func (r *GormSiteRepository) missOrConflict(ctx context.Context, aggregate *site.Site) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&SiteDTO{}).Where("id = ?", aggregate.ID().Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return pgerr.Translate(gorm.ErrRecordNotFound, "site", aggregate.ID().String())
	}
	return pgerr.VersionMismatch("site", aggregate.ID().String(), aggregate.Version())
}
