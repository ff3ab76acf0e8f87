package ports

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/site"
)

// SiteRepository persists sites and their storage ledgers.
type SiteRepository interface {
	Add(ctx context.Context, aggregate *site.Site) error

	// Update writes the ledger with a version check.
	Update(ctx context.Context, aggregate *site.Site) error

	Get(ctx context.Context, id kernel.UUID) (*site.Site, error)

	// GetForUpdate loads the site and holds a row lock until the transaction
	// ends, giving an atomic read-modify-write of the ledger.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*site.Site, error)

	GetMany(ctx context.Context, ids []kernel.UUID) ([]*site.Site, error)
}
