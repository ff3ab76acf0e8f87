package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary. Repositories returned
// by it are bound to the transaction started by Begin. Domain events raised by
// aggregates written through them are published after Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	SiteRepository() SiteRepository
	OrderRepository() OrderRepository
	RouteRepository() RouteRepository
	KPIRecordRepository() KPIRecordRepository
	ForecastRepository() ForecastRepository
}
