// Package commands contains the replenishment operations that modify state.
// Every command is a value object created through its constructor; every
// handler runs inside a unit of work: Begin, deferred Rollback, Commit.
package commands

import (
	"context"

	"replenishment/internal/core/ports"
)

// Unit of Work interfaces give each handler exactly the repositories it
// touches inside one transaction.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// SiteRepoFactory provides access to the site repository within a transaction.
	SiteRepoFactory interface {
		SiteRepository() ports.SiteRepository
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// RouteRepoFactory provides access to the route repository within a transaction.
	RouteRepoFactory interface {
		RouteRepository() ports.RouteRepository
	}

	// KPIRepoFactory provides access to KPI records and forecasts within a transaction.
	KPIRepoFactory interface {
		KPIRecordRepository() ports.KPIRecordRepository
		ForecastRepository() ports.ForecastRepository
	}

	// SiteUoW is used by commands that only touch storage ledgers.
	SiteUoW interface {
		TxManager
		SiteRepoFactory
	}

	// SiteUoWFactory creates new site unit of work instances.
	SiteUoWFactory interface {
		Create() SiteUoW
	}

	// OrderUoW is used by order lifecycle commands. Sites are readable for
	// capacity checks at creation.
	OrderUoW interface {
		TxManager
		SiteRepoFactory
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// RouteUoW spans routes and everything a delivery changes: the route,
	// the orders on it and the ledgers of their sites.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   routeRepo := uow.RouteRepository()
	//   siteRepo := uow.SiteRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	RouteUoW interface {
		TxManager
		SiteRepoFactory
		OrderRepoFactory
		RouteRepoFactory
	}

	// RouteUoWFactory creates new route unit of work instances.
	RouteUoWFactory interface {
		Create() RouteUoW
	}

	// KPIUoW reads completed routes and writes KPI records and forecasts.
	KPIUoW interface {
		TxManager
		RouteRepoFactory
		KPIRepoFactory
	}

	// KPIUoWFactory creates new KPI unit of work instances.
	KPIUoWFactory interface {
		Create() KPIUoW
	}
)

// withLock runs fn while holding the named lock. Release errors are ignored:
// the lock expires on its own and the writes inside fn are version checked.
func withLock(ctx context.Context, locker ports.Locker, key string, fn func() error) error {
	release, err := locker.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		_ = release(context.WithoutCancel(ctx))
	}()

	return fn()
}
