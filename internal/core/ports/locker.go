package ports

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
)

// Release frees a lock obtained from a Locker.
type Release func(ctx context.Context) error

// Locker provides exclusive, expiring locks keyed by string. Acquire fails with
// errs.ErrConflict when the lock cannot be obtained before ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// SiteLockKey guards every mutation of a site's storage ledger.
func SiteLockKey(siteID kernel.UUID) string {
	return "replenishment:site:" + siteID.String()
}

// KPILockKey serializes recomputation of one KPI record key.
func KPILockKey(recordKey string) string {
	return "replenishment:kpi:" + recordKey
}
