package queries

import (
	"errors"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetLowStockSitesQueryIsNotConstructed = errors.New(
		"GetLowStockSitesQuery must be created via NewGetLowStockSitesQuery constructor",
	)
)

// GetLowStockSitesQuery lists sites at or below their low-stock threshold
// together with the number of open orders already raised for them.
type GetLowStockSitesQuery struct {
	guard guard.ConstructorGuard
}

func NewGetLowStockSitesQuery() GetLowStockSitesQuery {
	return GetLowStockSitesQuery{guard: guard.NewConstructorGuard()}
}

func (q GetLowStockSitesQuery) Validate() error {
	return q.guard.Validate(ErrGetLowStockSitesQueryIsNotConstructed)
}

// GetLowStockSitesQueryResponse is one site that needs replenishment.
// OpenOrders counts orders that are not delivered or cancelled.
type GetLowStockSitesQueryResponse struct {
	ID                  kernel.UUID
	Name                string
	SensorID            string
	Priority            string
	Capacity            kernel.Quantity
	CurrentQuantity     kernel.Quantity
	PercentageRemaining decimal.Decimal
	Connected           bool
	OpenOrders          int
}
