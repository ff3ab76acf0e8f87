// Package queries contains read operations for retrieving system state.
// Query handlers read straight from the database with SQL and return flat
// read models; they never load aggregates.
package queries

import (
	"errors"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetPendingOrdersQueryIsNotConstructed = errors.New(
		"GetPendingOrdersQuery must be created via NewGetPendingOrdersQuery constructor",
	)
)

// GetPendingOrdersQuery lists orders that still wait for delivery: pending,
// confirmed and planned. An empty product class returns every class.
//
// Example:
//
//	query := NewGetPendingOrdersQuery("feed")
//	handler := NewGetPendingOrdersQueryHandler(db)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get pending orders: %w", err)
//	}
//
//	for _, o := range orders {
//	    fmt.Printf("%s %s t for %s\n", o.Number, o.RequestedQuantity, o.SiteName)
//	}
type GetPendingOrdersQuery struct {
	productClass string

	guard guard.ConstructorGuard
}

func NewGetPendingOrdersQuery(productClass string) GetPendingOrdersQuery {
	return GetPendingOrdersQuery{
		productClass: strings.TrimSpace(productClass),
		guard:        guard.NewConstructorGuard(),
	}
}

// Validate ensures the query was created through the constructor.
func (q GetPendingOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingOrdersQueryIsNotConstructed)
}

func (q GetPendingOrdersQuery) ProductClass() string { return q.productClass }

// GetPendingOrdersQueryResponse is one order awaiting delivery.
type GetPendingOrdersQueryResponse struct {
	ID                kernel.UUID
	Number            string
	SiteID            kernel.UUID
	SiteName          string
	RequestedQuantity decimal.Decimal
	Type              string
	Priority          string
	Status            string
	ProductClass      string
	RequiresApproval  bool
	WindowStart       *time.Time
	WindowEnd         *time.Time
	RouteID           *kernel.UUID
	CreatedAt         time.Time
}
