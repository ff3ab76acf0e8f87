package queries

import (
	"errors"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetRouteQueryIsNotConstructed = errors.New(
		"GetRouteQuery must be created via NewGetRouteQuery constructor",
	)
)

// GetRouteQuery reads one route with its stops in sequence order and its
// optimization attempts.
type GetRouteQuery struct {
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetRouteQuery(routeID kernel.UUID) (GetRouteQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetRouteQuery{}, err
	}
	return GetRouteQuery{
		routeID: routeID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteQueryIsNotConstructed)
}

func (q GetRouteQuery) RouteID() kernel.UUID { return q.routeID }

type GetRouteQueryResponse struct {
	ID                kernel.UUID
	Number            string
	Type              string
	Status            string
	ProductClass      string
	ScheduledDate     time.Time
	VehicleID         string
	VehicleCapacity   decimal.Decimal
	PlannedDistanceKm float64
	PlannedDuration   time.Duration
	ActualDistanceKm  *float64
	ActualDuration    *time.Duration
	TotalDelivered    decimal.Decimal
	DistancePerUnit   *decimal.Decimal
	Degraded          bool
	DegradedReason    string
	DelayReason       string
	ActivatedAt       *time.Time
	CompletedAt       *time.Time
	Version           int64
	Stops             []RouteStopView
	Optimizations     []RouteOptimizationView
}

type RouteStopView struct {
	ID                kernel.UUID
	OrderID           kernel.UUID
	SiteID            kernel.UUID
	Sequence          int
	Status            string
	DeliveryMethod    string
	PlannedQuantity   decimal.Decimal
	DeliveredQuantity *decimal.Decimal
	EstimatedArrival  *time.Time
	ActualArrival     *time.Time
	CompletedAt       *time.Time
	HasIssue          bool
	IssueDescription  string
}

type RouteOptimizationView struct {
	Attempt             int
	Provider            string
	OriginalDistanceKm  float64
	OptimizedDistanceKm float64
	Success             bool
	ErrorMessage        string
	At                  time.Time
}
