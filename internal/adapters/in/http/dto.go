package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request bodies. Quantities are decoded as decimals so tonnages are exact.

type Location struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

type NewSite struct {
	Name               string           `json:"name" validate:"required"`
	Location           *Location        `json:"location" validate:"required"`
	Capacity           *decimal.Decimal `json:"capacity" validate:"required"`
	CurrentQuantity    *decimal.Decimal `json:"currentQuantity"`
	LowStockAbsolute   *decimal.Decimal `json:"lowStockAbsolute"`
	LowStockPercentage *decimal.Decimal `json:"lowStockPercentage"`
	Priority           string           `json:"priority" validate:"required,oneof=low medium high"`
	SensorID           string           `json:"sensorId"`
}

type SensorReading struct {
	Quantity  *decimal.Decimal `json:"quantity" validate:"required"`
	Timestamp *time.Time       `json:"timestamp"`
}

type NewOrder struct {
	SiteID       uuid.UUID        `json:"siteId" validate:"required"`
	Quantity     *decimal.Decimal `json:"quantity" validate:"required"`
	Type         string           `json:"type" validate:"required,oneof=contract on_demand emergency proactive"`
	Priority     string           `json:"priority" validate:"required,oneof=low medium high urgent"`
	ProductClass string           `json:"productClass"`
	WindowStart  *time.Time       `json:"windowStart" validate:"required_with=WindowEnd"`
	WindowEnd    *time.Time       `json:"windowEnd" validate:"required_with=WindowStart"`
}

type Approval struct {
	Approver string `json:"approver" validate:"required"`
}

type PeriodRequest struct {
	PeriodStart time.Time `json:"periodStart" validate:"required"`
	PeriodEnd   time.Time `json:"periodEnd" validate:"required"`
}

type NewRoute struct {
	VehicleID       string           `json:"vehicleId" validate:"required"`
	VehicleCapacity *decimal.Decimal `json:"vehicleCapacity" validate:"required"`
	ScheduledDate   time.Time        `json:"scheduledDate" validate:"required"`
	ProductClass    string           `json:"productClass"`
	Origin          *Location        `json:"origin"`
	DeliveryMethod  string           `json:"deliveryMethod" validate:"omitempty,oneof=silo_to_silo compartment_delivery tote_delivery"`
}

type RouteActuals struct {
	ActualDistanceKm      *float64 `json:"actualDistanceKm" validate:"omitempty,gte=0"`
	ActualDurationMinutes *float64 `json:"actualDurationMinutes" validate:"omitempty,gte=0"`
}

type Reason struct {
	Reason string `json:"reason"`
}

type StopArrival struct {
	ArrivedAt *time.Time `json:"arrivedAt"`
}

type Fulfillment struct {
	Quantity    *decimal.Decimal `json:"quantity" validate:"required"`
	CompletedAt *time.Time       `json:"completedAt"`
}

type StopIssue struct {
	Description string `json:"description" validate:"required"`
	Resolution  string `json:"resolution"`
}

type NewForecast struct {
	ProductClass string           `json:"productClass" validate:"required"`
	PeriodStart  time.Time        `json:"periodStart" validate:"required"`
	PeriodEnd    time.Time        `json:"periodEnd" validate:"required"`
	Quantity     *decimal.Decimal `json:"quantity" validate:"required"`
}

type RecomputeRequest struct {
	Metric       string    `json:"metric" validate:"omitempty,oneof=distance_per_unit forecast_accuracy planning_accuracy on_time_rate"`
	ProductClass string    `json:"productClass"`
	PeriodStart  time.Time `json:"periodStart" validate:"required"`
	PeriodEnd    time.Time `json:"periodEnd" validate:"required"`
}

// KPIParams are the query parameters of the KPI listing and export.
type KPIParams struct {
	Metric       *string
	ProductClass *string
	From         *time.Time
	To           *time.Time
}

// Responses.

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Health struct {
	Status string `json:"status"`
}

type Created struct {
	ID uuid.UUID `json:"id"`
}

type LowStockSite struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	SensorID            string    `json:"sensorId,omitempty"`
	Priority            string    `json:"priority"`
	Capacity            float64   `json:"capacity"`
	CurrentQuantity     float64   `json:"currentQuantity"`
	PercentageRemaining float64   `json:"percentageRemaining"`
	Connected           bool      `json:"connected"`
	OpenOrders          int       `json:"openOrders"`
}

type ReadingResult struct {
	Applied bool `json:"applied"`
}

type Order struct {
	ID               uuid.UUID `json:"id"`
	Number           string    `json:"number"`
	SiteID           uuid.UUID `json:"siteId"`
	Quantity         float64   `json:"quantity"`
	Type             string    `json:"type"`
	Priority         string    `json:"priority"`
	Status           string    `json:"status"`
	ProductClass     string    `json:"productClass,omitempty"`
	RequiresApproval bool      `json:"requiresApproval"`
	CreatedAt        time.Time `json:"createdAt"`
}

type PendingOrder struct {
	Order
	SiteName    string     `json:"siteName"`
	RouteID     *uuid.UUID `json:"routeId,omitempty"`
	WindowStart *time.Time `json:"windowStart,omitempty"`
	WindowEnd   *time.Time `json:"windowEnd,omitempty"`
}

type BuiltRoute struct {
	ID                   uuid.UUID   `json:"id"`
	Number               string      `json:"number"`
	Type                 string      `json:"type"`
	Status               string      `json:"status"`
	Stops                int         `json:"stops"`
	TotalPlannedQuantity float64     `json:"totalPlannedQuantity"`
	PlannedDistanceKm    float64     `json:"plannedDistanceKm"`
	Provider             string      `json:"provider"`
	Degraded             bool        `json:"degraded"`
	DegradedReason       string      `json:"degradedReason,omitempty"`
	RejectedOrderIDs     []uuid.UUID `json:"rejectedOrderIds"`
}

type Route struct {
	ID                     uuid.UUID      `json:"id"`
	Number                 string         `json:"number"`
	Type                   string         `json:"type"`
	Status                 string         `json:"status"`
	ProductClass           string         `json:"productClass,omitempty"`
	ScheduledDate          time.Time      `json:"scheduledDate"`
	VehicleID              string         `json:"vehicleId"`
	VehicleCapacity        float64        `json:"vehicleCapacity"`
	PlannedDistanceKm      float64        `json:"plannedDistanceKm"`
	PlannedDurationMinutes float64        `json:"plannedDurationMinutes"`
	ActualDistanceKm       *float64       `json:"actualDistanceKm,omitempty"`
	ActualDurationMinutes  *float64       `json:"actualDurationMinutes,omitempty"`
	TotalDelivered         float64        `json:"totalDelivered"`
	DistancePerUnit        *float64       `json:"distancePerUnit,omitempty"`
	Degraded               bool           `json:"degraded"`
	DegradedReason         string         `json:"degradedReason,omitempty"`
	DelayReason            string         `json:"delayReason,omitempty"`
	ActivatedAt            *time.Time     `json:"activatedAt,omitempty"`
	CompletedAt            *time.Time     `json:"completedAt,omitempty"`
	Version                int64          `json:"version"`
	Stops                  []Stop         `json:"stops"`
	Optimizations          []Optimization `json:"optimizations"`
}

type Stop struct {
	ID                uuid.UUID  `json:"id"`
	OrderID           uuid.UUID  `json:"orderId"`
	SiteID            uuid.UUID  `json:"siteId"`
	Sequence          int        `json:"sequence"`
	Status            string     `json:"status"`
	DeliveryMethod    string     `json:"deliveryMethod"`
	PlannedQuantity   float64    `json:"plannedQuantity"`
	DeliveredQuantity *float64   `json:"deliveredQuantity,omitempty"`
	EstimatedArrival  *time.Time `json:"estimatedArrival,omitempty"`
	ActualArrival     *time.Time `json:"actualArrival,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	HasIssue          bool       `json:"hasIssue"`
	IssueDescription  string     `json:"issueDescription,omitempty"`
}

type Optimization struct {
	Attempt             int       `json:"attempt"`
	Provider            string    `json:"provider"`
	OriginalDistanceKm  float64   `json:"originalDistanceKm"`
	OptimizedDistanceKm float64   `json:"optimizedDistanceKm"`
	Success             bool      `json:"success"`
	ErrorMessage        string    `json:"errorMessage,omitempty"`
	At                  time.Time `json:"at"`
}

type SequenceResult struct {
	Provider string `json:"provider"`
	Degraded bool   `json:"degraded"`
	Cause    string `json:"cause,omitempty"`
}

type OrderIDs struct {
	OrderIDs []uuid.UUID `json:"orderIds"`
}

type FulfillmentResult struct {
	Delta   float64 `json:"delta"`
	Applied float64 `json:"applied"`
	First   bool    `json:"first"`
}

type KPIRecord struct {
	MetricType   string    `json:"metricType"`
	ProductClass string    `json:"productClass"`
	Horizon      string    `json:"horizon"`
	PeriodStart  time.Time `json:"periodStart"`
	PeriodEnd    time.Time `json:"periodEnd"`
	Value        *float64  `json:"value"`
	Target       *float64  `json:"target"`
	Trend        string    `json:"trend"`
	SampleSize   int       `json:"sampleSize"`
	WithinTarget bool      `json:"withinTarget"`
	ComputedAt   time.Time `json:"computedAt"`
}
