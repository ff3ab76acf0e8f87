package route

import (
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/ddd"
)

type CreatedEvent struct {
	ddd.BaseEvent
	Number        string `json:"number"`
	Type          string `json:"type"`
	StopCount     int    `json:"stopCount"`
	TotalPlanned  string `json:"totalPlanned"`
	VehicleID     string `json:"vehicleId"`
	ScheduledDate string `json:"scheduledDate"`
}

type SequencedEvent struct {
	ddd.BaseEvent
	Provider          string  `json:"provider"`
	Success           bool    `json:"success"`
	Degraded          bool    `json:"degraded"`
	PlannedDistanceKm float64 `json:"plannedDistanceKm"`
}

type StatusChangedEvent struct {
	ddd.BaseEvent
	Number string `json:"number"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type StopFulfilledEvent struct {
	ddd.BaseEvent
	StopID   string `json:"stopId"`
	OrderID  string `json:"orderId"`
	SiteID   string `json:"siteId"`
	Quantity string `json:"quantity"`
}

func newCreatedEvent(r *Route) CreatedEvent {
	return CreatedEvent{
		BaseEvent:     ddd.NewBaseEvent("route.created", r.id.Bytes(), r.createdAt),
		Number:        r.number,
		Type:          r.routeType.String(),
		StopCount:     len(r.stops),
		TotalPlanned:  r.totalPlanned.String(),
		VehicleID:     r.vehicle.ID,
		ScheduledDate: r.scheduledDate.Format(time.DateOnly),
	}
}

func newSequencedEvent(r *Route, opt Optimization) SequencedEvent {
	return SequencedEvent{
		BaseEvent:         ddd.NewBaseEvent("route.sequenced", r.id.Bytes(), opt.At),
		Provider:          opt.Provider,
		Success:           opt.Success,
		Degraded:          r.degraded,
		PlannedDistanceKm: r.plannedDistanceKm,
	}
}

func newStatusChangedEvent(r *Route, name string, at time.Time, reason string) StatusChangedEvent {
	return StatusChangedEvent{
		BaseEvent: ddd.NewBaseEvent(name, r.id.Bytes(), at),
		Number:    r.number,
		Status:    r.status.String(),
		Reason:    strings.TrimSpace(reason),
	}
}

func newStopFulfilledEvent(r *Route, s *Stop, delta kernel.Quantity, at time.Time) StopFulfilledEvent {
	return StopFulfilledEvent{
		BaseEvent: ddd.NewBaseEvent("route.stop_fulfilled", r.id.Bytes(), at),
		StopID:    s.id.String(),
		OrderID:   s.orderID.String(),
		SiteID:    s.siteID.String(),
		Quantity:  delta.String(),
	}
}
