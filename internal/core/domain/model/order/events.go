package order

import (
	"time"

	"replenishment/internal/pkg/ddd"
)

type CreatedEvent struct {
	ddd.BaseEvent
	Number           string `json:"number"`
	SiteID           string `json:"siteId"`
	Quantity         string `json:"quantity"`
	Type             string `json:"type"`
	Priority         string `json:"priority"`
	RequiresApproval bool   `json:"requiresApproval"`
}

type StatusChangedEvent struct {
	ddd.BaseEvent
	Number string `json:"number"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func newCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		BaseEvent:        ddd.NewBaseEvent("order.created", o.id.Bytes(), o.createdAt),
		Number:           o.number,
		SiteID:           o.siteID.String(),
		Quantity:         o.requestedQuantity.String(),
		Type:             o.orderType.String(),
		Priority:         o.priority.String(),
		RequiresApproval: o.requiresApproval,
	}
}

func newStatusChangedEvent(o *Order, from Status, at time.Time) StatusChangedEvent {
	return StatusChangedEvent{
		BaseEvent: ddd.NewBaseEvent("order.status_changed", o.id.Bytes(), at),
		Number:    o.number,
		From:      from.String(),
		To:        o.status.String(),
	}
}
