// Package orderrepo persists Order aggregates.
package orderrepo

import (
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the row of the orders table. Planning candidates are looked up
// by status and route, so both are indexed.
type OrderDTO struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Number            string          `gorm:"uniqueIndex;not null"`
	SiteID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	RequestedQuantity decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Type              int             `gorm:"not null"`
	Priority          int             `gorm:"not null"`
	ProductClass      string          `gorm:"index"`
	WindowStart       *time.Time
	WindowEnd         *time.Time
	Status            int `gorm:"index;not null"`
	RequiresApproval  bool
	ApprovedBy        *string
	ApprovedAt        *time.Time
	PlanningStart     *time.Time
	PlanningEnd       *time.Time
	RouteID           *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt         time.Time  `gorm:"not null"`
	DeliveredAt       *time.Time
	Version           int64 `gorm:"not null;default:0"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:                o.ID().Bytes(),
		Number:            o.Number(),
		SiteID:            o.SiteID().Bytes(),
		RequestedQuantity: o.RequestedQuantity().Decimal(),
		Type:              int(o.Type()),
		Priority:          int(o.Priority()),
		ProductClass:      o.ProductClass(),
		Status:            int(o.Status()),
		RequiresApproval:  o.RequiresApproval(),
		ApprovedBy:        o.ApprovedBy(),
		ApprovedAt:        o.ApprovedAt(),
		CreatedAt:         o.CreatedAt(),
		DeliveredAt:       o.DeliveredAt(),
		Version:           o.Version(),
	}

	if w := o.DeliveryWindow(); w != nil {
		start, end := w.Start(), w.End()
		dto.WindowStart, dto.WindowEnd = &start, &end
	}
	if p := o.PlanningPeriod(); p != nil {
		start, end := p.Start(), p.End()
		dto.PlanningStart, dto.PlanningEnd = &start, &end
	}
	if id := o.RouteID(); id != nil {
		raw := id.Bytes()
		dto.RouteID = &raw
	}

	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	siteID, err := kernel.UUIDFromBytes(dto.SiteID[:])
	if err != nil {
		return nil, err
	}

	var routeID *kernel.UUID
	if dto.RouteID != nil {
		rID, routeErr := kernel.UUIDFromBytes((*dto.RouteID)[:])
		if routeErr != nil {
			return nil, routeErr
		}
		routeID = &rID
	}

	quantity, err := kernel.NewQuantity(dto.RequestedQuantity)
	if err != nil {
		return nil, err
	}
	window, err := periodOf(dto.WindowStart, dto.WindowEnd)
	if err != nil {
		return nil, err
	}
	planning, err := periodOf(dto.PlanningStart, dto.PlanningEnd)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:     id,
		Number: dto.Number,
		SiteID: siteID,
		Request: order.Request{
			Quantity:       quantity,
			Type:           order.Type(dto.Type),
			Priority:       order.Priority(dto.Priority),
			ProductClass:   dto.ProductClass,
			DeliveryWindow: window,
		},
		Status:           order.Status(dto.Status),
		RequiresApproval: dto.RequiresApproval,
		ApprovedBy:       dto.ApprovedBy,
		ApprovedAt:       utc(dto.ApprovedAt),
		PlanningPeriod:   planning,
		RouteID:          routeID,
		CreatedAt:        dto.CreatedAt,
		DeliveredAt:      utc(dto.DeliveredAt),
		Version:          dto.Version,
	})
}

func periodOf(start, end *time.Time) (*kernel.Period, error) {
	if start == nil || end == nil {
		return nil, nil
	}
	p, err := kernel.NewPeriod(*start, *end)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
