package site

import (
	"time"

	"replenishment/internal/pkg/ddd"
)

type LowStockDetectedEvent struct {
	ddd.BaseEvent
	CurrentQuantity     string `json:"currentQuantity"`
	Capacity            string `json:"capacity"`
	PercentageRemaining string `json:"percentageRemaining"`
}

type StockReplenishedEvent struct {
	ddd.BaseEvent
	Applied         string `json:"applied"`
	CurrentQuantity string `json:"currentQuantity"`
}

func newLowStockDetected(s *Site, at time.Time) LowStockDetectedEvent {
	return LowStockDetectedEvent{
		BaseEvent:           ddd.NewBaseEvent("site.low_stock_detected", s.id.Bytes(), at),
		CurrentQuantity:     s.current.String(),
		Capacity:            s.capacity.String(),
		PercentageRemaining: s.PercentageRemaining().String(),
	}
}

func newStockReplenished(s *Site, applied string, at time.Time) StockReplenishedEvent {
	return StockReplenishedEvent{
		BaseEvent:       ddd.NewBaseEvent("site.stock_replenished", s.id.Bytes(), at),
		Applied:         applied,
		CurrentQuantity: s.current.String(),
	}
}
