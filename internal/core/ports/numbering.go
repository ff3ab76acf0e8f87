package ports

import (
	"context"
	"time"
)

// Sequence names used with NumberGenerator.
const (
	OrderNumbers = "order"
	RouteNumbers = "route"
)

// NumberGenerator hands out human-readable numbers (ORD-000001, RT-000001)
// from a per-entity sequence.
type NumberGenerator interface {
	Next(ctx context.Context, sequence string) (string, error)
}

// Clock abstracts the current time for handlers and jobs.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
