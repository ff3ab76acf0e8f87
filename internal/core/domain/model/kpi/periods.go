package kpi

import (
	"fmt"
	"time"

	"replenishment/internal/core/domain/model/kernel"
)

// WeekOf is the ISO week (Monday 00:00 UTC to the next Monday) containing t.
func WeekOf(t time.Time) kernel.Period {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	start := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
	p, _ := kernel.NewPeriod(start, start.AddDate(0, 0, 7))
	return p
}

// MonthOf is the calendar month in UTC containing t.
func MonthOf(t time.Time) kernel.Period {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	p, _ := kernel.NewPeriod(start, start.AddDate(0, 1, 0))
	return p
}

// PreviousWeek is the last complete ISO week before t.
func PreviousWeek(t time.Time) kernel.Period {
	return WeekOf(WeekOf(t).Start().AddDate(0, 0, -1))
}

// PreviousMonth is the last complete calendar month before t.
func PreviousMonth(t time.Time) kernel.Period {
	return MonthOf(MonthOf(t).Start().AddDate(0, 0, -1))
}

// Horizon names the kind of period a record covers. Trends only compare
// records of the same horizon.
type Horizon string

const (
	HorizonWeek  Horizon = "week"
	HorizonMonth Horizon = "month"
)

// HorizonOf is HorizonWeek for an ISO week, HorizonMonth for a calendar
// month and a duration based horizon for any other period.
func HorizonOf(p kernel.Period) Horizon {
	switch {
	case p.IsEqual(WeekOf(p.Start())):
		return HorizonWeek
	case p.IsEqual(MonthOf(p.Start())):
		return HorizonMonth
	default:
		return Horizon(fmt.Sprintf("span:%s", p.Duration()))
	}
}

func (h Horizon) String() string { return string(h) }
