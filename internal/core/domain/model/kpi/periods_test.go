package kpi_test

import (
	"testing"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriods(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name      string
		at        time.Time
		week      [2]time.Time
		prevWeek  [2]time.Time
		prevMonth [2]time.Time
	}{
		{
			name:      "mid week",
			at:        time.Date(2025, 4, 16, 13, 45, 0, 0, time.UTC),
			week:      [2]time.Time{day(2025, 4, 14), day(2025, 4, 21)},
			prevWeek:  [2]time.Time{day(2025, 4, 7), day(2025, 4, 14)},
			prevMonth: [2]time.Time{day(2025, 3, 1), day(2025, 4, 1)},
		},
		{
			name:      "sunday belongs to the week before",
			at:        time.Date(2025, 4, 20, 23, 0, 0, 0, time.UTC),
			week:      [2]time.Time{day(2025, 4, 14), day(2025, 4, 21)},
			prevWeek:  [2]time.Time{day(2025, 4, 7), day(2025, 4, 14)},
			prevMonth: [2]time.Time{day(2025, 3, 1), day(2025, 4, 1)},
		},
		{
			name:      "monday midnight starts a week",
			at:        day(2025, 4, 14),
			week:      [2]time.Time{day(2025, 4, 14), day(2025, 4, 21)},
			prevWeek:  [2]time.Time{day(2025, 4, 7), day(2025, 4, 14)},
			prevMonth: [2]time.Time{day(2025, 3, 1), day(2025, 4, 1)},
		},
		{
			name:      "year boundary",
			at:        day(2026, 1, 2),
			week:      [2]time.Time{day(2025, 12, 29), day(2026, 1, 5)},
			prevWeek:  [2]time.Time{day(2025, 12, 22), day(2025, 12, 29)},
			prevMonth: [2]time.Time{day(2025, 12, 1), day(2026, 1, 1)},
		},
		{
			name:      "other zones are normalized to UTC",
			at:        time.Date(2025, 4, 14, 1, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			week:      [2]time.Time{day(2025, 4, 14), day(2025, 4, 21)},
			prevWeek:  [2]time.Time{day(2025, 4, 7), day(2025, 4, 14)},
			prevMonth: [2]time.Time{day(2025, 3, 1), day(2025, 4, 1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := kpi.WeekOf(tt.at)
			prevWeek := kpi.PreviousWeek(tt.at)
			prevMonth := kpi.PreviousMonth(tt.at)

			assert.Equal(t, tt.week[0], week.Start())
			assert.Equal(t, tt.week[1], week.End())
			assert.Equal(t, tt.prevWeek[0], prevWeek.Start())
			assert.Equal(t, tt.prevWeek[1], prevWeek.End())
			assert.Equal(t, tt.prevMonth[0], prevMonth.Start())
			assert.Equal(t, tt.prevMonth[1], prevMonth.End())
			assert.Equal(t, kpi.HorizonWeekly, kpi.HorizonOf(prevWeek))
			assert.Equal(t, kpi.HorizonMonthly, kpi.HorizonOf(prevMonth))
		})
	}
}

func TestHorizonOf(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	period := func(start, end time.Time) kernel.Period {
		p, err := kernel.NewPeriod(start, end)
		require.NoError(t, err)
		return p
	}

	// 2026-06-01 is a Monday: the week and the month before it end together.
	assert.Equal(t, kpi.HorizonWeek, kpi.HorizonOf(kpi.PreviousWeek(day(2026, 6, 1))))
	assert.Equal(t, kpi.HorizonMonth, kpi.HorizonOf(kpi.PreviousMonth(day(2026, 6, 1))))
	assert.Equal(t, kpi.HorizonMonth, kpi.HorizonOf(kpi.MonthOf(day(2026, 2, 10))))

	threeDays := kpi.HorizonOf(period(day(2026, 5, 29), day(2026, 6, 1)))
	assert.Equal(t, kpi.Horizon("span:72h0m0s"), threeDays)

	// seven days not starting on a Monday are not an ISO week
	assert.NotEqual(t, kpi.HorizonWeek, kpi.HorizonOf(period(day(2026, 5, 27), day(2026, 6, 3))))
}
