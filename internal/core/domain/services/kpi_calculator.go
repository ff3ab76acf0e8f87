package services

import (
	"errors"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/core/domain/model/route"

	"github.com/shopspring/decimal"
)

// KPIInputs are the facts a record is computed from.
type KPIInputs struct {
	Routes   []*route.Route
	Forecast *kpi.Forecast
	Previous *kpi.Record
}

// KPICalculator turns completed routes into a KPI record. It is a pure
// function of its inputs and configuration, so recomputing with the same
// inputs yields an identical record.
type KPICalculator struct {
	targets      kpi.Targets
	band         kpi.TrendBand
	onTimeBuffer time.Duration
}

func NewKPICalculator(targets kpi.Targets, band kpi.TrendBand, onTimeBuffer time.Duration) KPICalculator {
	return KPICalculator{targets: targets, band: band, onTimeBuffer: onTimeBuffer}
}

func (c KPICalculator) Compute(class kpi.MetricClass, period kernel.Period, in KPIInputs) (*kpi.Record, error) {
	if err := errors.Join(class.Type.Validate(), period.Validate()); err != nil {
		return nil, err
	}

	routes := completedIn(in.Routes, class.ProductClass, period)

	var (
		value  *decimal.Decimal
		sample int
	)
	switch class.Type {
	case kpi.MetricDistancePerUnit:
		value, sample = distancePerUnit(routes)
	case kpi.MetricForecastAccuracy:
		value, sample = forecastAccuracy(routes, in.Forecast)
	case kpi.MetricPlanningAccuracy:
		value, sample = planningAccuracy(routes)
	case kpi.MetricOnTimeRate:
		value, sample = onTimeRate(routes, c.onTimeBuffer)
	}

	var previous *decimal.Decimal
	if in.Previous != nil {
		previous = in.Previous.Value()
	}
	if value != nil {
		v := value.Round(kpi.ValueScale)
		value = &v
	}

	return kpi.NewRecord(
		class,
		period,
		value,
		c.targets.For(class.Type, kpi.HorizonOf(period)),
		c.band.Classify(class.Type, value, previous),
		sample,
	)
}

func completedIn(routes []*route.Route, productClass string, period kernel.Period) []*route.Route {
	out := make([]*route.Route, 0, len(routes))
	for _, r := range routes {
		if r.Status() != route.StatusCompleted || r.CompletedAt() == nil {
			continue
		}
		if !period.Contains(*r.CompletedAt()) {
			continue
		}
		if productClass != "" && r.ProductClass() != productClass {
			continue
		}
		out = append(out, r)
	}
	return out
}

// distancePerUnit is nil when nothing was delivered.
func distancePerUnit(routes []*route.Route) (*decimal.Decimal, int) {
	distance, delivered := decimal.Zero, decimal.Zero
	for _, r := range routes {
		if r.ActualDistanceKm() != nil {
			distance = distance.Add(decimal.NewFromFloat(*r.ActualDistanceKm()))
		}
		delivered = delivered.Add(r.TotalDeliveredQuantity().Decimal())
	}
	if delivered.IsZero() {
		return nil, len(routes)
	}
	v := distance.Div(delivered)
	return &v, len(routes)
}

func forecastAccuracy(routes []*route.Route, forecast *kpi.Forecast) (*decimal.Decimal, int) {
	if forecast == nil {
		return nil, len(routes)
	}
	delivered := kernel.ZeroQuantity
	for _, r := range routes {
		delivered = delivered.Add(r.TotalDeliveredQuantity())
	}
	return route.Accuracy(delivered.Float64(), forecast.Quantity().Float64()), len(routes)
}

func planningAccuracy(routes []*route.Route) (*decimal.Decimal, int) {
	sum, n := decimal.Zero, 0
	for _, r := range routes {
		if a := r.PlanningAccuracy(); a != nil {
			sum = sum.Add(*a)
			n++
		}
	}
	if n == 0 {
		return nil, 0
	}
	v := sum.Div(decimal.NewFromInt(int64(n)))
	return &v, n
}

func onTimeRate(routes []*route.Route, buffer time.Duration) (*decimal.Decimal, int) {
	completed, onTime := 0, 0
	for _, r := range routes {
		for _, s := range r.Stops() {
			if !s.IsCompleted() {
				continue
			}
			completed++
			if s.IsOnTime(buffer) {
				onTime++
			}
		}
	}
	if completed == 0 {
		return nil, 0
	}
	v := decimal.NewFromInt(int64(onTime)).Div(decimal.NewFromInt(int64(completed))).Mul(decimal.NewFromInt(100))
	return &v, completed
}
