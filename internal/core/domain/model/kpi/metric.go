package kpi

import (
	"fmt"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/errs"
)

// MetricType is what a record measures.
type MetricType int

const (
	MetricUnknown MetricType = iota
	MetricDistancePerUnit
	MetricForecastAccuracy
	MetricPlanningAccuracy
	MetricOnTimeRate
)

var metricNames = map[MetricType]string{
	MetricDistancePerUnit:  "distance_per_unit",
	MetricForecastAccuracy: "forecast_accuracy",
	MetricPlanningAccuracy: "planning_accuracy",
	MetricOnTimeRate:       "on_time_rate",
}

// AllMetrics lists every metric type in a stable order.
func AllMetrics() []MetricType {
	return []MetricType{MetricDistancePerUnit, MetricForecastAccuracy, MetricPlanningAccuracy, MetricOnTimeRate}
}

func (m MetricType) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return "unknown"
}

func (m MetricType) Validate() error {
	if _, ok := metricNames[m]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("metric type", fmt.Errorf("%d is not a valid metric type", m))
	}
	return nil
}

// LowerIsBetter is true for cost-like metrics.
func (m MetricType) LowerIsBetter() bool {
	return m == MetricDistancePerUnit
}

func ParseMetricType(str string) (MetricType, error) {
	for m, name := range metricNames {
		if name == str {
			return m, nil
		}
	}
	return MetricUnknown, errs.NewValueIsInvalidErrorWithCause("metric type", fmt.Errorf("%q is not a valid metric type", str))
}

// MetricClass scopes a metric to a product class. An empty product class
// covers all classes.
type MetricClass struct {
	Type         MetricType
	ProductClass string
}

func NewMetricClass(metric MetricType, productClass string) (MetricClass, error) {
	if err := metric.Validate(); err != nil {
		return MetricClass{}, err
	}
	return MetricClass{Type: metric, ProductClass: strings.TrimSpace(productClass)}, nil
}

func (c MetricClass) String() string {
	if c.ProductClass == "" {
		return c.Type.String()
	}
	return c.Type.String() + "/" + c.ProductClass
}

// Key identifies a record: one per metric class and period.
func (c MetricClass) Key(period kernel.Period) string {
	return fmt.Sprintf("%s|%s|%s|%s", c.Type, c.ProductClass,
		period.Start().Format(time.RFC3339), period.End().Format(time.RFC3339))
}

// Horizon selects which target applies to a period.
type Horizon int

const (
	HorizonUnknown Horizon = iota
	HorizonWeekly
	HorizonMonthly
)

func (h Horizon) String() string {
	switch h {
	case HorizonWeekly:
		return "weekly"
	case HorizonMonthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// HorizonOf is weekly for periods of at most seven days and monthly otherwise.
func HorizonOf(period kernel.Period) Horizon {
	if period.Duration() <= 7*24*time.Hour {
		return HorizonWeekly
	}
	return HorizonMonthly
}
