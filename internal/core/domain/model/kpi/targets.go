package kpi

import (
	"github.com/shopspring/decimal"
)

// TargetKey addresses a configured target.
type TargetKey struct {
	Metric  MetricType
	Horizon Horizon
}

// Targets are the configured goals per metric and horizon.
type Targets struct {
	values map[TargetKey]decimal.Decimal
}

func NewTargets(values map[TargetKey]decimal.Decimal) Targets {
	copied := make(map[TargetKey]decimal.Decimal, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Targets{values: copied}
}

// For returns nil when no target is configured.
func (t Targets) For(metric MetricType, horizon Horizon) *decimal.Decimal {
	v, ok := t.values[TargetKey{Metric: metric, Horizon: horizon}]
	if !ok {
		return nil
	}
	return &v
}

// IsWithin compares value and target in the direction of the metric.
func IsWithin(metric MetricType, value, target *decimal.Decimal) bool {
	if value == nil || target == nil {
		return false
	}
	if metric.LowerIsBetter() {
		return value.LessThanOrEqual(*target)
	}
	return value.GreaterThanOrEqual(*target)
}
