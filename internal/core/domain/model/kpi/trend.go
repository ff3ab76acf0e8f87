package kpi

import (
	"fmt"

	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Trend compares a record with the one of the preceding period.
type Trend int

const (
	TrendUnknown Trend = iota
	TrendImproving
	TrendStable
	TrendDeclining
)

var trendNames = map[Trend]string{
	TrendImproving: "improving",
	TrendStable:    "stable",
	TrendDeclining: "declining",
}

func (t Trend) String() string {
	if name, ok := trendNames[t]; ok {
		return name
	}
	return "unknown"
}

func ParseTrend(str string) (Trend, error) {
	for t, name := range trendNames {
		if name == str {
			return t, nil
		}
	}
	return TrendUnknown, errs.NewValueIsInvalidErrorWithCause("trend", fmt.Errorf("%q is not a valid trend", str))
}

// TrendBand classifies a change as stable when it stays within a relative
// tolerance of the previous value.
type TrendBand struct {
	tolerancePct decimal.Decimal
}

func NewTrendBand(tolerancePct decimal.Decimal) (TrendBand, error) {
	if tolerancePct.IsNegative() || tolerancePct.GreaterThan(decimal.NewFromInt(100)) {
		return TrendBand{}, errs.NewValueIsOutOfRangeError("trend tolerance", tolerancePct, 0, 100)
	}
	return TrendBand{tolerancePct: tolerancePct}, nil
}

func (b TrendBand) TolerancePct() decimal.Decimal { return b.tolerancePct }

// Classify returns stable when either value is missing.
func (b TrendBand) Classify(metric MetricType, current, previous *decimal.Decimal) Trend {
	if current == nil || previous == nil {
		return TrendStable
	}

	diff := current.Sub(*previous)
	if previous.IsZero() {
		if diff.IsZero() {
			return TrendStable
		}
	} else {
		change := diff.Div(previous.Abs()).Mul(decimal.NewFromInt(100))
		if change.Abs().LessThanOrEqual(b.tolerancePct) {
			return TrendStable
		}
	}

	up := diff.IsPositive()
	if metric.LowerIsBetter() {
		up = !up
	}
	if up {
		return TrendImproving
	}
	return TrendDeclining
}
