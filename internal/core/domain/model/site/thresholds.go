package site

import (
	"fmt"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DefaultLowStockPercentage applies when a site is registered without its own
// percentage threshold.
var DefaultLowStockPercentage = decimal.NewFromInt(20)

// StockLevel is a pair of limits: a site is at or below the level when its
// stock is at or below Absolute tonnes OR at or below Percentage of capacity.
// It is used both for the per-site low-stock threshold and for the
// configured emergency level.
type StockLevel struct {
	absolute   kernel.Quantity
	percentage decimal.Decimal
}

func NewStockLevel(absolute kernel.Quantity, percentage decimal.Decimal) (StockLevel, error) {
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return StockLevel{}, errs.NewValueIsOutOfRangeError("percentage", percentage, 0, 100)
	}
	return StockLevel{absolute: absolute, percentage: percentage}, nil
}

// MustStockLevel is used for configuration defaults.
func MustStockLevel(absolute float64, percentage float64) StockLevel {
	level, err := NewStockLevel(kernel.MustQuantity(absolute), decimal.NewFromFloat(percentage))
	if err != nil {
		panic(fmt.Sprintf("invalid stock level: %v", err))
	}
	return level
}

func (l StockLevel) Absolute() kernel.Quantity   { return l.absolute }
func (l StockLevel) Percentage() decimal.Decimal { return l.percentage }

// ReachedBy reports whether current stock is at or below the level.
func (l StockLevel) ReachedBy(current, capacity kernel.Quantity) bool {
	if current.LessOrEqual(l.absolute) {
		return true
	}
	return current.PercentOf(capacity).LessThanOrEqual(l.percentage)
}
