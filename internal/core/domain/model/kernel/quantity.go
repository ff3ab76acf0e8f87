package kernel

import (
	"fmt"

	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimal places kept for tonnages.
const QuantityScale = 4

// Quantity is a non-negative commodity amount in tonnes.
type Quantity struct {
	value decimal.Decimal
}

// ZeroQuantity is the empty amount.
var ZeroQuantity = Quantity{value: decimal.Zero}

func NewQuantity(value decimal.Decimal) (Quantity, error) {
	if value.IsNegative() {
		return Quantity{}, errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%s is negative", value))
	}
	return Quantity{value: value.Round(QuantityScale)}, nil
}

// FlooredQuantity maps a signed measurement onto a quantity, reading
// negative values as zero.
func FlooredQuantity(value decimal.Decimal) Quantity {
	if value.IsNegative() {
		return ZeroQuantity
	}
	return Quantity{value: value.Round(QuantityScale)}
}

// NewPositiveQuantity rejects zero as well as negative amounts.
func NewPositiveQuantity(value decimal.Decimal) (Quantity, error) {
	if !value.IsPositive() {
		return Quantity{}, errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%s is not greater than 0", value))
	}
	return Quantity{value: value.Round(QuantityScale)}, nil
}

// QuantityFromFloat is a convenience for tests and configuration.
func QuantityFromFloat(f float64) (Quantity, error) {
	return NewQuantity(decimal.NewFromFloat(f))
}

// MustQuantity panics on a negative value. Only for constants and tests.
func MustQuantity(f float64) Quantity {
	q, err := QuantityFromFloat(f)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Decimal() decimal.Decimal { return q.value }
func (q Quantity) Float64() float64         { return q.value.InexactFloat64() }
func (q Quantity) String() string           { return q.value.StringFixed(QuantityScale) }
func (q Quantity) IsZero() bool             { return q.value.IsZero() }

func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{value: q.value.Add(other.value)}
}

// Sub returns q-other floored at zero.
func (q Quantity) Sub(other Quantity) Quantity {
	diff := q.value.Sub(other.value)
	if diff.IsNegative() {
		return ZeroQuantity
	}
	return Quantity{value: diff}
}

func (q Quantity) Min(other Quantity) Quantity {
	if q.value.LessThan(other.value) {
		return q
	}
	return other
}

// MulPercent returns q * (1 + pct/100).
func (q Quantity) MulPercent(pct decimal.Decimal) Quantity {
	factor := decimal.NewFromInt(1).Add(pct.Div(decimal.NewFromInt(100)))
	return Quantity{value: q.value.Mul(factor).Round(QuantityScale)}
}

// PercentOf returns q as a percentage of whole; zero when whole is zero.
func (q Quantity) PercentOf(whole Quantity) decimal.Decimal {
	if whole.value.IsZero() {
		return decimal.Zero
	}
	return q.value.Div(whole.value).Mul(decimal.NewFromInt(100)).Round(2)
}

func (q Quantity) GreaterThan(other Quantity) bool    { return q.value.GreaterThan(other.value) }
func (q Quantity) LessThan(other Quantity) bool       { return q.value.LessThan(other.value) }
func (q Quantity) LessOrEqual(other Quantity) bool    { return q.value.LessThanOrEqual(other.value) }
func (q Quantity) GreaterOrEqual(other Quantity) bool { return q.value.GreaterThanOrEqual(other.value) }
func (q Quantity) Equal(other Quantity) bool          { return q.value.Equal(other.value) }
