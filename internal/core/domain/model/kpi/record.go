package kpi

import (
	"errors"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrRecordIsNotConstructed = errors.New("Record must be created via NewRecord or RestoreRecord")

// ValueScale is the number of decimal places kept on record values.
const ValueScale = 4

// Record is the derived value of a metric class over a period.
type Record struct {
	id           kernel.UUID
	class        MetricClass
	period       kernel.Period
	value        *decimal.Decimal
	target       *decimal.Decimal
	trend        Trend
	sampleSize   int
	withinTarget bool

	guard guard.ConstructorGuard
}

// RecordID is stable for a metric class and period.
func RecordID(class MetricClass, period kernel.Period) kernel.UUID {
	return kernel.NewNameBasedUUID("kpi|" + class.Key(period))
}

// NewRecord rounds value to ValueScale and evaluates it against target.
func NewRecord(
	class MetricClass,
	period kernel.Period,
	value *decimal.Decimal,
	target *decimal.Decimal,
	trend Trend,
	sampleSize int,
) (*Record, error) {
	if err := errors.Join(class.Type.Validate(), period.Validate()); err != nil {
		return nil, err
	}

	var rounded *decimal.Decimal
	if value != nil {
		v := value.Round(ValueScale)
		rounded = &v
	}

	return &Record{
		id:           RecordID(class, period),
		class:        class,
		period:       period,
		value:        rounded,
		target:       target,
		trend:        trend,
		sampleSize:   sampleSize,
		withinTarget: IsWithin(class.Type, rounded, target),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// RestoreRecord rebuilds a record from persistence.
func RestoreRecord(
	id kernel.UUID,
	class MetricClass,
	period kernel.Period,
	value, target *decimal.Decimal,
	trend Trend,
	sampleSize int,
	withinTarget bool,
) (*Record, error) {
	if err := errors.Join(id.Validate(), class.Type.Validate(), period.Validate()); err != nil {
		return nil, err
	}
	return &Record{
		id:           id,
		class:        class,
		period:       period,
		value:        value,
		target:       target,
		trend:        trend,
		sampleSize:   sampleSize,
		withinTarget: withinTarget,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (r *Record) Validate() error {
	if r == nil {
		return ErrRecordIsNotConstructed
	}
	return r.guard.Validate(ErrRecordIsNotConstructed)
}

func (r *Record) ID() kernel.UUID          { return r.id }
func (r *Record) Class() MetricClass       { return r.class }
func (r *Record) Period() kernel.Period    { return r.period }
func (r *Record) Value() *decimal.Decimal  { return r.value }
func (r *Record) Target() *decimal.Decimal { return r.target }
func (r *Record) Trend() Trend             { return r.trend }
func (r *Record) SampleSize() int          { return r.sampleSize }
func (r *Record) WithinTarget() bool       { return r.withinTarget }

// Equal compares every derived field; used to assert recompute idempotence.
func (r *Record) Equal(other *Record) bool {
	if other == nil {
		return false
	}
	return r.id.IsEqual(other.id) &&
		r.class == other.class &&
		r.period.IsEqual(other.period) &&
		decimalPtrEqual(r.value, other.value) &&
		decimalPtrEqual(r.target, other.target) &&
		r.trend == other.trend &&
		r.sampleSize == other.sampleSize &&
		r.withinTarget == other.withinTarget
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
