package route

import (
	"fmt"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// RepeatPolicy decides what a second fulfillment of an already completed stop does.
type RepeatPolicy int

const (
	RepeatUnknown RepeatPolicy = iota
	// RepeatReject fails the second call with a StateIsInvalidError.
	RepeatReject
	// RepeatAccumulate adds the new quantity to the delivered total.
	RepeatAccumulate
)

var repeatPolicyNames = map[RepeatPolicy]string{
	RepeatReject:     "reject",
	RepeatAccumulate: "accumulate",
}

func (p RepeatPolicy) String() string {
	if name, ok := repeatPolicyNames[p]; ok {
		return name
	}
	return "unknown"
}

func ParseRepeatPolicy(str string) (RepeatPolicy, error) {
	for p, name := range repeatPolicyNames {
		if name == str {
			return p, nil
		}
	}
	return RepeatUnknown, errs.NewValueIsInvalidErrorWithCause("repeat policy", fmt.Errorf("%q is not a valid repeat policy", str))
}

// FulfillmentRules bound what a single stop may receive.
type FulfillmentRules struct {
	overageTolerance decimal.Decimal
	repeat           RepeatPolicy
}

// NewFulfillmentRules accepts an overage tolerance in percent of the planned
// quantity (0..100) and a repeat policy.
func NewFulfillmentRules(overageTolerancePct decimal.Decimal, repeat RepeatPolicy) (FulfillmentRules, error) {
	if overageTolerancePct.IsNegative() || overageTolerancePct.GreaterThan(decimal.NewFromInt(100)) {
		return FulfillmentRules{}, errs.NewValueIsOutOfRangeError("overage tolerance", overageTolerancePct, 0, 100)
	}
	if _, ok := repeatPolicyNames[repeat]; !ok {
		return FulfillmentRules{}, errs.NewValueIsInvalidErrorWithCause("repeat policy", fmt.Errorf("%d is not a valid repeat policy", repeat))
	}
	return FulfillmentRules{overageTolerance: overageTolerancePct, repeat: repeat}, nil
}

// DefaultFulfillmentRules allow no overage and reject repeats.
func DefaultFulfillmentRules() FulfillmentRules {
	return FulfillmentRules{overageTolerance: decimal.Zero, repeat: RepeatReject}
}

func (r FulfillmentRules) OverageTolerance() decimal.Decimal { return r.overageTolerance }
func (r FulfillmentRules) Repeat() RepeatPolicy              { return r.repeat }

// MaxFor is the largest total a stop planned for planned may receive.
func (r FulfillmentRules) MaxFor(planned kernel.Quantity) kernel.Quantity {
	return planned.MulPercent(r.overageTolerance)
}
