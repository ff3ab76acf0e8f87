package kernel

import (
	"fmt"
	"time"

	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var ErrPeriodIsNotConstructed = errs.NewValueIsRequiredError("period must be created via NewPeriod")

// Period is a half-open time interval [start, end) in UTC.
type Period struct {
	start time.Time
	end   time.Time
	guard guard.ConstructorGuard
}

func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, errs.NewValueIsRequiredError("period bounds")
	}
	if !end.After(start) {
		return Period{}, errs.NewValueIsInvalidErrorWithCause("period",
			fmt.Errorf("end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	return Period{start: start.UTC(), end: end.UTC(), guard: guard.NewConstructorGuard()}, nil
}

func (p Period) Validate() error {
	return p.guard.Validate(ErrPeriodIsNotConstructed)
}

func (p Period) Start() time.Time        { return p.start }
func (p Period) End() time.Time          { return p.end }
func (p Period) Duration() time.Duration { return p.end.Sub(p.start) }

// Contains reports whether t falls inside [start, end).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.start) && t.Before(p.end)
}

func (p Period) IsEqual(other Period) bool {
	return p.start.Equal(other.start) && p.end.Equal(other.end)
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.start.Format(time.RFC3339), p.end.Format(time.RFC3339))
}
