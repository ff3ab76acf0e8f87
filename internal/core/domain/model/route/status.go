package route

import (
	"fmt"

	"replenishment/internal/pkg/errs"
)

// Status is the lifecycle state of a route.
type Status int

const (
	StatusUnknown Status = iota
	StatusDraft
	StatusPlanned
	StatusActive
	StatusCompleted
	StatusCancelled
	StatusDelayed
)

var statusNames = map[Status]string{
	StatusDraft:     "draft",
	StatusPlanned:   "planned",
	StatusActive:    "active",
	StatusCompleted: "completed",
	StatusCancelled: "cancelled",
	StatusDelayed:   "delayed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("route status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func ParseStatus(str string) (Status, error) {
	for s, name := range statusNames {
		if name == str {
			return s, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("route status", fmt.Errorf("%q is not a valid status", str))
}

// IsInProgress reports whether stops may be started and fulfilled.
func (s Status) IsInProgress() bool {
	return s == StatusActive || s == StatusDelayed
}

// IsFinished reports whether the route is completed or cancelled.
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsEditable reports whether stops may still be resequenced.
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusPlanned
}

func (s Status) sequence() (Status, error) {
	if !s.IsEditable() {
		return StatusUnknown, s.invalid("sequence")
	}
	return StatusPlanned, nil
}

func (s Status) activate() (Status, error) {
	if !s.IsEditable() {
		return StatusUnknown, s.invalid("activate")
	}
	return StatusActive, nil
}

func (s Status) delay() (Status, error) {
	if !s.IsInProgress() {
		return StatusUnknown, s.invalid("delay")
	}
	return StatusDelayed, nil
}

func (s Status) complete() (Status, error) {
	if !s.IsInProgress() {
		return StatusUnknown, s.invalid("complete")
	}
	return StatusCompleted, nil
}

func (s Status) cancel() (Status, error) {
	if s.IsFinished() || s == StatusUnknown {
		return StatusUnknown, s.invalid("cancel")
	}
	return StatusCancelled, nil
}

func (s Status) invalid(action string) error {
	return errs.NewStateIsInvalidError("route", s.String(), action)
}
