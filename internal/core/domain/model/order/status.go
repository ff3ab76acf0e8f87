package order

import (
	"fmt"

	"replenishment/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	// Pending is the initial status of a new order.
	Pending
	// Confirmed orders are accepted and wait for planning.
	Confirmed
	// Planned orders are admitted to planning or assigned to a route.
	Planned
	// InTransit orders are being delivered by an active route.
	InTransit
	// Delivered is terminal.
	Delivered
	// Cancelled is terminal.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Confirmed: "confirmed",
		Planned:   "planned",
		InTransit: "in_transit",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// ParseStatus maps a wire name back to a Status.
func ParseStatus(str string) (Status, error) {
	for s, name := range getStatusStrings() {
		if s != Unknown && name == str {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", str))
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// IsOpen reports whether the order still represents outstanding demand.
func (s Status) IsOpen() bool {
	return s == Pending || s == Confirmed || s == Planned || s == InTransit
}

// Confirm transitions pending -> confirmed.
func (s Status) Confirm() (Status, error) {
	if s != Pending {
		return Unknown, s.invalid("confirm")
	}
	return Confirmed, nil
}

// Plan transitions pending|confirmed -> planned.
func (s Status) Plan() (Status, error) {
	if s != Pending && s != Confirmed {
		return Unknown, s.invalid("plan")
	}
	return Planned, nil
}

// AssignToRoute forces planned from any open pre-transit status.
func (s Status) AssignToRoute() (Status, error) {
	if s != Pending && s != Confirmed && s != Planned {
		return Unknown, s.invalid("assign to route")
	}
	return Planned, nil
}

// StartTransit transitions planned -> in_transit. It is idempotent on in_transit.
func (s Status) StartTransit() (Status, error) {
	if s != Planned && s != InTransit {
		return Unknown, s.invalid("start transit of")
	}
	return InTransit, nil
}

// Deliver transitions planned|in_transit -> delivered.
func (s Status) Deliver() (Status, error) {
	if s != Planned && s != InTransit {
		return Unknown, s.invalid("deliver")
	}
	return Delivered, nil
}

// Release transitions planned|in_transit -> confirmed so that the order can be
// admitted to another route.
func (s Status) Release() (Status, error) {
	if s != Planned && s != InTransit {
		return Unknown, s.invalid("release")
	}
	return Confirmed, nil
}

// Cancel is legal from every non-terminal status.
func (s Status) Cancel() (Status, error) {
	if s.IsTerminal() || s == Unknown {
		return Unknown, s.invalid("cancel")
	}
	return Cancelled, nil
}

func (s Status) invalid(action string) error {
	return errs.NewStateIsInvalidError("order", s.String(), action)
}
