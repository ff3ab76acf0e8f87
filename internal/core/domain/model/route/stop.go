package route

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var (
	ErrStopIsNotConstructed      = errors.New("Stop must be created by its Route")
	ErrIssueDescriptionIsMissing = errs.NewValueIsRequiredError("issue description")
)

// DefaultServiceMinutes is the unloading time assumed at a stop.
const DefaultServiceMinutes = 30

// StopStatus is the progress of a single stop.
type StopStatus int

const (
	StopStatusUnknown StopStatus = iota
	StopStatusPending
	StopStatusArrived
	StopStatusCompleted
	StopStatusCancelled
)

var stopStatusNames = map[StopStatus]string{
	StopStatusPending:   "pending",
	StopStatusArrived:   "arrived",
	StopStatusCompleted: "completed",
	StopStatusCancelled: "cancelled",
}

func (s StopStatus) String() string {
	if name, ok := stopStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

func ParseStopStatus(str string) (StopStatus, error) {
	for s, name := range stopStatusNames {
		if name == str {
			return s, nil
		}
	}
	return StopStatusUnknown, errs.NewValueIsInvalidErrorWithCause("stop status", fmt.Errorf("%q is not a valid status", str))
}

// StopSpec describes a stop to be created on a new route.
type StopSpec struct {
	OrderID        kernel.UUID
	SiteID         kernel.UUID
	Location       kernel.GeoPoint
	Quantity       kernel.Quantity
	DeliveryMethod DeliveryMethod
	ServiceMinutes int
}

// StopSnapshot is the persisted state of a stop.
type StopSnapshot struct {
	ID                   kernel.UUID
	OrderID              kernel.UUID
	SiteID               kernel.UUID
	Location             kernel.GeoPoint
	Sequence             int
	PlannedQuantity      kernel.Quantity
	DeliveredQuantity    *kernel.Quantity
	EstimatedArrival     *time.Time
	ActualArrival        *time.Time
	CompletedAt          *time.Time
	Status               StopStatus
	DistanceFromPrevious float64
	DurationFromPrevious time.Duration
	ServiceMinutes       int
	DeliveryMethod       DeliveryMethod
	HasIssue             bool
	IssueDescription     string
	ResolutionNotes      string
}

// Stop is one order's fulfillment point within a route. It is only mutated
// through its Route.
//
// Once set, the delivered quantity never exceeds the planned quantity plus the
// configured overage tolerance.
type Stop struct {
	id                   kernel.UUID
	orderID              kernel.UUID
	siteID               kernel.UUID
	location             kernel.GeoPoint
	sequence             int
	plannedQuantity      kernel.Quantity
	deliveredQuantity    *kernel.Quantity
	estimatedArrival     *time.Time
	actualArrival        *time.Time
	completedAt          *time.Time
	status               StopStatus
	distanceFromPrevious float64
	durationFromPrevious time.Duration
	serviceMinutes       int
	deliveryMethod       DeliveryMethod
	hasIssue             bool
	issueDescription     string
	resolutionNotes      string

	guard guard.ConstructorGuard
}

func newStop(spec StopSpec, sequence int) (*Stop, error) {
	if err := errors.Join(
		spec.OrderID.Validate(),
		spec.SiteID.Validate(),
		spec.Location.Validate(),
	); err != nil {
		return nil, err
	}
	if spec.Quantity.IsZero() {
		return nil, errs.NewValueIsInvalidErrorWithCause("planned quantity", fmt.Errorf("%s is not greater than 0", spec.Quantity))
	}

	method := spec.DeliveryMethod
	if method == DeliveryMethodUnknown {
		method = DeliveryMethodSiloToSilo
	}
	if err := method.Validate(); err != nil {
		return nil, err
	}

	service := spec.ServiceMinutes
	if service <= 0 {
		service = DefaultServiceMinutes
	}

	return &Stop{
		id:              kernel.NewUUID(),
		orderID:         spec.OrderID,
		siteID:          spec.SiteID,
		location:        spec.Location,
		sequence:        sequence,
		plannedQuantity: spec.Quantity,
		status:          StopStatusPending,
		serviceMinutes:  service,
		deliveryMethod:  method,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func restoreStop(s StopSnapshot) (*Stop, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.OrderID.Validate(),
		s.SiteID.Validate(),
		s.DeliveryMethod.Validate(),
	); err != nil {
		return nil, err
	}
	if _, ok := stopStatusNames[s.Status]; !ok {
		return nil, errs.NewValueIsInvalidErrorWithCause("stop status", fmt.Errorf("%d is not a valid status", s.Status))
	}

	return &Stop{
		id:                   s.ID,
		orderID:              s.OrderID,
		siteID:               s.SiteID,
		location:             s.Location,
		sequence:             s.Sequence,
		plannedQuantity:      s.PlannedQuantity,
		deliveredQuantity:    s.DeliveredQuantity,
		estimatedArrival:     s.EstimatedArrival,
		actualArrival:        s.ActualArrival,
		completedAt:          s.CompletedAt,
		status:               s.Status,
		distanceFromPrevious: s.DistanceFromPrevious,
		durationFromPrevious: s.DurationFromPrevious,
		serviceMinutes:       s.ServiceMinutes,
		deliveryMethod:       s.DeliveryMethod,
		hasIssue:             s.HasIssue,
		issueDescription:     s.IssueDescription,
		resolutionNotes:      s.ResolutionNotes,
		guard:                guard.NewConstructorGuard(),
	}, nil
}

func (s *Stop) Validate() error {
	if s == nil {
		return ErrStopIsNotConstructed
	}
	return s.guard.Validate(ErrStopIsNotConstructed)
}

func (s *Stop) ID() kernel.UUID                     { return s.id }
func (s *Stop) OrderID() kernel.UUID                { return s.orderID }
func (s *Stop) SiteID() kernel.UUID                 { return s.siteID }
func (s *Stop) Location() kernel.GeoPoint           { return s.location }
func (s *Stop) Sequence() int                       { return s.sequence }
func (s *Stop) PlannedQuantity() kernel.Quantity    { return s.plannedQuantity }
func (s *Stop) DeliveredQuantity() *kernel.Quantity { return s.deliveredQuantity }
func (s *Stop) EstimatedArrival() *time.Time        { return s.estimatedArrival }
func (s *Stop) ActualArrival() *time.Time           { return s.actualArrival }
func (s *Stop) CompletedAt() *time.Time             { return s.completedAt }
func (s *Stop) Status() StopStatus                  { return s.status }
func (s *Stop) DistanceFromPreviousKm() float64     { return s.distanceFromPrevious }
func (s *Stop) DurationFromPrevious() time.Duration { return s.durationFromPrevious }
func (s *Stop) ServiceMinutes() int                 { return s.serviceMinutes }
func (s *Stop) DeliveryMethod() DeliveryMethod      { return s.deliveryMethod }
func (s *Stop) HasIssue() bool                      { return s.hasIssue }
func (s *Stop) IssueDescription() string            { return s.issueDescription }
func (s *Stop) ResolutionNotes() string             { return s.resolutionNotes }

func (s *Stop) IsCompleted() bool { return s.status == StopStatusCompleted }

// IsSettled reports whether the stop no longer blocks route completion.
func (s *Stop) IsSettled() bool {
	return s.status == StopStatusCompleted || s.status == StopStatusCancelled || s.hasIssue
}

// IsOnTime is true when the stop was reached no later than its estimate plus
// buffer. Stops without an estimate or an arrival are not on time.
func (s *Stop) IsOnTime(buffer time.Duration) bool {
	if s.estimatedArrival == nil || s.actualArrival == nil {
		return false
	}
	return !s.actualArrival.After(s.estimatedArrival.Add(buffer))
}

func (s *Stop) start(at time.Time) (bool, error) {
	switch s.status {
	case StopStatusPending:
		at = at.UTC()
		s.actualArrival = &at
		s.status = StopStatusArrived
		return true, nil
	case StopStatusArrived, StopStatusCompleted:
		return false, nil
	default:
		return false, errs.NewStateIsInvalidError("stop", s.status.String(), "start")
	}
}

// fulfill returns the quantity added to the delivered total and whether this
// was the first fulfillment of the stop.
func (s *Stop) fulfill(quantity kernel.Quantity, rules FulfillmentRules, at time.Time) (kernel.Quantity, bool, error) {
	if s.status == StopStatusCancelled {
		return kernel.ZeroQuantity, false, errs.NewStateIsInvalidError("stop", s.status.String(), "fulfill")
	}

	limit := rules.MaxFor(s.plannedQuantity)

	if s.deliveredQuantity != nil {
		if rules.Repeat() != RepeatAccumulate {
			return kernel.ZeroQuantity, false, errs.NewStateIsInvalidErrorWithCause("stop", s.status.String(), "fulfill",
				errors.New("stop is already fulfilled"))
		}
		total := s.deliveredQuantity.Add(quantity)
		if total.GreaterThan(limit) {
			return kernel.ZeroQuantity, false, errs.NewValueIsOutOfRangeError("delivered quantity", total.String(), "0", limit.String())
		}
		s.deliveredQuantity = &total
		return quantity, false, nil
	}

	if quantity.GreaterThan(limit) {
		return kernel.ZeroQuantity, false, errs.NewValueIsOutOfRangeError("delivered quantity", quantity.String(), "0", limit.String())
	}

	at = at.UTC()
	delivered := quantity
	s.deliveredQuantity = &delivered
	if s.actualArrival == nil {
		s.actualArrival = &at
	}
	s.completedAt = &at
	s.status = StopStatusCompleted
	return quantity, true, nil
}

func (s *Stop) flagIssue(description, resolution string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrIssueDescriptionIsMissing
	}
	if s.status == StopStatusCompleted || s.status == StopStatusCancelled {
		return errs.NewStateIsInvalidError("stop", s.status.String(), "flag issue on")
	}
	s.hasIssue = true
	s.issueDescription = description
	s.resolutionNotes = strings.TrimSpace(resolution)
	return nil
}

func (s *Stop) cancel() error {
	switch s.status {
	case StopStatusCancelled:
		return nil
	case StopStatusCompleted:
		return errs.NewStateIsInvalidError("stop", s.status.String(), "cancel")
	default:
		s.status = StopStatusCancelled
		return nil
	}
}
