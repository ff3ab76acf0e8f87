package route

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/pkg/ddd"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute or RestoreRoute")
	ErrNumberIsRequired      = errs.NewValueIsRequiredError("number")
	ErrStopsAreRequired      = errs.NewValueIsRequiredError("stops")
	ErrStopNotFound          = errors.New("stop not found on route")
)

// Vehicle is the truck assigned to a route.
type Vehicle struct {
	ID       string
	Capacity kernel.Quantity
}

// Header carries the route-level attributes chosen by the planner.
type Header struct {
	ScheduledDate          time.Time
	Vehicle                Vehicle
	ProductClass           string
	Origin                 *kernel.GeoPoint
	PlanningAccuracyTarget decimal.Decimal
}

// Snapshot is the persisted state used by RestoreRoute.
type Snapshot struct {
	ID                kernel.UUID
	Number            string
	Header            Header
	Type              Type
	Status            Status
	Stops             []StopSnapshot
	PlannedDistanceKm float64
	PlannedDuration   time.Duration
	ActualDistanceKm  *float64
	ActualDuration    *time.Duration
	TotalDelivered    kernel.Quantity
	DistancePerUnit   *decimal.Decimal
	Degraded          bool
	DegradedReason    string
	DelayReason       string
	ActivatedAt       *time.Time
	CompletedAt       *time.Time
	CreatedAt         time.Time
	Optimizations     []Optimization
	Version           int64
}

// Actuals optionally override the distance and duration derived from stops
// when a route is completed.
type Actuals struct {
	DistanceKm *float64
	Duration   *time.Duration
}

// Route is the aggregate root for a planned vehicle run over a set of stops.
type Route struct {
	ddd.EventRecorder

	id                     kernel.UUID
	number                 string
	scheduledDate          time.Time
	routeType              Type
	status                 Status
	productClass           string
	origin                 *kernel.GeoPoint
	vehicle                Vehicle
	stops                  []*Stop
	plannedDistanceKm      float64
	plannedDuration        time.Duration
	actualDistanceKm       *float64
	actualDuration         *time.Duration
	totalPlanned           kernel.Quantity
	totalDelivered         kernel.Quantity
	distancePerUnit        *decimal.Decimal
	planningAccuracyTarget decimal.Decimal
	degraded               bool
	degradedReason         string
	delayReason            string
	activatedAt            *time.Time
	completedAt            *time.Time
	createdAt              time.Time
	optimizations          []Optimization
	version                int64

	guard guard.ConstructorGuard
}

// NewRoute creates a draft route with stops numbered in the given order.
// orderTypes are the types of the admitted orders and drive the route type.
//
// It fails with a CapacityExceededError when the stops do not fit the vehicle.
func NewRoute(
	id kernel.UUID,
	number string,
	header Header,
	specs []StopSpec,
	orderTypes []order.Type,
	now time.Time,
) (*Route, error) {
	r := &Route{
		status:                 StatusDraft,
		totalPlanned:           kernel.ZeroQuantity,
		totalDelivered:         kernel.ZeroQuantity,
		planningAccuracyTarget: header.PlanningAccuracyTarget,
		createdAt:              now.UTC(),
		guard:                  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setNumber(number),
		r.setHeader(header),
	); err != nil {
		return nil, err
	}

	if len(specs) == 0 {
		return nil, ErrStopsAreRequired
	}

	seen := make(map[kernel.UUID]struct{}, len(specs))
	for i, spec := range specs {
		if _, dup := seen[spec.OrderID]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("stops",
				fmt.Errorf("order %s appears more than once", spec.OrderID))
		}
		seen[spec.OrderID] = struct{}{}

		stop, err := newStop(spec, i+1)
		if err != nil {
			return nil, err
		}
		r.stops = append(r.stops, stop)
		r.totalPlanned = r.totalPlanned.Add(stop.plannedQuantity)
	}

	if r.totalPlanned.GreaterThan(r.vehicle.Capacity) {
		return nil, errs.NewCapacityExceededError("vehicle "+r.vehicle.ID, r.totalPlanned.String(), r.vehicle.Capacity.String())
	}

	r.routeType = DeriveType(orderTypes)
	r.Record(newCreatedEvent(r))

	return r, nil
}

// RestoreRoute rebuilds a route from persistence.
func RestoreRoute(s Snapshot) (*Route, error) {
	r := &Route{
		routeType:              s.Type,
		plannedDistanceKm:      s.PlannedDistanceKm,
		plannedDuration:        s.PlannedDuration,
		actualDistanceKm:       s.ActualDistanceKm,
		actualDuration:         s.ActualDuration,
		totalPlanned:           kernel.ZeroQuantity,
		totalDelivered:         s.TotalDelivered,
		distancePerUnit:        s.DistancePerUnit,
		planningAccuracyTarget: s.Header.PlanningAccuracyTarget,
		degraded:               s.Degraded,
		degradedReason:         s.DegradedReason,
		delayReason:            s.DelayReason,
		activatedAt:            s.ActivatedAt,
		completedAt:            s.CompletedAt,
		createdAt:              s.CreatedAt.UTC(),
		optimizations:          append([]Optimization(nil), s.Optimizations...),
		version:                s.Version,
		guard:                  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(s.ID),
		r.setNumber(s.Number),
		r.setHeader(s.Header),
		s.Type.Validate(),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	r.status = s.Status

	for _, ss := range s.Stops {
		stop, err := restoreStop(ss)
		if err != nil {
			return nil, err
		}
		r.stops = append(r.stops, stop)
		r.totalPlanned = r.totalPlanned.Add(stop.plannedQuantity)
	}
	r.sortStops()

	return r, nil
}

func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

func (r *Route) ID() kernel.UUID                         { return r.id }
func (r *Route) Number() string                          { return r.number }
func (r *Route) ScheduledDate() time.Time                { return r.scheduledDate }
func (r *Route) Type() Type                              { return r.routeType }
func (r *Route) Status() Status                          { return r.status }
func (r *Route) ProductClass() string                    { return r.productClass }
func (r *Route) Origin() *kernel.GeoPoint                { return r.origin }
func (r *Route) Vehicle() Vehicle                        { return r.vehicle }
func (r *Route) PlannedDistanceKm() float64              { return r.plannedDistanceKm }
func (r *Route) PlannedDuration() time.Duration          { return r.plannedDuration }
func (r *Route) ActualDistanceKm() *float64              { return r.actualDistanceKm }
func (r *Route) ActualDuration() *time.Duration          { return r.actualDuration }
func (r *Route) TotalPlannedQuantity() kernel.Quantity   { return r.totalPlanned }
func (r *Route) TotalDeliveredQuantity() kernel.Quantity { return r.totalDelivered }
func (r *Route) DistancePerUnit() *decimal.Decimal       { return r.distancePerUnit }
func (r *Route) PlanningAccuracyTarget() decimal.Decimal { return r.planningAccuracyTarget }
func (r *Route) IsDegraded() bool                        { return r.degraded }
func (r *Route) DegradedReason() string                  { return r.degradedReason }
func (r *Route) DelayReason() string                     { return r.delayReason }
func (r *Route) ActivatedAt() *time.Time                 { return r.activatedAt }
func (r *Route) CompletedAt() *time.Time                 { return r.completedAt }
func (r *Route) CreatedAt() time.Time                    { return r.createdAt }
func (r *Route) Version() int64                          { return r.version }

// Stops returns the stops ordered by sequence number.
func (r *Route) Stops() []*Stop {
	out := make([]*Stop, len(r.stops))
	copy(out, r.stops)
	return out
}

func (r *Route) Optimizations() []Optimization {
	out := make([]Optimization, len(r.optimizations))
	copy(out, r.optimizations)
	return out
}

// IncrementVersion is called by repositories after a successful write.
func (r *Route) IncrementVersion() {
	r.version++
}

// Stop looks a stop up by id.
func (r *Route) Stop(stopID kernel.UUID) (*Stop, error) {
	for _, s := range r.stops {
		if s.id.IsEqual(stopID) {
			return s, nil
		}
	}
	return nil, errs.NewObjectNotFoundErrorWithCause("stopId", stopID.String(), ErrStopNotFound)
}

// StopForOrder returns the stop carrying orderID, or nil.
func (r *Route) StopForOrder(orderID kernel.UUID) *Stop {
	for _, s := range r.stops {
		if s.orderID.IsEqual(orderID) {
			return s
		}
	}
	return nil
}

// OrderIDs lists the orders on the route in stop order.
func (r *Route) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(r.stops))
	for _, s := range r.stops {
		ids = append(ids, s.orderID)
	}
	return ids
}

// UndeliveredOrderIDs lists orders whose stop has not been completed.
func (r *Route) UndeliveredOrderIDs() []kernel.UUID {
	var ids []kernel.UUID
	for _, s := range r.stops {
		if !s.IsCompleted() {
			ids = append(ids, s.orderID)
		}
	}
	return ids
}

// ApplySequence reorders the stops, renumbers them 1..N and records the
// planned distance and duration. A draft route becomes planned.
func (r *Route) ApplySequence(seq Sequence, opt Optimization, degradedReason string) error {
	next, err := r.status.sequence()
	if err != nil {
		return err
	}
	if err := ValidatePermutation(seq.Order, len(r.stops)); err != nil {
		return err
	}

	ordered := make([]*Stop, len(r.stops))
	for pos, idx := range seq.Order {
		ordered[pos] = r.stops[idx]
	}

	departure := r.scheduledDate
	clock := departure
	for i, s := range ordered {
		s.sequence = i + 1
		s.distanceFromPrevious = 0
		s.durationFromPrevious = 0
		if i < len(seq.LegDistancesKm) {
			s.distanceFromPrevious = roundKm(seq.LegDistancesKm[i])
		}
		if i < len(seq.LegDurations) {
			s.durationFromPrevious = seq.LegDurations[i]
		}
		clock = clock.Add(s.durationFromPrevious)
		eta := clock
		s.estimatedArrival = &eta
		clock = clock.Add(time.Duration(s.serviceMinutes) * time.Minute)
	}

	r.stops = ordered
	r.plannedDistanceKm = roundKm(seq.TotalDistanceKm)
	r.plannedDuration = seq.TotalDuration
	r.optimizations = append(r.optimizations, opt)
	r.degraded = degradedReason != ""
	r.degradedReason = degradedReason
	r.status = next

	r.Record(newSequencedEvent(r, opt))
	return nil
}

// Activate hands the route over to delivery execution.
func (r *Route) Activate(now time.Time) error {
	next, err := r.status.activate()
	if err != nil {
		return err
	}
	at := now.UTC()
	r.status = next
	r.activatedAt = &at
	r.Record(newStatusChangedEvent(r, "route.activated", at, ""))
	return nil
}

// Delay marks an in-progress route as delayed. Delaying a delayed route
// updates the reason.
func (r *Route) Delay(reason string, now time.Time) error {
	next, err := r.status.delay()
	if err != nil {
		return err
	}
	r.status = next
	r.delayReason = strings.TrimSpace(reason)
	r.Record(newStatusChangedEvent(r, "route.delayed", now, r.delayReason))
	return nil
}

// StartStop records the actual arrival at a stop. It returns false when the
// stop was already started.
func (r *Route) StartStop(stopID kernel.UUID, at time.Time) (bool, error) {
	if !r.status.IsInProgress() {
		return false, r.status.invalid("start stop on")
	}
	stop, err := r.Stop(stopID)
	if err != nil {
		return false, err
	}
	return stop.start(at)
}

// FulfillStop records a delivery at a stop and returns the quantity that must
// be added to the site's ledger, and whether this was the stop's first
// fulfillment.
func (r *Route) FulfillStop(
	stopID kernel.UUID,
	quantity kernel.Quantity,
	rules FulfillmentRules,
	at time.Time,
) (kernel.Quantity, bool, error) {
	if !r.status.IsInProgress() {
		return kernel.ZeroQuantity, false, r.status.invalid("fulfill stop on")
	}
	stop, err := r.Stop(stopID)
	if err != nil {
		return kernel.ZeroQuantity, false, err
	}

	delta, first, err := stop.fulfill(quantity, rules, at)
	if err != nil {
		return kernel.ZeroQuantity, false, err
	}

	r.totalDelivered = r.totalDelivered.Add(delta)
	r.Record(newStopFulfilledEvent(r, stop, delta, at))
	return delta, first, nil
}

// FlagStopIssue records a service exception. The stop then counts as settled
// and the order stays undelivered.
func (r *Route) FlagStopIssue(stopID kernel.UUID, description, resolution string) error {
	if !r.status.IsInProgress() {
		return r.status.invalid("flag stop issue on")
	}
	stop, err := r.Stop(stopID)
	if err != nil {
		return err
	}
	return stop.flagIssue(description, resolution)
}

// CancelStopForOrder cancels the stop carrying orderID on an unfinished route.
func (r *Route) CancelStopForOrder(orderID kernel.UUID) error {
	if r.status.IsFinished() {
		return r.status.invalid("cancel stop on")
	}
	stop := r.StopForOrder(orderID)
	if stop == nil {
		return errs.NewObjectNotFoundErrorWithCause("orderId", orderID.String(), ErrStopNotFound)
	}
	return stop.cancel()
}

// Complete closes the route once every stop is settled. Actual distance
// defaults to the sum of the legs of completed stops; actual duration
// defaults to the time from activation to the last completion.
func (r *Route) Complete(actuals Actuals, now time.Time) error {
	next, err := r.status.complete()
	if err != nil {
		return err
	}
	for _, s := range r.stops {
		if !s.IsSettled() {
			return errs.NewStateIsInvalidErrorWithCause("route", r.status.String(), "complete",
				fmt.Errorf("stop %d is %s", s.sequence, s.status))
		}
	}

	at := now.UTC()

	delivered := kernel.ZeroQuantity
	distance := 0.0
	var lastCompletion *time.Time
	for _, s := range r.stops {
		if !s.IsCompleted() {
			continue
		}
		delivered = delivered.Add(*s.deliveredQuantity)
		distance += s.distanceFromPrevious
		if lastCompletion == nil || s.completedAt.After(*lastCompletion) {
			lastCompletion = s.completedAt
		}
	}
	if actuals.DistanceKm != nil {
		distance = *actuals.DistanceKm
	}
	distance = roundKm(distance)

	var duration time.Duration
	switch {
	case actuals.Duration != nil:
		duration = *actuals.Duration
	case r.activatedAt != nil && lastCompletion != nil:
		duration = lastCompletion.Sub(*r.activatedAt)
	case r.activatedAt != nil:
		duration = at.Sub(*r.activatedAt)
	}
	if duration < 0 {
		duration = 0
	}

	r.totalDelivered = delivered
	r.actualDistanceKm = &distance
	r.actualDuration = &duration
	r.distancePerUnit = nil
	if !delivered.IsZero() {
		dpu := decimal.NewFromFloat(distance).Div(delivered.Decimal()).Round(4)
		r.distancePerUnit = &dpu
	}
	r.status = next
	r.completedAt = &at

	r.Record(newStatusChangedEvent(r, "route.completed", at, ""))
	return nil
}

// Cancel stops the route from admitting further fulfillments. Already applied
// deliveries are kept. Pending stops are cancelled and the orders that were not
// delivered are returned so they can be released.
func (r *Route) Cancel(reason string, now time.Time) ([]kernel.UUID, error) {
	next, err := r.status.cancel()
	if err != nil {
		return nil, err
	}

	var released []kernel.UUID
	for _, s := range r.stops {
		if s.IsCompleted() {
			continue
		}
		_ = s.cancel()
		released = append(released, s.orderID)
	}

	r.status = next
	r.Record(newStatusChangedEvent(r, "route.cancelled", now, reason))
	return released, nil
}

// PlanningAccuracy compares planned and actual distance of a completed route:
// min/max*100. Nil until the route has actuals or when both are zero.
func (r *Route) PlanningAccuracy() *decimal.Decimal {
	if r.actualDistanceKm == nil {
		return nil
	}
	return Accuracy(r.plannedDistanceKm, *r.actualDistanceKm)
}

func (r *Route) IsWithinAccuracyTarget() bool {
	accuracy := r.PlanningAccuracy()
	return accuracy != nil && accuracy.GreaterThanOrEqual(r.planningAccuracyTarget)
}

// DeliveryEfficiency is planned duration over actual duration, in percent.
func (r *Route) DeliveryEfficiency() *decimal.Decimal {
	if r.actualDuration == nil || *r.actualDuration <= 0 {
		return nil
	}
	v := decimal.NewFromInt(int64(r.plannedDuration)).
		Div(decimal.NewFromInt(int64(*r.actualDuration))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return &v
}

// Accuracy is min(a, b)/max(a, b)*100 rounded to 4 places, nil when both are zero.
func Accuracy(a, b float64) *decimal.Decimal {
	hi, lo := math.Max(a, b), math.Min(a, b)
	if hi <= 0 {
		return nil
	}
	v := decimal.NewFromFloat(lo).Div(decimal.NewFromFloat(hi)).Mul(decimal.NewFromInt(100)).Round(4)
	return &v
}

// ValidatePermutation checks that order is a permutation of 0..n-1.
func ValidatePermutation(order []int, n int) error {
	if len(order) != n {
		return errs.NewValueIsInvalidErrorWithCause("sequence",
			fmt.Errorf("expected %d positions, got %d", n, len(order)))
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return errs.NewValueIsInvalidErrorWithCause("sequence",
				fmt.Errorf("%v is not a permutation of 0..%d", order, n-1))
		}
		seen[idx] = true
	}
	return nil
}

func (r *Route) sortStops() {
	for i := 1; i < len(r.stops); i++ {
		for j := i; j > 0 && r.stops[j].sequence < r.stops[j-1].sequence; j-- {
			r.stops[j], r.stops[j-1] = r.stops[j-1], r.stops[j]
		}
	}
}

func (r *Route) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Route) setNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return ErrNumberIsRequired
	}
	r.number = number
	return nil
}

func (r *Route) setHeader(h Header) error {
	if h.ScheduledDate.IsZero() {
		return errs.NewValueIsRequiredError("scheduled date")
	}
	if h.Vehicle.Capacity.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("vehicle capacity",
			fmt.Errorf("%s is not greater than 0", h.Vehicle.Capacity))
	}
	if h.Origin != nil {
		if err := h.Origin.Validate(); err != nil {
			return err
		}
	}
	r.scheduledDate = h.ScheduledDate.UTC()
	r.vehicle = Vehicle{ID: strings.TrimSpace(h.Vehicle.ID), Capacity: h.Vehicle.Capacity}
	r.productClass = strings.TrimSpace(h.ProductClass)
	r.origin = h.Origin
	return nil
}

func roundKm(km float64) float64 {
	return math.Round(km*10000) / 10000
}
