package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/site"
	"replenishment/internal/pkg/ddd"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var (
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")
	ErrNumberIsRequired      = errs.NewValueIsRequiredError("number")
	ErrApproverIsRequired    = errs.NewValueIsRequiredError("approver")
)

// Request carries the caller-supplied part of a new order.
type Request struct {
	Quantity       kernel.Quantity
	Type           Type
	Priority       Priority
	ProductClass   string
	DeliveryWindow *kernel.Period
}

// Snapshot is the persisted state used by RestoreOrder.
type Snapshot struct {
	ID               kernel.UUID
	Number           string
	SiteID           kernel.UUID
	Request          Request
	Status           Status
	RequiresApproval bool
	ApprovedBy       *string
	ApprovedAt       *time.Time
	PlanningPeriod   *kernel.Period
	RouteID          *kernel.UUID
	CreatedAt        time.Time
	DeliveredAt      *time.Time
	Version          int64
}

// Order is the aggregate root for replenishment demand at a site.
//
// Invariants:
//   - requested quantity is positive
//   - at creation, requested quantity fits the site's free capacity
//   - emergency orders are urgent and require approval
//   - an order is assigned to at most one route at a time
type Order struct {
	ddd.EventRecorder

	id                kernel.UUID
	number            string
	siteID            kernel.UUID
	requestedQuantity kernel.Quantity
	orderType         Type
	priority          Priority
	productClass      string
	deliveryWindow    *kernel.Period
	status            Status
	requiresApproval  bool
	approvedBy        *string
	approvedAt        *time.Time
	planningPeriod    *kernel.Period
	routeID           *kernel.UUID
	createdAt         time.Time
	deliveredAt       *time.Time
	version           int64

	guard guard.ConstructorGuard
}

// NewOrder creates a pending order for target.
//
// It fails with a validation error for a non-positive quantity or unknown
// enums, and with a CapacityExceededError when the quantity does not fit the
// latest known ledger snapshot of the site. The capacity check is advisory;
// the ledger is re-checked (and clamped) at delivery time.
func NewOrder(
	id kernel.UUID,
	number string,
	target *site.Site,
	request Request,
	policy ApprovalPolicy,
	now time.Time,
) (*Order, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	o := &Order{
		status:    Pending,
		createdAt: now.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setNumber(number),
		o.setRequest(request),
	); err != nil {
		return nil, err
	}

	if err := target.CheckCanAccept(o.requestedQuantity); err != nil {
		return nil, err
	}

	o.siteID = target.ID()
	o.requiresApproval = policy.RequiresApproval(o.requestedQuantity, o.orderType, target.Priority())
	if o.orderType == TypeEmergency {
		o.priority = PriorityUrgent
	}

	o.Record(newCreatedEvent(o))

	return o, nil
}

// RestoreOrder rebuilds an order from persistence without re-running creation rules.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		requiresApproval: s.RequiresApproval,
		approvedBy:       s.ApprovedBy,
		approvedAt:       s.ApprovedAt,
		planningPeriod:   s.PlanningPeriod,
		routeID:          s.RouteID,
		createdAt:        s.CreatedAt.UTC(),
		deliveredAt:      s.DeliveredAt,
		version:          s.Version,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setNumber(s.Number),
		s.SiteID.Validate(),
		o.setRequest(s.Request),
		o.setStatus(s.Status),
	); err != nil {
		return nil, err
	}
	o.siteID = s.SiteID

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                    { return o.id }
func (o *Order) Number() string                     { return o.number }
func (o *Order) SiteID() kernel.UUID                { return o.siteID }
func (o *Order) RequestedQuantity() kernel.Quantity { return o.requestedQuantity }
func (o *Order) Type() Type                         { return o.orderType }
func (o *Order) Priority() Priority                 { return o.priority }
func (o *Order) ProductClass() string               { return o.productClass }
func (o *Order) DeliveryWindow() *kernel.Period     { return o.deliveryWindow }
func (o *Order) Status() Status                     { return o.status }
func (o *Order) RequiresApproval() bool             { return o.requiresApproval }
func (o *Order) ApprovedBy() *string                { return o.approvedBy }
func (o *Order) ApprovedAt() *time.Time             { return o.approvedAt }
func (o *Order) PlanningPeriod() *kernel.Period     { return o.planningPeriod }
func (o *Order) RouteID() *kernel.UUID              { return o.routeID }
func (o *Order) CreatedAt() time.Time               { return o.createdAt }
func (o *Order) DeliveredAt() *time.Time            { return o.deliveredAt }
func (o *Order) Version() int64                     { return o.version }

// IncrementVersion is called by repositories after a successful write.
func (o *Order) IncrementVersion() {
	o.version++
}

// Approve clears the approval requirement and records the approver.
//
// Approving an order that does not require approval fails with a
// StateIsInvalidError, except when the same approver already approved it, in
// which case the call is a no-op.
func (o *Order) Approve(approver string, now time.Time) error {
	approver = strings.TrimSpace(approver)
	if approver == "" {
		return ErrApproverIsRequired
	}

	if o.status.IsTerminal() {
		return errs.NewStateIsInvalidError("order", o.status.String(), "approve")
	}

	if !o.requiresApproval {
		if o.approvedBy != nil && *o.approvedBy == approver {
			return nil
		}
		return errs.NewStateIsInvalidErrorWithCause("order", o.status.String(), "approve",
			errors.New("order does not require approval"))
	}

	at := now.UTC()
	o.requiresApproval = false
	o.approvedBy = &approver
	o.approvedAt = &at

	return nil
}

// Confirm moves a pending order to confirmed once approval is not required.
func (o *Order) Confirm(now time.Time) error {
	if err := o.checkApproved("confirm"); err != nil {
		return err
	}
	return o.transition(o.status.Confirm, now)
}

// Plan records the target planning period and admits the order to route planning.
func (o *Order) Plan(period kernel.Period, now time.Time) error {
	if err := period.Validate(); err != nil {
		return err
	}
	if err := o.checkApproved("plan"); err != nil {
		return err
	}
	if err := o.transition(o.status.Plan, now); err != nil {
		return err
	}
	o.planningPeriod = &period
	return nil
}

// AssignToRoute attaches the order to a route and forces it to planned. It is
// gated by the same approval rule as Plan. Re-assigning to the same route is a
// no-op; assigning an order that already belongs to another route fails.
func (o *Order) AssignToRoute(routeID kernel.UUID, now time.Time) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	if o.routeID != nil {
		if o.routeID.IsEqual(routeID) {
			return nil
		}
		return errs.NewStateIsInvalidErrorWithCause("order", o.status.String(), "assign to route",
			fmt.Errorf("order is already assigned to route %s", o.routeID))
	}
	if err := o.checkApproved("assign to route"); err != nil {
		return err
	}
	if err := o.transition(o.status.AssignToRoute, now); err != nil {
		return err
	}
	o.routeID = &routeID
	return nil
}

// StartTransit marks the order as being delivered.
func (o *Order) StartTransit(now time.Time) error {
	if o.status == InTransit {
		return nil
	}
	return o.transition(o.status.StartTransit, now)
}

// Deliver marks the order delivered. Delivered is terminal.
func (o *Order) Deliver(now time.Time) error {
	if err := o.transition(o.status.Deliver, now); err != nil {
		return err
	}
	at := now.UTC()
	o.deliveredAt = &at
	return nil
}

// ReleaseFromRoute detaches an undelivered order from its route and returns
// it to confirmed, ready for replanning.
func (o *Order) ReleaseFromRoute(now time.Time) error {
	if o.routeID == nil {
		return errs.NewStateIsInvalidErrorWithCause("order", o.status.String(), "release",
			errors.New("order is not assigned to a route"))
	}
	if err := o.transition(o.status.Release, now); err != nil {
		return err
	}
	o.routeID = nil
	return nil
}

// Cancel terminates the order and releases any route assignment.
func (o *Order) Cancel(now time.Time) error {
	if err := o.transition(o.status.Cancel, now); err != nil {
		return err
	}
	o.routeID = nil
	return nil
}

func (o *Order) transition(next func() (Status, error), now time.Time) error {
	newStatus, err := next()
	if err != nil {
		return err
	}
	from := o.status
	o.status = newStatus
	if from != newStatus {
		o.Record(newStatusChangedEvent(o, from, now))
	}
	return nil
}

func (o *Order) checkApproved(action string) error {
	if o.requiresApproval {
		return errs.NewStateIsInvalidErrorWithCause("order", o.status.String(), action,
			errors.New("order requires approval"))
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return ErrNumberIsRequired
	}
	o.number = number
	return nil
}

func (o *Order) setRequest(r Request) error {
	if r.Quantity.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%s is not greater than 0", r.Quantity))
	}
	if err := errors.Join(r.Type.Validate(), r.Priority.Validate()); err != nil {
		return err
	}
	if r.DeliveryWindow != nil {
		if err := r.DeliveryWindow.Validate(); err != nil {
			return err
		}
	}

	o.requestedQuantity = r.Quantity
	o.orderType = r.Type
	o.priority = r.Priority
	o.productClass = strings.TrimSpace(r.ProductClass)
	o.deliveryWindow = r.DeliveryWindow
	return nil
}

func (o *Order) setStatus(s Status) error {
	if err := s.Validate(); err != nil {
		return err
	}
	o.status = s
	return nil
}
