package commands

import (
	"errors"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var (
	ErrBuildRouteCommandIsNotConstructed = errors.New(
		"BuildRouteCommand must be created via NewBuildRouteCommand constructor",
	)
	ErrVehicleIsRequired       = errs.NewValueIsRequiredError("vehicle")
	ErrScheduledDateIsRequired = errs.NewValueIsRequiredError("scheduled date")
)

// BuildRouteCommand asks the planner to fill one vehicle from the pool of
// confirmed and planned orders.
//
// Example:
//
//	cmd, err := NewBuildRouteCommand(kernel.NewUUID(), route.Vehicle{
//	    ID:       "TRUCK-07",
//	    Capacity: kernel.MustQuantity(38),
//	}, tomorrow, "feed", &depot, route.DeliveryMethodSiloToSilo)
type BuildRouteCommand struct { //nolint:recvcheck //using for validation
	routeID        kernel.UUID
	vehicle        route.Vehicle
	scheduledDate  time.Time
	productClass   string
	origin         *kernel.GeoPoint
	deliveryMethod route.DeliveryMethod

	guard guard.ConstructorGuard
}

// NewBuildRouteCommand validates the vehicle and schedule. An empty
// productClass plans across all classes; a nil origin sequences without a
// depot; an unknown delivery method falls back to silo-to-silo.
func NewBuildRouteCommand(
	routeID kernel.UUID,
	vehicle route.Vehicle,
	scheduledDate time.Time,
	productClass string,
	origin *kernel.GeoPoint,
	deliveryMethod route.DeliveryMethod,
) (BuildRouteCommand, error) {
	cmd := BuildRouteCommand{
		productClass:   strings.TrimSpace(productClass),
		deliveryMethod: deliveryMethod,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRouteID(routeID),
		cmd.setVehicle(vehicle),
		cmd.setScheduledDate(scheduledDate),
		cmd.setOrigin(origin),
	); err != nil {
		return BuildRouteCommand{}, err
	}

	return cmd, nil
}

func (c BuildRouteCommand) Validate() error {
	return c.guard.Validate(ErrBuildRouteCommandIsNotConstructed)
}

func (c BuildRouteCommand) RouteID() kernel.UUID                 { return c.routeID }
func (c BuildRouteCommand) Vehicle() route.Vehicle               { return c.vehicle }
func (c BuildRouteCommand) ScheduledDate() time.Time             { return c.scheduledDate }
func (c BuildRouteCommand) ProductClass() string                 { return c.productClass }
func (c BuildRouteCommand) Origin() *kernel.GeoPoint             { return c.origin }
func (c BuildRouteCommand) DeliveryMethod() route.DeliveryMethod { return c.deliveryMethod }

func (c *BuildRouteCommand) setRouteID(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	c.routeID = routeID
	return nil
}

func (c *BuildRouteCommand) setVehicle(vehicle route.Vehicle) error {
	vehicle.ID = strings.TrimSpace(vehicle.ID)
	if vehicle.ID == "" {
		return ErrVehicleIsRequired
	}
	if !vehicle.Capacity.GreaterThan(kernel.ZeroQuantity) {
		return errs.NewValueIsInvalidErrorWithCause("vehicle capacity", ErrQuantityIsInvalid)
	}
	c.vehicle = vehicle
	return nil
}

func (c *BuildRouteCommand) setScheduledDate(at time.Time) error {
	if at.IsZero() {
		return ErrScheduledDateIsRequired
	}
	c.scheduledDate = at.UTC()
	return nil
}

func (c *BuildRouteCommand) setOrigin(origin *kernel.GeoPoint) error {
	if origin == nil {
		return nil
	}
	if err := origin.Validate(); err != nil {
		return err
	}
	c.origin = origin
	return nil
}
