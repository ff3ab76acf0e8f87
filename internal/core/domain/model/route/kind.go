package route

import (
	"fmt"

	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/pkg/errs"
)

// Type classifies a route by the orders it carries.
type Type int

const (
	TypeUnknown Type = iota
	TypeContract
	TypeOnDemand
	TypeEmergency
	TypeMixed
)

var typeNames = map[Type]string{
	TypeContract:  "contract",
	TypeOnDemand:  "on_demand",
	TypeEmergency: "emergency",
	TypeMixed:     "mixed",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

func (t Type) Validate() error {
	if _, ok := typeNames[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("route type", fmt.Errorf("%d is not a valid route type", t))
	}
	return nil
}

func ParseType(str string) (Type, error) {
	for t, name := range typeNames {
		if name == str {
			return t, nil
		}
	}
	return TypeUnknown, errs.NewValueIsInvalidErrorWithCause("route type", fmt.Errorf("%q is not a valid route type", str))
}

// DeriveType maps the order types admitted to a route onto a route type. Any
// emergency order makes the route an emergency route. Proactive orders ride on
// contract routes.
func DeriveType(orderTypes []order.Type) Type {
	contract, onDemand := 0, 0
	for _, t := range orderTypes {
		switch t {
		case order.TypeEmergency:
			return TypeEmergency
		case order.TypeContract, order.TypeProactive:
			contract++
		case order.TypeOnDemand:
			onDemand++
		}
	}

	switch {
	case contract > 0 && onDemand == 0:
		return TypeContract
	case onDemand > 0 && contract == 0:
		return TypeOnDemand
	default:
		return TypeMixed
	}
}

// DeliveryMethod is how the commodity is unloaded at a stop.
type DeliveryMethod int

const (
	DeliveryMethodUnknown DeliveryMethod = iota
	DeliveryMethodSiloToSilo
	DeliveryMethodCompartment
	DeliveryMethodTote
)

var deliveryMethodNames = map[DeliveryMethod]string{
	DeliveryMethodSiloToSilo:  "silo_to_silo",
	DeliveryMethodCompartment: "compartment_delivery",
	DeliveryMethodTote:        "tote_delivery",
}

func (m DeliveryMethod) String() string {
	if name, ok := deliveryMethodNames[m]; ok {
		return name
	}
	return "unknown"
}

func (m DeliveryMethod) Validate() error {
	if _, ok := deliveryMethodNames[m]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("delivery method", fmt.Errorf("%d is not a valid delivery method", m))
	}
	return nil
}

func ParseDeliveryMethod(str string) (DeliveryMethod, error) {
	for m, name := range deliveryMethodNames {
		if name == str {
			return m, nil
		}
	}
	return DeliveryMethodUnknown, errs.NewValueIsInvalidErrorWithCause("delivery method", fmt.Errorf("%q is not a valid delivery method", str))
}
