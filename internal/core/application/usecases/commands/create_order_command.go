package commands

import (
	"errors"
	"strings"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrQuantityIsInvalid = errs.NewValueIsInvalidErrorWithCause("quantity", errors.New("must be greater than 0"))
)

// CreateOrderCommand represents a request to replenish a site.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), siteID, order.Request{
//	    Quantity:     kernel.MustQuantity(12.5),
//	    Type:         order.TypeOnDemand,
//	    Priority:     order.PriorityMedium,
//	    ProductClass: "feed",
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	siteID  kernel.UUID
	request order.Request

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the identifiers and the requested quantity.
// Enum values are validated by the order aggregate.
func NewCreateOrderCommand(orderID, siteID kernel.UUID, request order.Request) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setSiteID(siteID),
		cmd.setRequest(request),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID   { return c.orderID }
func (c CreateOrderCommand) SiteID() kernel.UUID    { return c.siteID }
func (c CreateOrderCommand) Request() order.Request { return c.request }

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setSiteID(siteID kernel.UUID) error {
	if err := siteID.Validate(); err != nil {
		return err
	}
	c.siteID = siteID
	return nil
}

func (c *CreateOrderCommand) setRequest(request order.Request) error {
	if !request.Quantity.GreaterThan(kernel.ZeroQuantity) {
		return ErrQuantityIsInvalid
	}
	request.ProductClass = strings.TrimSpace(request.ProductClass)
	c.request = request
	return nil
}
