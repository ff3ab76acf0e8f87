package commands

import (
	"errors"
	"strings"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var (
	ErrApproveOrderCommandIsNotConstructed = errors.New(
		"ApproveOrderCommand must be created via NewApproveOrderCommand constructor",
	)
	ErrApproverIsRequired = errs.NewValueIsRequiredError("approver")
)

// ApproveOrderCommand clears the approval requirement of an order.
type ApproveOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	approver string

	guard guard.ConstructorGuard
}

func NewApproveOrderCommand(orderID kernel.UUID, approver string) (ApproveOrderCommand, error) {
	cmd := ApproveOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setApprover(approver),
	); err != nil {
		return ApproveOrderCommand{}, err
	}

	return cmd, nil
}

func (c ApproveOrderCommand) Validate() error {
	return c.guard.Validate(ErrApproveOrderCommandIsNotConstructed)
}

func (c ApproveOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c ApproveOrderCommand) Approver() string     { return c.approver }

func (c *ApproveOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ApproveOrderCommand) setApprover(approver string) error {
	approver = strings.TrimSpace(approver)
	if approver == "" {
		return ErrApproverIsRequired
	}
	c.approver = approver
	return nil
}
