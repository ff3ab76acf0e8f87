package commands

import (
	"context"

	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/ports"
)

// CreateOrderCommandHandler registers new demand for a site.
//
// The capacity check reads the site's ledger under the per-site lock so it
// sees the latest committed delivery or sensor reading. The check is
// advisory; deliveries clamp against the ledger again.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	locker     ports.Locker
	numbers    ports.NumberGenerator
	policy     order.ApprovalPolicy
	clock      ports.Clock
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	locker ports.Locker,
	numbers ports.NumberGenerator,
	policy order.ApprovalPolicy,
	clock ports.Clock,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
		numbers:    numbers,
		policy:     policy,
		clock:      clock,
	}
}

// Handle returns the created order in pending status. It fails with a
// CapacityExceededError when the quantity does not fit the site's free
// capacity and with an ObjectNotFoundError for an unknown site.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var created *order.Order
	err := withLock(ctx, h.locker, ports.SiteLockKey(cmd.SiteID()), func() error {
		number, err := h.numbers.Next(ctx, ports.OrderNumbers)
		if err != nil {
			return err
		}

		uow := h.uowFactory.Create()
		if err = uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		target, err := uow.SiteRepository().Get(ctx, cmd.SiteID())
		if err != nil {
			return err
		}

		o, err := order.NewOrder(cmd.OrderID(), number, target, cmd.Request(), h.policy, h.clock.Now())
		if err != nil {
			return err
		}

		if err = uow.OrderRepository().Add(ctx, o); err != nil {
			return err
		}

		if err = uow.Commit(ctx); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
