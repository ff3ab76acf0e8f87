package commands

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// FulfillStopResult reports what a fulfillment changed.
type FulfillStopResult struct {
	// Delta is the quantity added to the stop's delivered total.
	Delta kernel.Quantity
	// Applied is the part of Delta that fit into the site; the rest was
	// clamped at capacity.
	Applied kernel.Quantity
	// First is true when this call delivered the order.
	First bool
}

// FulfillStopCommandHandler applies a delivery to the route, the site's
// storage ledger and the order in one transaction.
//
// The per-site lock is held from before the ledger is read until after the
// commit, and the site row is read FOR UPDATE, so concurrent deliveries and
// sensor readings for the same site serialize. Route, site and order are
// written with version checks.
type FulfillStopCommandHandler struct {
	uowFactory RouteUoWFactory
	locker     ports.Locker
	rules      route.FulfillmentRules
	clock      ports.Clock
}

func NewFulfillStopCommandHandler(
	uowFactory RouteUoWFactory,
	locker ports.Locker,
	rules route.FulfillmentRules,
	clock ports.Clock,
) FulfillStopCommandHandler {
	return FulfillStopCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
		rules:      rules,
		clock:      clock,
	}
}

// Handle fails with a StateIsInvalidError when the route is not active or
// delayed, or when a repeat fulfillment is rejected by policy, and with a
// ValueIsOutOfRangeError when the quantity exceeds the overage tolerance.
func (h FulfillStopCommandHandler) Handle(ctx context.Context, cmd FulfillStopCommand) (result FulfillStopResult, err error) {
	ctx, span := tracing.Start(ctx, "FulfillStopCommandHandler.Handle",
		attribute.String("route.id", cmd.RouteID().String()),
		attribute.String("stop.id", cmd.StopID().String()),
	)
	defer tracing.End(span, &err)

	if err = cmd.Validate(); err != nil {
		return FulfillStopResult{}, err
	}

	at := cmd.CompletedAt()
	if at.IsZero() {
		at = h.clock.Now()
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return FulfillStopResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()
	r, err := routeRepo.Get(ctx, cmd.RouteID())
	if err != nil {
		return FulfillStopResult{}, err
	}

	stop, err := r.Stop(cmd.StopID())
	if err != nil {
		return FulfillStopResult{}, err
	}

	err = withLock(ctx, h.locker, ports.SiteLockKey(stop.SiteID()), func() error {
		delta, first, err := r.FulfillStop(cmd.StopID(), cmd.Quantity(), h.rules, at)
		if err != nil {
			return err
		}
		result = FulfillStopResult{Delta: delta, Applied: kernel.ZeroQuantity, First: first}

		if !delta.IsZero() {
			siteRepo := uow.SiteRepository()
			s, err := siteRepo.GetForUpdate(ctx, stop.SiteID())
			if err != nil {
				return err
			}
			result.Applied = s.Replenish(delta, at)
			if err = siteRepo.Update(ctx, s); err != nil {
				return err
			}
		}

		if first {
			orderRepo := uow.OrderRepository()
			o, err := orderRepo.Get(ctx, stop.OrderID())
			if err != nil {
				return err
			}
			if err = o.Deliver(at); err != nil {
				return err
			}
			if err = orderRepo.Update(ctx, o); err != nil {
				return err
			}
		}

		if err = routeRepo.Update(ctx, r); err != nil {
			return err
		}

		return uow.Commit(ctx)
	})
	if err != nil {
		return FulfillStopResult{}, err
	}

	span.SetAttributes(attribute.String("delta", result.Delta.String()), attribute.Bool("first", result.First))
	return result, nil
}
