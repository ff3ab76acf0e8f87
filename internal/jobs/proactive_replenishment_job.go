package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/site"
	"replenishment/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// LowStockFinder is satisfied by queries.GetLowStockSitesQueryHandler.
type LowStockFinder interface {
	Handle(ctx context.Context, query queries.GetLowStockSitesQuery) ([]queries.GetLowStockSitesQueryResponse, error)
}

// OrderCreator is satisfied by commands.CreateOrderCommandHandler.
type OrderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
}

// ProactiveReplenishmentJob raises an order for every low-stock site that has
// no open order yet. Sites at the emergency level get an emergency order;
// the others a proactive one. The order tops the site up to capacity.
type ProactiveReplenishmentJob struct {
	finder       LowStockFinder
	creator      OrderCreator
	emergency    site.StockLevel
	productClass string
	spec         string
	cron         *cron.Cron
	logger       *slog.Logger
}

func NewProactiveReplenishmentJob(
	finder LowStockFinder,
	creator OrderCreator,
	emergency site.StockLevel,
	productClass string,
	spec string,
	logger *slog.Logger,
) *ProactiveReplenishmentJob {
	return &ProactiveReplenishmentJob{
		finder:       finder,
		creator:      creator,
		emergency:    emergency,
		productClass: productClass,
		spec:         spec,
		cron:         cron.New(cron.WithSeconds()),
		logger:       logger.With("component", "proactive_replenishment_job"),
	}
}

func (j *ProactiveReplenishmentJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx := context.Background()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Proactive replenishment job failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", j.spec, err)
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Proactive replenishment job started", "schedule", j.spec)
	return nil
}

func (j *ProactiveReplenishmentJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Proactive replenishment job stopped")
}

// RunOnce returns the orders it created. A site whose order cannot be created
// is logged and skipped; only a failure to list sites is returned.
func (j *ProactiveReplenishmentJob) RunOnce(ctx context.Context) ([]*order.Order, error) {
	sites, err := j.finder.Handle(ctx, queries.NewGetLowStockSitesQuery())
	if err != nil {
		return nil, fmt.Errorf("list low stock sites: %w", err)
	}

	created := make([]*order.Order, 0, len(sites))
	for _, s := range sites {
		if s.OpenOrders > 0 {
			continue
		}

		o, err := j.replenish(ctx, s)
		switch {
		case err == nil:
			created = append(created, o)
		case errors.Is(err, errs.ErrCapacityExceeded), errs.IsValidation(err):
			j.logger.WarnContext(ctx, "Skipping site", "site_id", s.ID.String(), "error", err)
		default:
			j.logger.ErrorContext(ctx, "Failed to raise replenishment order", "site_id", s.ID.String(), "error", err)
		}
	}

	if len(created) > 0 {
		j.logger.InfoContext(ctx, "Replenishment orders raised", "count", len(created))
	}
	return created, nil
}

func (j *ProactiveReplenishmentJob) replenish(ctx context.Context, s queries.GetLowStockSitesQueryResponse) (*order.Order, error) {
	quantity := s.Capacity.Sub(s.CurrentQuantity)
	if quantity.IsZero() {
		return nil, errs.NewValueIsInvalidErrorWithCause("quantity", errors.New("site is full"))
	}

	request := order.Request{
		Quantity:     quantity,
		Type:         order.TypeProactive,
		Priority:     priorityFor(s.Priority),
		ProductClass: j.productClass,
	}
	if j.emergency.ReachedBy(s.CurrentQuantity, s.Capacity) {
		request.Type = order.TypeEmergency
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), s.ID, request)
	if err != nil {
		return nil, err
	}

	o, err := j.creator.Handle(ctx, cmd)
	if err != nil {
		return nil, err
	}

	j.logger.InfoContext(ctx, "Replenishment order raised",
		"site_id", s.ID.String(), "order", o.Number(), "type", o.Type().String(), "quantity", o.RequestedQuantity().String())
	return o, nil
}

func priorityFor(sitePriority string) order.Priority {
	switch sitePriority {
	case site.PriorityHigh.String():
		return order.PriorityHigh
	case site.PriorityLow.String():
		return order.PriorityLow
	default:
		return order.PriorityMedium
	}
}
