package commands

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/domain/model/site"
	"replenishment/internal/core/domain/services"
	"replenishment/internal/core/ports"

	"github.com/shopspring/decimal"
)

// StopSequencer orders the stops of a draft or planned route.
// *services.RouteSequencer is the production implementation.
type StopSequencer interface {
	Sequence(ctx context.Context, r *route.Route) (services.SequenceOutcome, error)
}

// BuildRouteResult describes a freshly planned route.
type BuildRouteResult struct {
	Route    *route.Route
	Outcome  services.SequenceOutcome
	Rejected []kernel.UUID
}

// BuildRouteCommandHandler plans one route.
//
// Candidates are read and sequenced outside the write transaction. The write
// transaction adds the route and assigns every admitted order with a version
// check; if a concurrent planner took one of them first the whole route is
// rolled back with a ConflictError, so an order never sits on two routes.
type BuildRouteCommandHandler struct {
	uowFactory     RouteUoWFactory
	builder        services.RouteBuilder
	sequencer      StopSequencer
	numbers        ports.NumberGenerator
	clock          ports.Clock
	accuracyTarget decimal.Decimal
}

func NewBuildRouteCommandHandler(
	uowFactory RouteUoWFactory,
	builder services.RouteBuilder,
	sequencer StopSequencer,
	numbers ports.NumberGenerator,
	clock ports.Clock,
	accuracyTarget decimal.Decimal,
) BuildRouteCommandHandler {
	return BuildRouteCommandHandler{
		uowFactory:     uowFactory,
		builder:        builder,
		sequencer:      sequencer,
		numbers:        numbers,
		clock:          clock,
		accuracyTarget: accuracyTarget,
	}
}

// Handle fails with services.ErrInsufficientOrders when no candidate fits the
// vehicle. Geometry provider failures never fail the build; the route comes
// back degraded instead.
func (h BuildRouteCommandHandler) Handle(ctx context.Context, cmd BuildRouteCommand) (BuildRouteResult, error) {
	if err := cmd.Validate(); err != nil {
		return BuildRouteResult{}, err
	}

	candidates, err := h.loadCandidates(ctx, cmd.ProductClass())
	if err != nil {
		return BuildRouteResult{}, err
	}

	now := h.clock.Now()
	selection, err := h.builder.Select(candidates, cmd.Vehicle().Capacity, now)
	if err != nil {
		return BuildRouteResult{}, err
	}

	number, err := h.numbers.Next(ctx, ports.RouteNumbers)
	if err != nil {
		return BuildRouteResult{}, err
	}

	specs := make([]route.StopSpec, 0, len(selection.Admitted))
	types := make([]order.Type, 0, len(selection.Admitted))
	for _, c := range selection.Admitted {
		specs = append(specs, route.StopSpec{
			OrderID:        c.Order.ID(),
			SiteID:         c.Site.ID(),
			Location:       c.Site.Location(),
			Quantity:       c.Order.RequestedQuantity(),
			DeliveryMethod: cmd.DeliveryMethod(),
		})
		types = append(types, c.Order.Type())
	}

	r, err := route.NewRoute(cmd.RouteID(), number, route.Header{
		ScheduledDate:          cmd.ScheduledDate(),
		Vehicle:                cmd.Vehicle(),
		ProductClass:           cmd.ProductClass(),
		Origin:                 cmd.Origin(),
		PlanningAccuracyTarget: h.accuracyTarget,
	}, specs, types, now)
	if err != nil {
		return BuildRouteResult{}, err
	}

	outcome, err := h.sequencer.Sequence(ctx, r)
	if err != nil {
		return BuildRouteResult{}, err
	}

	if err = h.admit(ctx, r, selection.Admitted); err != nil {
		return BuildRouteResult{}, err
	}

	rejected := make([]kernel.UUID, 0, len(selection.Rejected))
	for _, c := range selection.Rejected {
		rejected = append(rejected, c.Order.ID())
	}

	return BuildRouteResult{Route: r, Outcome: outcome, Rejected: rejected}, nil
}

func (h BuildRouteCommandHandler) loadCandidates(ctx context.Context, productClass string) ([]services.Candidate, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().FindPlanningCandidates(ctx, productClass)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, services.ErrInsufficientOrders
	}

	siteIDs := make([]kernel.UUID, 0, len(orders))
	seen := make(map[kernel.UUID]struct{}, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.SiteID()]; ok {
			continue
		}
		seen[o.SiteID()] = struct{}{}
		siteIDs = append(siteIDs, o.SiteID())
	}

	sites, err := uow.SiteRepository().GetMany(ctx, siteIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[kernel.UUID]*site.Site, len(sites))
	for _, s := range sites {
		byID[s.ID()] = s
	}

	candidates := make([]services.Candidate, 0, len(orders))
	for _, o := range orders {
		s, ok := byID[o.SiteID()]
		if !ok {
			continue
		}
		candidates = append(candidates, services.Candidate{Order: o, Site: s})
	}

	return candidates, nil
}

func (h BuildRouteCommandHandler) admit(ctx context.Context, r *route.Route, admitted []services.Candidate) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.RouteRepository().Add(ctx, r); err != nil {
		return err
	}

	now := h.clock.Now()
	orderRepo := uow.OrderRepository()
	for _, c := range admitted {
		if err := c.Order.AssignToRoute(r.ID(), now); err != nil {
			return err
		}
		if err := orderRepo.Update(ctx, c.Order); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
