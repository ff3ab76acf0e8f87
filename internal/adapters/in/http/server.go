// Package http exposes the replenishment use cases over a JSON API served by
// echo under /api/v1.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"replenishment/internal/adapters/out/excel"
	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/domain/model/site"
	"replenishment/internal/core/ports"

	"github.com/labstack/echo/v4"
)

// Handlers groups the use cases served by the API.
type Handlers struct {
	RegisterSite       commands.RegisterSiteCommandHandler
	ApplySensorReading commands.ApplySensorReadingCommandHandler
	CreateOrder        commands.CreateOrderCommandHandler
	ApproveOrder       commands.ApproveOrderCommandHandler
	ConfirmOrder       commands.ConfirmOrderCommandHandler
	PlanOrder          commands.PlanOrderCommandHandler
	CancelOrder        commands.CancelOrderCommandHandler
	RequeueOrder       commands.RequeueOrderCommandHandler
	BuildRoute         commands.BuildRouteCommandHandler
	SequenceRoute      commands.SequenceRouteCommandHandler
	ActivateRoute      commands.ActivateRouteCommandHandler
	CompleteRoute      commands.CompleteRouteCommandHandler
	CancelRoute        commands.CancelRouteCommandHandler
	DelayRoute         commands.DelayRouteCommandHandler
	StartStop          commands.StartStopCommandHandler
	FulfillStop        commands.FulfillStopCommandHandler
	FlagStopIssue      commands.FlagStopIssueCommandHandler
	RecordForecast     commands.RecordForecastCommandHandler
	RecomputeKPI       commands.RecomputeKPICommandHandler

	GetPendingOrders queries.GetPendingOrdersQueryHandler
	GetLowStockSites queries.GetLowStockSitesQueryHandler
	GetRoute         queries.GetRouteQueryHandler
	GetKPIRecords    queries.GetKPIRecordsQueryHandler
}

// Server coordinates between HTTP requests and application use cases.
type Server struct {
	h        Handlers
	exporter excel.KPIExporter
	clock    ports.Clock
	logger   *slog.Logger
}

func NewServer(handlers Handlers, exporter excel.KPIExporter, clock ports.Clock, logger *slog.Logger) *Server {
	return &Server{
		h:        handlers,
		exporter: exporter,
		clock:    clock,
		logger:   logger.With("component", "http"),
	}
}

func (s *Server) GetHealth(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, Health{Status: "ok"})
}

// RegisterSite handles POST /api/v1/sites.
func (s *Server) RegisterSite(ctx echo.Context) error {
	var body NewSite
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	attributes, err := body.toAttributes()
	if err != nil {
		return err
	}

	siteID := kernel.NewUUID()
	cmd, err := commands.NewRegisterSiteCommand(siteID, attributes)
	if err != nil {
		return err
	}
	if err = s.h.RegisterSite.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, Created{ID: siteID.Bytes()})
}

// GetLowStockSites handles GET /api/v1/sites/low-stock.
func (s *Server) GetLowStockSites(ctx echo.Context) error {
	sites, err := s.h.GetLowStockSites.Handle(ctx.Request().Context(), queries.NewGetLowStockSitesQuery())
	if err != nil {
		return err
	}

	response := make([]LowStockSite, len(sites))
	for i, st := range sites {
		response[i] = LowStockSite{
			ID:                  st.ID.Bytes(),
			Name:                st.Name,
			SensorID:            st.SensorID,
			Priority:            st.Priority,
			Capacity:            st.Capacity.Float64(),
			CurrentQuantity:     st.CurrentQuantity.Float64(),
			PercentageRemaining: st.PercentageRemaining.InexactFloat64(),
			Connected:           st.Connected,
			OpenOrders:          st.OpenOrders,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// ApplySensorReading handles POST /api/v1/sites/{siteId}/readings. A reading
// without a timestamp is taken as of now.
func (s *Server) ApplySensorReading(ctx echo.Context, siteID kernel.UUID) error {
	var body SensorReading
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	quantity := kernel.FlooredQuantity(*body.Quantity)

	cmd, err := commands.NewApplySensorReadingCommand(siteID, quantity, s.timeOrNow(body.Timestamp))
	if err != nil {
		return err
	}

	applied, err := s.h.ApplySensorReading.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, ReadingResult{Applied: applied})
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body NewOrder
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	siteID, err := kernel.UUIDFromBytes(body.SiteID[:])
	if err != nil {
		return err
	}
	request, err := body.toRequest()
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), siteID, request)
	if err != nil {
		return err
	}

	created, err := s.h.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, toOrder(created))
}

// GetPendingOrders handles GET /api/v1/orders/pending.
func (s *Server) GetPendingOrders(ctx echo.Context, productClass *string) error {
	class := ""
	if productClass != nil {
		class = *productClass
	}

	orders, err := s.h.GetPendingOrders.Handle(ctx.Request().Context(), queries.NewGetPendingOrdersQuery(class))
	if err != nil {
		return err
	}

	response := make([]PendingOrder, len(orders))
	for i, o := range orders {
		response[i] = PendingOrder{
			Order: Order{
				ID:               o.ID.Bytes(),
				Number:           o.Number,
				SiteID:           o.SiteID.Bytes(),
				Quantity:         o.RequestedQuantity.InexactFloat64(),
				Type:             o.Type,
				Priority:         o.Priority,
				Status:           o.Status,
				ProductClass:     o.ProductClass,
				RequiresApproval: o.RequiresApproval,
				CreatedAt:        o.CreatedAt,
			},
			SiteName:    o.SiteName,
			WindowStart: o.WindowStart,
			WindowEnd:   o.WindowEnd,
		}
		if o.RouteID != nil {
			routeID := o.RouteID.Bytes()
			response[i].RouteID = &routeID
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

func (s *Server) ApproveOrder(ctx echo.Context, orderID kernel.UUID) error {
	var body Approval
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	cmd, err := commands.NewApproveOrderCommand(orderID, body.Approver)
	if err != nil {
		return err
	}
	if err = s.h.ApproveOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) ConfirmOrder(ctx echo.Context, orderID kernel.UUID) error {
	cmd, err := commands.NewConfirmOrderCommand(orderID)
	if err != nil {
		return err
	}
	if err = s.h.ConfirmOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) PlanOrder(ctx echo.Context, orderID kernel.UUID) error {
	var body PeriodRequest
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	period, err := kernel.NewPeriod(body.PeriodStart, body.PeriodEnd)
	if err != nil {
		return err
	}
	cmd, err := commands.NewPlanOrderCommand(orderID, period)
	if err != nil {
		return err
	}
	if err = s.h.PlanOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) CancelOrder(ctx echo.Context, orderID kernel.UUID) error {
	cmd, err := commands.NewCancelOrderCommand(orderID)
	if err != nil {
		return err
	}
	if err = s.h.CancelOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) RequeueOrder(ctx echo.Context, orderID kernel.UUID) error {
	cmd, err := commands.NewRequeueOrderCommand(orderID)
	if err != nil {
		return err
	}
	if err = s.h.RequeueOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

// BuildRoute handles POST /api/v1/routes.
func (s *Server) BuildRoute(ctx echo.Context) error {
	var body NewRoute
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	capacity, err := kernel.NewPositiveQuantity(*body.VehicleCapacity)
	if err != nil {
		return err
	}
	origin, err := body.Origin.toGeoPoint()
	if err != nil {
		return err
	}
	method := route.DeliveryMethodUnknown
	if body.DeliveryMethod != "" {
		if method, err = route.ParseDeliveryMethod(body.DeliveryMethod); err != nil {
			return err
		}
	}

	cmd, err := commands.NewBuildRouteCommand(
		kernel.NewUUID(),
		route.Vehicle{ID: body.VehicleID, Capacity: capacity},
		body.ScheduledDate,
		body.ProductClass,
		origin,
		method,
	)
	if err != nil {
		return err
	}

	result, err := s.h.BuildRoute.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	r := result.Route
	return ctx.JSON(http.StatusCreated, BuiltRoute{
		ID:                   r.ID().Bytes(),
		Number:               r.Number(),
		Type:                 r.Type().String(),
		Status:               r.Status().String(),
		Stops:                len(r.Stops()),
		TotalPlannedQuantity: r.TotalPlannedQuantity().Float64(),
		PlannedDistanceKm:    r.PlannedDistanceKm(),
		Provider:             result.Outcome.Provider,
		Degraded:             r.IsDegraded(),
		DegradedReason:       r.DegradedReason(),
		RejectedOrderIDs:     toUUIDs(result.Rejected),
	})
}

// GetRoute handles GET /api/v1/routes/{routeId}.
func (s *Server) GetRoute(ctx echo.Context, routeID kernel.UUID) error {
	query, err := queries.NewGetRouteQuery(routeID)
	if err != nil {
		return err
	}

	r, err := s.h.GetRoute.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toRoute(r))
}

func (s *Server) SequenceRoute(ctx echo.Context, routeID kernel.UUID) error {
	cmd, err := commands.NewSequenceRouteCommand(routeID)
	if err != nil {
		return err
	}

	outcome, err := s.h.SequenceRoute.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	response := SequenceResult{Provider: outcome.Provider, Degraded: outcome.Degraded}
	if outcome.Cause != nil {
		response.Cause = outcome.Cause.Error()
	}
	return ctx.JSON(http.StatusOK, response)
}

func (s *Server) ActivateRoute(ctx echo.Context, routeID kernel.UUID) error {
	cmd, err := commands.NewActivateRouteCommand(routeID)
	if err != nil {
		return err
	}
	if err = s.h.ActivateRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CompleteRoute handles POST /api/v1/routes/{routeId}/complete and returns
// the orders left undelivered.
func (s *Server) CompleteRoute(ctx echo.Context, routeID kernel.UUID) error {
	var body RouteActuals
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	var duration *time.Duration
	if body.ActualDurationMinutes != nil {
		d := time.Duration(*body.ActualDurationMinutes * float64(time.Minute))
		duration = &d
	}

	cmd, err := commands.NewCompleteRouteCommand(routeID, body.ActualDistanceKm, duration)
	if err != nil {
		return err
	}

	undelivered, err := s.h.CompleteRoute.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, OrderIDs{OrderIDs: toUUIDs(undelivered)})
}

// CancelRoute handles POST /api/v1/routes/{routeId}/cancel and returns the
// orders released back to planning.
func (s *Server) CancelRoute(ctx echo.Context, routeID kernel.UUID) error {
	var body Reason
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	cmd, err := commands.NewCancelRouteCommand(routeID, body.Reason)
	if err != nil {
		return err
	}

	released, err := s.h.CancelRoute.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, OrderIDs{OrderIDs: toUUIDs(released)})
}

func (s *Server) DelayRoute(ctx echo.Context, routeID kernel.UUID) error {
	var body Reason
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	cmd, err := commands.NewDelayRouteCommand(routeID, body.Reason)
	if err != nil {
		return err
	}
	if err = s.h.DelayRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) StartStop(ctx echo.Context, routeID, stopID kernel.UUID) error {
	var body StopArrival
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	cmd, err := commands.NewStartStopCommand(routeID, stopID, s.timeOrNow(body.ArrivedAt))
	if err != nil {
		return err
	}
	if err = s.h.StartStop.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

// FulfillStop handles POST /api/v1/routes/{routeId}/stops/{stopId}/fulfill.
func (s *Server) FulfillStop(ctx echo.Context, routeID, stopID kernel.UUID) error {
	var body Fulfillment
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	quantity, err := kernel.NewQuantity(*body.Quantity)
	if err != nil {
		return err
	}

	cmd, err := commands.NewFulfillStopCommand(routeID, stopID, quantity, s.timeOrNow(body.CompletedAt))
	if err != nil {
		return err
	}

	result, err := s.h.FulfillStop.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, FulfillmentResult{
		Delta:   result.Delta.Float64(),
		Applied: result.Applied.Float64(),
		First:   result.First,
	})
}

func (s *Server) FlagStopIssue(ctx echo.Context, routeID, stopID kernel.UUID) error {
	var body StopIssue
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	cmd, err := commands.NewFlagStopIssueCommand(routeID, stopID, body.Description, body.Resolution)
	if err != nil {
		return err
	}
	if err = s.h.FlagStopIssue.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RecordForecast handles POST /api/v1/forecasts.
func (s *Server) RecordForecast(ctx echo.Context) error {
	var body NewForecast
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	period, err := kernel.NewPeriod(body.PeriodStart, body.PeriodEnd)
	if err != nil {
		return err
	}
	quantity, err := kernel.NewQuantity(*body.Quantity)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRecordForecastCommand(body.ProductClass, period, quantity)
	if err != nil {
		return err
	}
	if err = s.h.RecordForecast.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RecomputeKPIs handles POST /api/v1/kpis/recompute. Without a metric every
// metric type is recomputed for the class and period.
func (s *Server) RecomputeKPIs(ctx echo.Context) error {
	var body RecomputeRequest
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	period, err := kernel.NewPeriod(body.PeriodStart, body.PeriodEnd)
	if err != nil {
		return err
	}

	metrics := kpi.AllMetrics()
	if body.Metric != "" {
		metric, err := kpi.ParseMetricType(body.Metric)
		if err != nil {
			return err
		}
		metrics = []kpi.MetricType{metric}
	}

	now := s.clock.Now()
	response := make([]KPIRecord, 0, len(metrics))
	for _, metric := range metrics {
		cmd, err := commands.NewRecomputeKPICommand(metric, body.ProductClass, period)
		if err != nil {
			return err
		}
		record, err := s.h.RecomputeKPI.Handle(ctx.Request().Context(), cmd)
		if err != nil {
			return err
		}
		response = append(response, fromRecord(record, now))
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetKPIs handles GET /api/v1/kpis.
func (s *Server) GetKPIs(ctx echo.Context, params KPIParams) error {
	records, err := s.listKPIs(ctx, params)
	if err != nil {
		return err
	}

	response := make([]KPIRecord, len(records))
	for i, r := range records {
		response[i] = KPIRecord{
			MetricType:   r.MetricType,
			ProductClass: r.ProductClass,
			Horizon:      r.Horizon,
			PeriodStart:  r.PeriodStart,
			PeriodEnd:    r.PeriodEnd,
			Value:        floatPtr(r.Value),
			Target:       floatPtr(r.Target),
			Trend:        r.Trend,
			SampleSize:   r.SampleSize,
			WithinTarget: r.WithinTarget,
			ComputedAt:   r.ComputedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// ExportKPIs handles GET /api/v1/kpis/export with the same filters as GetKPIs.
func (s *Server) ExportKPIs(ctx echo.Context, params KPIParams) error {
	records, err := s.listKPIs(ctx, params)
	if err != nil {
		return err
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, excel.ContentType)
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", s.exporter.FileName(s.clock.Now())))
	res.WriteHeader(http.StatusOK)

	return s.exporter.Export(res, records)
}

func (s *Server) listKPIs(ctx echo.Context, params KPIParams) ([]queries.GetKPIRecordsQueryResponse, error) {
	filter := queries.KPIRecordFilter{ProductClass: params.ProductClass}
	if params.Metric != nil && *params.Metric != "" {
		metric, err := kpi.ParseMetricType(*params.Metric)
		if err != nil {
			return nil, err
		}
		filter.Metric = metric
	}
	if params.From != nil {
		filter.From = *params.From
	}
	if params.To != nil {
		filter.To = *params.To
	}

	query, err := queries.NewGetKPIRecordsQuery(filter)
	if err != nil {
		return nil, err
	}
	return s.h.GetKPIRecords.Handle(ctx.Request().Context(), query)
}

func (s *Server) timeOrNow(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return s.clock.Now()
	}
	return *t
}

func (b NewSite) toAttributes() (site.Attributes, error) {
	location, err := kernel.NewGeoPoint(b.Location.Lat, b.Location.Lon)
	if err != nil {
		return site.Attributes{}, err
	}
	capacity, err := kernel.NewPositiveQuantity(*b.Capacity)
	if err != nil {
		return site.Attributes{}, err
	}
	current := kernel.ZeroQuantity
	if b.CurrentQuantity != nil {
		if current, err = kernel.NewQuantity(*b.CurrentQuantity); err != nil {
			return site.Attributes{}, err
		}
	}
	absolute := kernel.ZeroQuantity
	if b.LowStockAbsolute != nil {
		if absolute, err = kernel.NewQuantity(*b.LowStockAbsolute); err != nil {
			return site.Attributes{}, err
		}
	}
	percentage := site.DefaultLowStockPercentage
	if b.LowStockPercentage != nil {
		percentage = *b.LowStockPercentage
	}
	lowStock, err := site.NewStockLevel(absolute, percentage)
	if err != nil {
		return site.Attributes{}, err
	}
	priority, err := site.ParsePriority(b.Priority)
	if err != nil {
		return site.Attributes{}, err
	}

	return site.Attributes{
		Name:     b.Name,
		Location: location,
		Capacity: capacity,
		Current:  current,
		LowStock: lowStock,
		Priority: priority,
		SensorID: b.SensorID,
	}, nil
}

func (b NewOrder) toRequest() (order.Request, error) {
	quantity, err := kernel.NewPositiveQuantity(*b.Quantity)
	if err != nil {
		return order.Request{}, err
	}
	orderType, err := order.ParseType(b.Type)
	if err != nil {
		return order.Request{}, err
	}
	priority, err := order.ParsePriority(b.Priority)
	if err != nil {
		return order.Request{}, err
	}

	request := order.Request{
		Quantity:     quantity,
		Type:         orderType,
		Priority:     priority,
		ProductClass: b.ProductClass,
	}
	if b.WindowStart != nil && b.WindowEnd != nil {
		window, err := kernel.NewPeriod(*b.WindowStart, *b.WindowEnd)
		if err != nil {
			return order.Request{}, err
		}
		request.DeliveryWindow = &window
	}
	return request, nil
}

func (l *Location) toGeoPoint() (*kernel.GeoPoint, error) {
	if l == nil {
		return nil, nil
	}
	p, err := kernel.NewGeoPoint(l.Lat, l.Lon)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
