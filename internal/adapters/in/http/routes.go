package http

import (
	"fmt"
	"net/http"

	"replenishment/internal/core/domain/model/kernel"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// BaseURL is the prefix of every API route.
const BaseURL = "/api/v1"

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// NewEcho builds the echo instance serving the API and its documentation.
func NewEcho(s *Server, doc *openapi3.T) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = s.ErrorHandler
	e.Use(middleware.Recover())

	RegisterHandlers(e, s)
	if err := RegisterDocs(e, doc); err != nil {
		return nil, err
	}
	return e, nil
}

// serverWrapper converts echo contexts to typed parameters.
type serverWrapper struct {
	s *Server
}

// RegisterHandlers mounts every API route under BaseURL.
func RegisterHandlers(router EchoRouter, s *Server) {
	w := serverWrapper{s: s}

	router.GET(BaseURL+"/health", s.GetHealth)

	router.POST(BaseURL+"/sites", s.RegisterSite)
	router.GET(BaseURL+"/sites/low-stock", s.GetLowStockSites)
	router.POST(BaseURL+"/sites/:siteId/readings", w.withID("siteId", s.ApplySensorReading))

	router.POST(BaseURL+"/orders", s.CreateOrder)
	router.GET(BaseURL+"/orders/pending", w.GetPendingOrders)
	router.POST(BaseURL+"/orders/:orderId/approve", w.withID("orderId", s.ApproveOrder))
	router.POST(BaseURL+"/orders/:orderId/confirm", w.withID("orderId", s.ConfirmOrder))
	router.POST(BaseURL+"/orders/:orderId/plan", w.withID("orderId", s.PlanOrder))
	router.POST(BaseURL+"/orders/:orderId/cancel", w.withID("orderId", s.CancelOrder))
	router.POST(BaseURL+"/orders/:orderId/requeue", w.withID("orderId", s.RequeueOrder))

	router.POST(BaseURL+"/routes", s.BuildRoute)
	router.GET(BaseURL+"/routes/:routeId", w.withID("routeId", s.GetRoute))
	router.POST(BaseURL+"/routes/:routeId/sequence", w.withID("routeId", s.SequenceRoute))
	router.POST(BaseURL+"/routes/:routeId/activate", w.withID("routeId", s.ActivateRoute))
	router.POST(BaseURL+"/routes/:routeId/complete", w.withID("routeId", s.CompleteRoute))
	router.POST(BaseURL+"/routes/:routeId/cancel", w.withID("routeId", s.CancelRoute))
	router.POST(BaseURL+"/routes/:routeId/delay", w.withID("routeId", s.DelayRoute))
	router.POST(BaseURL+"/routes/:routeId/stops/:stopId/start", w.withStop(s.StartStop))
	router.POST(BaseURL+"/routes/:routeId/stops/:stopId/fulfill", w.withStop(s.FulfillStop))
	router.POST(BaseURL+"/routes/:routeId/stops/:stopId/issue", w.withStop(s.FlagStopIssue))

	router.POST(BaseURL+"/forecasts", s.RecordForecast)
	router.POST(BaseURL+"/kpis/recompute", s.RecomputeKPIs)
	router.GET(BaseURL+"/kpis", w.withKPIParams(s.GetKPIs))
	router.GET(BaseURL+"/kpis/export", w.withKPIParams(s.ExportKPIs))
}

func (w serverWrapper) withID(name string, next func(echo.Context, kernel.UUID) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := bindUUID(ctx, name)
		if err != nil {
			return err
		}
		return next(ctx, id)
	}
}

func (w serverWrapper) withStop(next func(echo.Context, kernel.UUID, kernel.UUID) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		routeID, err := bindUUID(ctx, "routeId")
		if err != nil {
			return err
		}
		stopID, err := bindUUID(ctx, "stopId")
		if err != nil {
			return err
		}
		return next(ctx, routeID, stopID)
	}
}

func (w serverWrapper) GetPendingOrders(ctx echo.Context) error {
	var productClass *string
	if err := runtime.BindQueryParameter("form", true, false, "productClass", ctx.QueryParams(), &productClass); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter productClass: %s", err))
	}
	return w.s.GetPendingOrders(ctx, productClass)
}

func (w serverWrapper) withKPIParams(next func(echo.Context, KPIParams) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var params KPIParams
		for name, dest := range map[string]any{
			"metric":       &params.Metric,
			"productClass": &params.ProductClass,
			"from":         &params.From,
			"to":           &params.To,
		} {
			if err := runtime.BindQueryParameter("form", true, false, name, ctx.QueryParams(), dest); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
			}
		}
		return next(ctx, params)
	}
}

func bindUUID(ctx echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}

	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid parameter %s: %s", name, err))
	}
	return parsed, nil
}

// bindAndValidate decodes the body into dest and runs the validator. An empty
// body leaves dest untouched.
func bindAndValidate(ctx echo.Context, dest any) error {
	if err := ctx.Bind(dest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return ctx.Validate(dest)
}
