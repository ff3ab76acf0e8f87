package queries_test

import (
	"context"
	"fmt"
	"time"

	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

func (suite *QueriesIntegrationTestSuite) newRoute(stops int) *route.Route {
	suite.seq++
	specs := make([]route.StopSpec, 0, stops)
	types := make([]order.Type, 0, stops)
	for i := 0; i < stops; i++ {
		location, err := kernel.NewGeoPoint(45.45+float64(i)*0.05, -73.70)
		suite.Require().NoError(err)
		specs = append(specs, route.StopSpec{
			OrderID:  kernel.NewUUID(),
			SiteID:   kernel.NewUUID(),
			Location: location,
			Quantity: kernel.MustQuantity(10),
		})
		types = append(types, order.TypeContract)
	}

	r, err := route.NewRoute(kernel.NewUUID(), fmt.Sprintf("RT-%06d", suite.seq), route.Header{
		ScheduledDate:          now,
		Vehicle:                route.Vehicle{ID: "TRK-7", Capacity: kernel.MustQuantity(38)},
		ProductClass:           "feed",
		PlanningAccuracyTarget: decimal.NewFromInt(90),
	}, specs, types, now)
	suite.Require().NoError(err)
	return r
}

func (suite *QueriesIntegrationTestSuite) TestGetRoute_ReturnsStopsInSequence() {
	// Given
	ctx := context.Background()
	r := suite.newRoute(2)
	err := r.ApplySequence(route.Sequence{
		Order:           []int{1, 0},
		TotalDistanceKm: 12,
		TotalDuration:   30 * time.Minute,
		LegDistancesKm:  []float64{5, 7},
		LegDurations:    []time.Duration{10 * time.Minute, 20 * time.Minute},
	}, route.Optimization{Provider: "ors", OriginalDistanceKm: 15, OptimizedDistanceKm: 12, Success: true, At: now}, "")
	suite.Require().NoError(err)
	suite.Require().NoError(r.Activate(now))
	_, _, err = r.FulfillStop(r.Stops()[0].ID(), kernel.MustQuantity(9.5), route.DefaultFulfillmentRules(), now.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.routes.Add(ctx, r))

	query, err := queries.NewGetRouteQuery(r.ID())
	suite.Require().NoError(err)

	// When
	result, err := queries.NewGetRouteQueryHandler(suite.database.DB).Handle(ctx, query)

	// Then
	suite.Require().NoError(err)
	suite.Equal(r.ID(), result.ID)
	suite.Equal(r.Number(), result.Number)
	suite.Equal("active", result.Status)
	suite.Equal("contract", result.Type)
	suite.Equal("TRK-7", result.VehicleID)
	suite.InDelta(12.0, result.PlannedDistanceKm, 1e-9)
	suite.Equal(30*time.Minute, result.PlannedDuration)
	suite.True(result.TotalDelivered.Equal(decimal.RequireFromString("9.5")))

	suite.Require().Len(result.Stops, 2)
	suite.Equal(1, result.Stops[0].Sequence)
	suite.Equal(2, result.Stops[1].Sequence)
	suite.Equal(r.Stops()[0].OrderID(), result.Stops[0].OrderID)
	suite.Equal("completed", result.Stops[0].Status)
	suite.Require().NotNil(result.Stops[0].DeliveredQuantity)
	suite.True(result.Stops[0].DeliveredQuantity.Equal(decimal.RequireFromString("9.5")))
	suite.Equal("pending", result.Stops[1].Status)
	suite.Nil(result.Stops[1].DeliveredQuantity)

	suite.Require().Len(result.Optimizations, 1)
	suite.Equal("ors", result.Optimizations[0].Provider)
	suite.True(result.Optimizations[0].Success)
}

func (suite *QueriesIntegrationTestSuite) TestGetRoute_NotFound() {
	query, err := queries.NewGetRouteQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = queries.NewGetRouteQueryHandler(suite.database.DB).Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}
