package queries_test

import (
	"context"
	"time"

	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/site"
)

func (suite *QueriesIntegrationTestSuite) TestGetPendingOrders_EmptyDatabase() {
	handler := queries.NewGetPendingOrdersQueryHandler(suite.database.DB)

	result, err := handler.Handle(context.Background(), queries.NewGetPendingOrdersQuery(""))

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *QueriesIntegrationTestSuite) TestGetPendingOrders_ExcludesTerminalOrders() {
	// Given
	s := suite.addSite("North", 100, 30, site.PriorityMedium)
	first := suite.newOrder(s, 10, order.TypeContract, "feed", now)
	second := suite.newOrder(s, 5, order.TypeOnDemand, "feed", now.Add(time.Minute))
	suite.Require().NoError(second.Confirm(now))
	cancelled := suite.newOrder(s, 5, order.TypeContract, "feed", now)
	suite.Require().NoError(cancelled.Cancel(now))
	emergency := suite.newOrder(s, 20, order.TypeEmergency, "feed", now.Add(2*time.Minute))
	for _, o := range []*order.Order{second, cancelled, first, emergency} {
		suite.addOrder(o)
	}

	// When
	handler := queries.NewGetPendingOrdersQueryHandler(suite.database.DB)
	result, err := handler.Handle(context.Background(), queries.NewGetPendingOrdersQuery(""))

	// Then
	suite.Require().NoError(err)
	suite.Require().Len(result, 3)
	suite.Equal(first.ID(), result[0].ID)
	suite.Equal(second.ID(), result[1].ID)
	suite.Equal(emergency.ID(), result[2].ID)

	suite.Equal("North", result[0].SiteName)
	suite.Equal(s.ID(), result[0].SiteID)
	suite.Equal("pending", result[0].Status)
	suite.Equal("contract", result[0].Type)
	suite.True(result[0].RequestedQuantity.Equal(kernel.MustQuantity(10).Decimal()))
	suite.Equal("confirmed", result[1].Status)
	suite.True(result[2].RequiresApproval)
	suite.Nil(result[0].RouteID)
}

func (suite *QueriesIntegrationTestSuite) TestGetPendingOrders_FiltersByProductClass() {
	s := suite.addSite("South", 100, 30, site.PriorityLow)
	feed := suite.newOrder(s, 10, order.TypeContract, "feed", now)
	grain := suite.newOrder(s, 10, order.TypeContract, "grain", now)
	suite.addOrder(feed)
	suite.addOrder(grain)

	handler := queries.NewGetPendingOrdersQueryHandler(suite.database.DB)
	result, err := handler.Handle(context.Background(), queries.NewGetPendingOrdersQuery(" grain "))

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(grain.ID(), result[0].ID)
}

func (suite *QueriesIntegrationTestSuite) TestGetPendingOrders_InvalidQuery() {
	handler := queries.NewGetPendingOrdersQueryHandler(suite.database.DB)

	result, err := handler.Handle(context.Background(), queries.GetPendingOrdersQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetPendingOrdersQueryIsNotConstructed)
	suite.Nil(result)
}

func (suite *QueriesIntegrationTestSuite) TestGetPendingOrders_CancelledContext() {
	s := suite.addSite("East", 100, 30, site.PriorityLow)
	suite.addOrder(suite.newOrder(s, 10, order.TypeContract, "feed", now))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handler := queries.NewGetPendingOrdersQueryHandler(suite.database.DB)
	result, err := handler.Handle(ctx, queries.NewGetPendingOrdersQuery(""))

	suite.Require().Error(err)
	suite.Nil(result)
}
