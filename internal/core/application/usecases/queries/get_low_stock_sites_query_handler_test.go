package queries_test

import (
	"context"

	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/site"

	"github.com/shopspring/decimal"
)

func (suite *QueriesIntegrationTestSuite) TestGetLowStockSites_ThresholdsAndOrdering() {
	// Given
	a := suite.addSite("A", 100, 10, site.PriorityHigh)
	suite.addSite("B", 100, 50, site.PriorityHigh)
	c := suite.addSite("C", 20, 4, site.PriorityLow)
	d := suite.addSite("D", 100, 15, site.PriorityHigh)

	suite.addOrder(suite.newOrder(a, 40, order.TypeContract, "feed", now))
	cancelled := suite.newOrder(a, 40, order.TypeContract, "feed", now)
	suite.Require().NoError(cancelled.Cancel(now))
	suite.addOrder(cancelled)

	// When
	handler := queries.NewGetLowStockSitesQueryHandler(suite.database.DB)
	result, err := handler.Handle(context.Background(), queries.NewGetLowStockSitesQuery())

	// Then
	suite.Require().NoError(err)
	suite.Require().Len(result, 3)
	suite.Equal(a.ID(), result[0].ID)
	suite.Equal(d.ID(), result[1].ID)
	suite.Equal(c.ID(), result[2].ID)

	suite.Equal(1, result[0].OpenOrders)
	suite.Equal(0, result[1].OpenOrders)
	suite.Equal("high", result[0].Priority)
	suite.Equal("S-A", result[0].SensorID)
	suite.True(result[0].PercentageRemaining.Equal(decimal.NewFromInt(10)))
	suite.True(result[2].CurrentQuantity.Equal(kernel.MustQuantity(4)))
}

func (suite *QueriesIntegrationTestSuite) TestGetLowStockSites_MatchesDomainRule() {
	sites := []*site.Site{
		suite.addSite("edge-pct", 100, 20, site.PriorityMedium),
		suite.addSite("edge-abs", 10, 5, site.PriorityMedium),
		suite.addSite("above", 100, 20.01, site.PriorityMedium),
	}

	handler := queries.NewGetLowStockSitesQueryHandler(suite.database.DB)
	result, err := handler.Handle(context.Background(), queries.NewGetLowStockSitesQuery())
	suite.Require().NoError(err)

	found := make(map[kernel.UUID]bool, len(result))
	for _, r := range result {
		found[r.ID] = true
	}
	for _, s := range sites {
		suite.Equal(s.IsLowStock(), found[s.ID()], s.Name())
	}
}

func (suite *QueriesIntegrationTestSuite) TestGetLowStockSites_InvalidQuery() {
	handler := queries.NewGetLowStockSitesQueryHandler(suite.database.DB)

	_, err := handler.Handle(context.Background(), queries.GetLowStockSitesQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetLowStockSitesQueryIsNotConstructed)
}
