package queries_test

import (
	"context"
	"time"

	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"

	"github.com/shopspring/decimal"
)

func (suite *QueriesIntegrationTestSuite) addRecord(metric kpi.MetricType, class string, start time.Time, days int, value float64) {
	mc, err := kpi.NewMetricClass(metric, class)
	suite.Require().NoError(err)
	period, err := kernel.NewPeriod(start, start.AddDate(0, 0, days))
	suite.Require().NoError(err)
	v := decimal.NewFromFloat(value)
	target := decimal.NewFromInt(85)
	record, err := kpi.NewRecord(mc, period, &v, &target, kpi.TrendImproving, 3)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.kpis.Upsert(context.Background(), record))
}

func (suite *QueriesIntegrationTestSuite) TestGetKPIRecords_Filters() {
	// Given
	monday := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	suite.addRecord(kpi.MetricOnTimeRate, "", monday, 7, 91)
	suite.addRecord(kpi.MetricOnTimeRate, "feed", monday, 7, 80)
	suite.addRecord(kpi.MetricPlanningAccuracy, "feed", monday, 7, 95)
	suite.addRecord(kpi.MetricOnTimeRate, "", monday.AddDate(0, 0, 7), 7, 93)
	suite.addRecord(kpi.MetricOnTimeRate, "", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 30, 90)
	handler := queries.NewGetKPIRecordsQueryHandler(suite.database.DB)

	// When
	all, err := handler.Handle(context.Background(), suite.kpiQuery(queries.KPIRecordFilter{}))
	suite.Require().NoError(err)

	aggregate := ""
	onTime, err := handler.Handle(context.Background(), suite.kpiQuery(queries.KPIRecordFilter{
		Metric:       kpi.MetricOnTimeRate,
		ProductClass: &aggregate,
		From:         monday,
		To:           monday.AddDate(0, 0, 7),
	}))
	suite.Require().NoError(err)

	// Then
	suite.Len(all, 5)
	suite.Equal("monthly", all[0].Horizon)

	suite.Require().Len(onTime, 1)
	got := onTime[0]
	suite.Equal("on_time_rate", got.MetricType)
	suite.Equal("", got.ProductClass)
	suite.Equal("weekly", got.Horizon)
	suite.True(monday.Equal(got.PeriodStart))
	suite.Require().NotNil(got.Value)
	suite.True(got.Value.Equal(decimal.NewFromInt(91)))
	suite.Equal("improving", got.Trend)
	suite.Equal(3, got.SampleSize)
	suite.True(got.WithinTarget)
}

func (suite *QueriesIntegrationTestSuite) TestNewGetKPIRecordsQuery_RejectsInvertedRange() {
	from := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)

	_, err := queries.NewGetKPIRecordsQuery(queries.KPIRecordFilter{From: from, To: from})

	suite.Require().Error(err)
}

func (suite *QueriesIntegrationTestSuite) kpiQuery(filter queries.KPIRecordFilter) queries.GetKPIRecordsQuery {
	q, err := queries.NewGetKPIRecordsQuery(filter)
	suite.Require().NoError(err)
	return q
}
