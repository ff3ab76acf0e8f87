package kpirepo_test

import (
	"context"
	"testing"
	"time"

	"replenishment/internal/adapters/out/postgres/kpirepo"
	"replenishment/internal/adapters/out/postgres/pgtest"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var monday = time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)

type KPIRecordRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *pgtest.Database
	repository *kpirepo.GormKPIRecordRepository
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
	suite.repository = kpirepo.NewGormKPIRecordRepository(database.DB)
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Terminate(context.Background()))
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) TestUpsert_SameKeyOverwrites() {
	ctx := context.Background()
	class := suite.class(kpi.MetricPlanningAccuracy, "feed")
	period := suite.week(monday)

	suite.Require().NoError(suite.repository.Upsert(ctx, suite.record(class, period, 81.5, 3)))
	suite.Require().NoError(suite.repository.Upsert(ctx, suite.record(class, period, 92.25, 4)))

	var count int64
	suite.Require().NoError(suite.database.DB.Model(&kpirepo.KPIRecordDTO{}).Count(&count).Error)
	suite.Equal(int64(1), count)

	got, err := suite.repository.FindPrevious(ctx, class, suite.week(period.End()))
	suite.Require().NoError(err)
	suite.Equal(kpi.RecordID(class, period), got.ID())
	suite.Require().NotNil(got.Value())
	suite.True(got.Value().Equal(decimal.RequireFromString("92.25")))
	suite.Equal(4, got.SampleSize())
	suite.True(got.WithinTarget())
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) TestFindPrevious_LatestEndedBefore() {
	ctx := context.Background()
	class := suite.class(kpi.MetricOnTimeRate, "")
	older := suite.week(monday.AddDate(0, 0, -14))
	previous := suite.week(monday.AddDate(0, 0, -7))
	current := suite.week(monday)
	for _, p := range []kernel.Period{older, previous, current} {
		suite.Require().NoError(suite.repository.Upsert(ctx, suite.record(class, p, 90, 1)))
	}
	other := suite.class(kpi.MetricOnTimeRate, "feed")
	suite.Require().NoError(suite.repository.Upsert(ctx, suite.record(other, previous, 10, 1)))

	got, err := suite.repository.FindPrevious(ctx, class, current)

	suite.Require().NoError(err)
	suite.True(got.Period().IsEqual(previous))
	suite.Equal(class, got.Class())
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) TestFindPrevious_MatchesHorizon() {
	// Given a week and a month that both end on Monday 2026-06-01, and a
	// three day record ending there too
	ctx := context.Background()
	class := suite.class(kpi.MetricPlanningAccuracy, "feed")
	june := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	lastWeek := kpi.PreviousWeek(june)
	lastMonth := kpi.PreviousMonth(june)
	span, err := kernel.NewPeriod(june.AddDate(0, 0, -3), june)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Upsert(ctx, suite.record(class, lastWeek, 70, 1)))
	suite.Require().NoError(suite.repository.Upsert(ctx, suite.record(class, lastMonth, 80, 1)))
	suite.Require().NoError(suite.repository.Upsert(ctx, suite.record(class, span, 10, 1)))

	// When
	forMonth, monthErr := suite.repository.FindPrevious(ctx, class, kpi.MonthOf(june))
	forWeek, weekErr := suite.repository.FindPrevious(ctx, class, kpi.WeekOf(june))

	// Then
	suite.Require().NoError(monthErr)
	suite.True(forMonth.Period().IsEqual(lastMonth))
	suite.Require().NoError(weekErr)
	suite.True(forWeek.Period().IsEqual(lastWeek))
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) TestFindPrevious_OtherHorizonIsNotAPredecessor() {
	// Given only weekly history
	ctx := context.Background()
	class := suite.class(kpi.MetricOnTimeRate, "")
	suite.Require().NoError(suite.repository.Upsert(ctx, suite.record(class, suite.week(monday.AddDate(0, 0, -7)), 90, 1)))

	// When
	_, err := suite.repository.FindPrevious(ctx, class, kpi.MonthOf(monday))

	// Then
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) TestFindPrevious_NoHistory() {
	_, err := suite.repository.FindPrevious(context.Background(), suite.class(kpi.MetricDistancePerUnit, ""), suite.week(monday))

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) TestUpsert_NilValueStoredAsNull() {
	ctx := context.Background()
	class := suite.class(kpi.MetricForecastAccuracy, "feed")
	period := suite.week(monday)
	record, err := kpi.NewRecord(class, period, nil, nil, kpi.TrendStable, 0)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repository.Upsert(ctx, record))

	got, err := suite.repository.FindPrevious(ctx, class, suite.week(period.End()))
	suite.Require().NoError(err)
	suite.Nil(got.Value())
	suite.Nil(got.Target())
	suite.False(got.WithinTarget())
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) class(metric kpi.MetricType, productClass string) kpi.MetricClass {
	class, err := kpi.NewMetricClass(metric, productClass)
	suite.Require().NoError(err)
	return class
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) week(start time.Time) kernel.Period {
	p, err := kernel.NewPeriod(start, start.AddDate(0, 0, 7))
	suite.Require().NoError(err)
	return p
}

func (suite *KPIRecordRepositoryIntegrationTestSuite) record(class kpi.MetricClass, period kernel.Period, value float64, sample int) *kpi.Record {
	v := decimal.NewFromFloat(value)
	target := decimal.NewFromInt(85)
	r, err := kpi.NewRecord(class, period, &v, &target, kpi.TrendStable, sample)
	suite.Require().NoError(err)
	return r
}

func TestKPIRecordRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(KPIRecordRepositoryIntegrationTestSuite))
}
