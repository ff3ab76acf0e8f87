package forecastrepo_test

import (
	"context"
	"testing"
	"time"

	"replenishment/internal/adapters/out/postgres/forecastrepo"
	"replenishment/internal/adapters/out/postgres/pgtest"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type ForecastRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *pgtest.Database
	repository *forecastrepo.GormForecastRepository
	period     kernel.Period
}

func (suite *ForecastRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
	suite.repository = forecastrepo.NewGormForecastRepository(database.DB)

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	suite.period, err = kernel.NewPeriod(start, start.AddDate(0, 1, 0))
	suite.Require().NoError(err)
}

func (suite *ForecastRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
}

func (suite *ForecastRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Terminate(context.Background()))
}

func (suite *ForecastRepositoryIntegrationTestSuite) TestUpsert_ReplacesQuantity() {
	ctx := context.Background()
	recorded := time.Date(2025, 3, 28, 9, 0, 0, 0, time.UTC)

	first, err := kpi.NewForecast("feed", suite.period, kernel.MustQuantity(400), recorded)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Upsert(ctx, first))

	revised, err := kpi.NewForecast("feed", suite.period, kernel.MustQuantity(420.5), recorded.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Upsert(ctx, revised))

	got, err := suite.repository.Find(ctx, "feed", suite.period)
	suite.Require().NoError(err)
	suite.Equal(first.ID(), got.ID())
	suite.True(got.Quantity().Equal(kernel.MustQuantity(420.5)))
	suite.True(recorded.Add(time.Hour).Equal(got.RecordedAt()))
}

func (suite *ForecastRepositoryIntegrationTestSuite) TestFind_OtherClassOrPeriod_NotFound() {
	ctx := context.Background()
	f, err := kpi.NewForecast("feed", suite.period, kernel.MustQuantity(400), time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Upsert(ctx, f))

	_, err = suite.repository.Find(ctx, "grain", suite.period)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	week, err := kernel.NewPeriod(suite.period.Start(), suite.period.Start().AddDate(0, 0, 7))
	suite.Require().NoError(err)
	_, err = suite.repository.Find(ctx, "feed", week)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestForecastRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ForecastRepositoryIntegrationTestSuite))
}
