package commands_test

import (
	"context"
	"testing"
	"time"

	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/domain/model/site"
	"replenishment/internal/core/domain/services"
	"replenishment/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 4, 14, 8, 0, 0, 0, time.UTC)

var clock = ports.ClockFunc(func() time.Time { return now })

type MockSiteRepository struct{ mock.Mock }

func (m *MockSiteRepository) Add(ctx context.Context, s *site.Site) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSiteRepository) Update(ctx context.Context, s *site.Site) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSiteRepository) Get(ctx context.Context, id kernel.UUID) (*site.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*site.Site), args.Error(1)
}

func (m *MockSiteRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*site.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*site.Site), args.Error(1)
}

func (m *MockSiteRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*site.Site, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*site.Site), args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindPlanningCandidates(ctx context.Context, productClass string) ([]*order.Order, error) {
	args := m.Called(ctx, productClass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockRouteRepository struct{ mock.Mock }

func (m *MockRouteRepository) Add(ctx context.Context, r *route.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) Update(ctx context.Context, r *route.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) FindUnfinishedByOrder(ctx context.Context, orderID kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) FindCompleted(ctx context.Context, period kernel.Period, productClass string) ([]*route.Route, error) {
	args := m.Called(ctx, period, productClass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*route.Route), args.Error(1)
}

type MockKPIRecordRepository struct{ mock.Mock }

func (m *MockKPIRecordRepository) Upsert(ctx context.Context, record *kpi.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockKPIRecordRepository) FindPrevious(ctx context.Context, class kpi.MetricClass, period kernel.Period) (*kpi.Record, error) {
	args := m.Called(ctx, class, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kpi.Record), args.Error(1)
}

type MockForecastRepository struct{ mock.Mock }

func (m *MockForecastRepository) Upsert(ctx context.Context, forecast *kpi.Forecast) error {
	args := m.Called(ctx, forecast)
	return args.Error(0)
}

func (m *MockForecastRepository) Find(ctx context.Context, productClass string, period kernel.Period) (*kpi.Forecast, error) {
	args := m.Called(ctx, productClass, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kpi.Forecast), args.Error(1)
}

// MockUoW satisfies every unit of work interface of the commands package.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) SiteRepository() ports.SiteRepository {
	args := m.Called()
	return args.Get(0).(ports.SiteRepository)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) RouteRepository() ports.RouteRepository {
	args := m.Called()
	return args.Get(0).(ports.RouteRepository)
}

func (m *MockUoW) KPIRecordRepository() ports.KPIRecordRepository {
	args := m.Called()
	return args.Get(0).(ports.KPIRecordRepository)
}

func (m *MockUoW) ForecastRepository() ports.ForecastRepository {
	args := m.Called()
	return args.Get(0).(ports.ForecastRepository)
}

type MockSiteUoWFactory struct{ mock.Mock }

func (m *MockSiteUoWFactory) Create() commands.SiteUoW {
	args := m.Called()
	return args.Get(0).(commands.SiteUoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockRouteUoWFactory struct{ mock.Mock }

func (m *MockRouteUoWFactory) Create() commands.RouteUoW {
	args := m.Called()
	return args.Get(0).(commands.RouteUoW)
}

type MockKPIUoWFactory struct{ mock.Mock }

func (m *MockKPIUoWFactory) Create() commands.KPIUoW {
	args := m.Called()
	return args.Get(0).(commands.KPIUoW)
}

// MockLocker records acquired keys and counts releases.
type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) Acquire(ctx context.Context, key string) (ports.Release, error) {
	args := m.Called(ctx, key)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		m.released++
		return nil
	}, nil
}

type MockNumberGenerator struct{ mock.Mock }

func (m *MockNumberGenerator) Next(ctx context.Context, sequence string) (string, error) {
	args := m.Called(ctx, sequence)
	return args.String(0), args.Error(1)
}

type MockStopSequencer struct{ mock.Mock }

func (m *MockStopSequencer) Sequence(ctx context.Context, r *route.Route) (services.SequenceOutcome, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(services.SequenceOutcome), args.Error(1)
}

func testSite(t *testing.T, capacity, current float64) *site.Site {
	t.Helper()
	location, err := kernel.NewGeoPoint(45.4, -72.7)
	require.NoError(t, err)
	s, err := site.NewSite(kernel.NewUUID(), site.Attributes{
		Name:     "North silo",
		Location: location,
		Capacity: kernel.MustQuantity(capacity),
		Current:  kernel.MustQuantity(current),
		LowStock: site.MustStockLevel(2, 20),
		Priority: site.PriorityMedium,
		SensorID: "S-1",
	})
	require.NoError(t, err)
	return s
}

var policy = order.NewApprovalPolicy(kernel.MustQuantity(25))

func pendingOrder(t *testing.T, s *site.Site, quantity float64, orderType order.Type) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "ORD-000001", s, order.Request{
		Quantity:     kernel.MustQuantity(quantity),
		Type:         orderType,
		Priority:     order.PriorityMedium,
		ProductClass: "feed",
	}, policy, now)
	require.NoError(t, err)
	return o
}

func confirmedOrder(t *testing.T, s *site.Site, quantity float64) *order.Order {
	t.Helper()
	o := pendingOrder(t, s, quantity, order.TypeContract)
	require.NoError(t, o.Confirm(now))
	return o
}

// routeFor builds a route over orders at their sites. When active is true the
// route is sequenced, activated and the orders assigned to it.
func routeFor(t *testing.T, active bool, pairs ...services.Candidate) *route.Route {
	t.Helper()
	specs := make([]route.StopSpec, 0, len(pairs))
	types := make([]order.Type, 0, len(pairs))
	perm := make([]int, 0, len(pairs))
	for i, c := range pairs {
		specs = append(specs, route.StopSpec{
			OrderID:  c.Order.ID(),
			SiteID:   c.Site.ID(),
			Location: c.Site.Location(),
			Quantity: c.Order.RequestedQuantity(),
		})
		types = append(types, c.Order.Type())
		perm = append(perm, i)
	}
	r, err := route.NewRoute(kernel.NewUUID(), "RT-000001", route.Header{
		ScheduledDate:          now,
		Vehicle:                route.Vehicle{ID: "TRK-1", Capacity: kernel.MustQuantity(38)},
		ProductClass:           "feed",
		PlanningAccuracyTarget: decimal.NewFromInt(90),
	}, specs, types, now)
	require.NoError(t, err)
	for _, c := range pairs {
		require.NoError(t, c.Order.AssignToRoute(r.ID(), now))
	}
	if active {
		require.NoError(t, r.ApplySequence(route.Sequence{Order: perm}, route.Optimization{Provider: "test", Success: true, At: now}, ""))
		require.NoError(t, r.Activate(now))
	}
	return r
}
