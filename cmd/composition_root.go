package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpapi "replenishment/internal/adapters/in/http"
	kafkain "replenishment/internal/adapters/in/kafka"
	"replenishment/internal/adapters/out/excel"
	"replenishment/internal/adapters/out/geometry"
	kafkaout "replenishment/internal/adapters/out/kafka"
	"replenishment/internal/adapters/out/locking"
	"replenishment/internal/adapters/out/postgres"
	redisadapter "replenishment/internal/adapters/out/redis"
	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/domain/model/site"
	"replenishment/internal/core/domain/services"
	"replenishment/internal/core/ports"
	"replenishment/internal/jobs"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters, domain services and use cases from Config.
type CompositionRoot struct {
	cfg    Config
	gormDB *gorm.DB
	logger *slog.Logger
	clock  ports.Clock

	uowFactory *postgres.GormUnitOfWorkFactory
	publisher  *kafkaout.EventPublisher
	rdb        *redis.Client
	locker     ports.Locker
	numbers    ports.NumberGenerator
	sequencer  *services.RouteSequencer

	approval    order.ApprovalPolicy
	fulfillment route.FulfillmentRules
	calculator  services.KPICalculator
	emergency   site.StockLevel
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:     cfg,
		gormDB:  gormDB,
		logger:  logger,
		clock:   ports.ClockFunc(func() time.Time { return time.Now().UTC() }),
		numbers: postgres.NewSequenceNumberGenerator(gormDB),
	}

	var publisher ports.EventPublisher
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaEventsTopic != "" {
		c.publisher = kafkaout.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic, 0)
		publisher = c.publisher
	}
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, publisher, logger)

	if cfg.RedisAddr != "" {
		c.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		c.locker = redisadapter.NewLocker(c.rdb, cfg.LockTTL, cfg.LockWait)
	} else {
		logger.Warn("REDIS_ADDR is empty, locks are local to this process")
		c.locker = locking.NewMemoryLocker(cfg.LockWait)
	}

	if err := errors.Join(c.buildPolicies(), c.buildSequencer()); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CompositionRoot) buildPolicies() error {
	threshold, err := kernel.NewPositiveQuantity(c.cfg.LargeOrderThreshold)
	if err != nil {
		return fmt.Errorf("large order threshold: %w", err)
	}
	c.approval = order.NewApprovalPolicy(threshold)

	repeat, err := route.ParseRepeatPolicy(c.cfg.RepeatFulfillmentPolicy)
	if err != nil {
		return err
	}
	if c.fulfillment, err = route.NewFulfillmentRules(c.cfg.OverageTolerancePct, repeat); err != nil {
		return err
	}

	band, err := kpi.NewTrendBand(c.cfg.TrendTolerancePct)
	if err != nil {
		return err
	}
	targets := kpi.NewTargets(map[kpi.TargetKey]decimal.Decimal{
		{Metric: kpi.MetricForecastAccuracy, Horizon: kpi.HorizonWeekly}:  c.cfg.ForecastTargetWeekly,
		{Metric: kpi.MetricForecastAccuracy, Horizon: kpi.HorizonMonthly}: c.cfg.ForecastTargetMonthly,
		{Metric: kpi.MetricPlanningAccuracy, Horizon: kpi.HorizonWeekly}:  c.cfg.PlanningAccuracyTarget,
		{Metric: kpi.MetricPlanningAccuracy, Horizon: kpi.HorizonMonthly}: c.cfg.PlanningAccuracyTarget,
	})
	c.calculator = services.NewKPICalculator(targets, band, c.cfg.OnTimeBuffer)

	absolute, err := kernel.NewQuantity(c.cfg.EmergencyAbsolute)
	if err != nil {
		return fmt.Errorf("emergency level: %w", err)
	}
	c.emergency, err = site.NewStockLevel(absolute, c.cfg.EmergencyPct)
	return err
}

// buildSequencer chains ORS, the Redis geometry cache and the latitude
// fallback. Without an API key every route is sequenced by the fallback.
func (c *CompositionRoot) buildSequencer() error {
	fallback, err := services.NewLatitudeSequencer(c.cfg.FallbackSpeedKmh)
	if err != nil {
		return err
	}

	var provider ports.RouteGeometryProvider
	if c.cfg.GeometryAPIKey != "" {
		ors, err := geometry.NewORSProvider(geometry.Config{
			APIKey:            c.cfg.GeometryAPIKey,
			BaseURL:           c.cfg.GeometryBaseURL,
			Profile:           c.cfg.GeometryProfile,
			Timeout:           c.cfg.GeometryTimeout,
			RequestsPerSecond: c.cfg.GeometryRPS,
		})
		if err != nil {
			return err
		}
		provider = ors
		if c.rdb != nil {
			provider = redisadapter.NewGeometryCache(ors, c.rdb, c.cfg.GeometryCacheTTL, c.logger)
		}
	}

	c.sequencer = services.NewRouteSequencer(provider, fallback, c.cfg.GeometryTimeout, c.clock, c.logger)
	return nil
}

// Close releases the connections opened by the root.
func (c *CompositionRoot) Close() error {
	var errs []error
	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}
	if c.rdb != nil {
		errs = append(errs, c.rdb.Close())
	}
	return errors.Join(errs...)
}

func (c *CompositionRoot) siteUoWFactory() commands.SiteUoWFactory {
	return FuncSiteUoWFactory(func() commands.SiteUoW { return c.uowFactory.Create() })
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW { return c.uowFactory.Create() })
}

func (c *CompositionRoot) routeUoWFactory() commands.RouteUoWFactory {
	return FuncRouteUoWFactory(func() commands.RouteUoW { return c.uowFactory.Create() })
}

func (c *CompositionRoot) kpiUoWFactory() commands.KPIUoWFactory {
	return FuncKPIUoWFactory(func() commands.KPIUoW { return c.uowFactory.Create() })
}

func (c *CompositionRoot) CreateRegisterSiteCommandHandler() commands.RegisterSiteCommandHandler {
	return commands.NewRegisterSiteCommandHandler(c.siteUoWFactory())
}

func (c *CompositionRoot) CreateApplySensorReadingCommandHandler() commands.ApplySensorReadingCommandHandler {
	return commands.NewApplySensorReadingCommandHandler(c.siteUoWFactory(), c.locker)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.locker, c.numbers, c.approval, c.clock)
}

func (c *CompositionRoot) CreateApproveOrderCommandHandler() commands.ApproveOrderCommandHandler {
	return commands.NewApproveOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateConfirmOrderCommandHandler() commands.ConfirmOrderCommandHandler {
	return commands.NewConfirmOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreatePlanOrderCommandHandler() commands.PlanOrderCommandHandler {
	return commands.NewPlanOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.routeUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateRequeueOrderCommandHandler() commands.RequeueOrderCommandHandler {
	return commands.NewRequeueOrderCommandHandler(c.routeUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateBuildRouteCommandHandler() commands.BuildRouteCommandHandler {
	return commands.NewBuildRouteCommandHandler(
		c.routeUoWFactory(), services.NewGreedyFirstFit(), c.sequencer, c.numbers, c.clock, c.cfg.PlanningAccuracyTarget,
	)
}

func (c *CompositionRoot) CreateSequenceRouteCommandHandler() commands.SequenceRouteCommandHandler {
	return commands.NewSequenceRouteCommandHandler(c.routeUoWFactory(), c.sequencer)
}

func (c *CompositionRoot) CreateActivateRouteCommandHandler() commands.ActivateRouteCommandHandler {
	return commands.NewActivateRouteCommandHandler(c.routeUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateCompleteRouteCommandHandler() commands.CompleteRouteCommandHandler {
	return commands.NewCompleteRouteCommandHandler(c.routeUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateCancelRouteCommandHandler() commands.CancelRouteCommandHandler {
	return commands.NewCancelRouteCommandHandler(c.routeUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateDelayRouteCommandHandler() commands.DelayRouteCommandHandler {
	return commands.NewDelayRouteCommandHandler(c.routeUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateStartStopCommandHandler() commands.StartStopCommandHandler {
	return commands.NewStartStopCommandHandler(c.routeUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateFulfillStopCommandHandler() commands.FulfillStopCommandHandler {
	return commands.NewFulfillStopCommandHandler(c.routeUoWFactory(), c.locker, c.fulfillment, c.clock)
}

func (c *CompositionRoot) CreateFlagStopIssueCommandHandler() commands.FlagStopIssueCommandHandler {
	return commands.NewFlagStopIssueCommandHandler(c.routeUoWFactory())
}

func (c *CompositionRoot) CreateRecordForecastCommandHandler() commands.RecordForecastCommandHandler {
	return commands.NewRecordForecastCommandHandler(c.kpiUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateRecomputeKPICommandHandler() commands.RecomputeKPICommandHandler {
	return commands.NewRecomputeKPICommandHandler(c.kpiUoWFactory(), c.locker, c.calculator)
}

func (c *CompositionRoot) CreateGetPendingOrdersQueryHandler() queries.GetPendingOrdersQueryHandler {
	return queries.NewGetPendingOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetLowStockSitesQueryHandler() queries.GetLowStockSitesQueryHandler {
	return queries.NewGetLowStockSitesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRouteQueryHandler() queries.GetRouteQueryHandler {
	return queries.NewGetRouteQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetKPIRecordsQueryHandler() queries.GetKPIRecordsQueryHandler {
	return queries.NewGetKPIRecordsQueryHandler(c.gormDB)
}

// CreateHTTPServer builds the API server over every use case.
func (c *CompositionRoot) CreateHTTPServer() *httpapi.Server {
	return httpapi.NewServer(httpapi.Handlers{
		RegisterSite:       c.CreateRegisterSiteCommandHandler(),
		ApplySensorReading: c.CreateApplySensorReadingCommandHandler(),
		CreateOrder:        c.CreateCreateOrderCommandHandler(),
		ApproveOrder:       c.CreateApproveOrderCommandHandler(),
		ConfirmOrder:       c.CreateConfirmOrderCommandHandler(),
		PlanOrder:          c.CreatePlanOrderCommandHandler(),
		CancelOrder:        c.CreateCancelOrderCommandHandler(),
		RequeueOrder:       c.CreateRequeueOrderCommandHandler(),
		BuildRoute:         c.CreateBuildRouteCommandHandler(),
		SequenceRoute:      c.CreateSequenceRouteCommandHandler(),
		ActivateRoute:      c.CreateActivateRouteCommandHandler(),
		CompleteRoute:      c.CreateCompleteRouteCommandHandler(),
		CancelRoute:        c.CreateCancelRouteCommandHandler(),
		DelayRoute:         c.CreateDelayRouteCommandHandler(),
		StartStop:          c.CreateStartStopCommandHandler(),
		FulfillStop:        c.CreateFulfillStopCommandHandler(),
		FlagStopIssue:      c.CreateFlagStopIssueCommandHandler(),
		RecordForecast:     c.CreateRecordForecastCommandHandler(),
		RecomputeKPI:       c.CreateRecomputeKPICommandHandler(),
		GetPendingOrders:   c.CreateGetPendingOrdersQueryHandler(),
		GetLowStockSites:   c.CreateGetLowStockSitesQueryHandler(),
		GetRoute:           c.CreateGetRouteQueryHandler(),
		GetKPIRecords:      c.CreateGetKPIRecordsQueryHandler(),
	}, excel.NewKPIExporter(), c.clock, c.logger)
}

// CreateSensorConsumer returns nil when no broker is configured.
func (c *CompositionRoot) CreateSensorConsumer() *kafkain.SensorConsumer {
	if len(c.cfg.KafkaBrokers) == 0 || c.cfg.KafkaSensorTopic == "" {
		return nil
	}
	return kafkain.NewSensorConsumer(kafkain.ConsumerConfig{
		Brokers: c.cfg.KafkaBrokers,
		Topic:   c.cfg.KafkaSensorTopic,
		GroupID: c.cfg.KafkaConsumerGroup,
	}, c.CreateApplySensorReadingCommandHandler(), c.logger)
}

func (c *CompositionRoot) CreateKPIRecomputeJob() *jobs.KPIRecomputeJob {
	return jobs.NewKPIRecomputeJob(
		c.CreateRecomputeKPICommandHandler(),
		jobs.MetricClasses(c.cfg.ProductClasses),
		c.clock,
		c.cfg.KPIRecomputeSpec,
		c.cfg.KPIRecomputeWorkers,
		c.logger,
	)
}

func (c *CompositionRoot) CreateProactiveReplenishmentJob() *jobs.ProactiveReplenishmentJob {
	return jobs.NewProactiveReplenishmentJob(
		c.CreateGetLowStockSitesQueryHandler(),
		c.CreateCreateOrderCommandHandler(),
		c.emergency,
		c.cfg.ProactiveProductClass,
		c.cfg.ProactiveSpec,
		c.logger,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateKPIRecomputeJob(), c.CreateProactiveReplenishmentJob())
}

type FuncSiteUoWFactory func() commands.SiteUoW

func (f FuncSiteUoWFactory) Create() commands.SiteUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncRouteUoWFactory func() commands.RouteUoW

func (f FuncRouteUoWFactory) Create() commands.RouteUoW {
	return f()
}

type FuncKPIUoWFactory func() commands.KPIUoW

func (f FuncKPIUoWFactory) Create() commands.KPIUoW {
	return f()
}
