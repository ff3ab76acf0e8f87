package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/core/ports"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// KPIRecomputer is satisfied by commands.RecomputeKPICommandHandler.
type KPIRecomputer interface {
	Handle(ctx context.Context, cmd commands.RecomputeKPICommand) (*kpi.Record, error)
}

// KPIRecomputeJob recomputes the previous ISO week and the previous month for
// every configured metric class. Keys are recomputed concurrently; a failing
// key does not stop the others.
type KPIRecomputeJob struct {
	handler     KPIRecomputer
	classes     []kpi.MetricClass
	clock       ports.Clock
	spec        string
	concurrency int
	cron        *cron.Cron
	logger      *slog.Logger
}

func NewKPIRecomputeJob(
	handler KPIRecomputer,
	classes []kpi.MetricClass,
	clock ports.Clock,
	spec string,
	concurrency int,
	logger *slog.Logger,
) *KPIRecomputeJob {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &KPIRecomputeJob{
		handler:     handler,
		classes:     classes,
		clock:       clock,
		spec:        spec,
		concurrency: concurrency,
		cron:        cron.New(cron.WithSeconds()),
		logger:      logger.With("component", "kpi_recompute_job"),
	}
}

// MetricClasses crosses every metric type with the all-classes aggregate and
// each listed product class.
func MetricClasses(productClasses []string) []kpi.MetricClass {
	names := append([]string{""}, productClasses...)
	classes := make([]kpi.MetricClass, 0, len(names)*len(kpi.AllMetrics()))
	seen := make(map[kpi.MetricClass]struct{})
	for _, name := range names {
		for _, metric := range kpi.AllMetrics() {
			class, err := kpi.NewMetricClass(metric, name)
			if err != nil {
				continue
			}
			if _, ok := seen[class]; ok {
				continue
			}
			seen[class] = struct{}{}
			classes = append(classes, class)
		}
	}
	return classes
}

func (j *KPIRecomputeJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx := context.Background()
		if err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "KPI recompute job finished with failures", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", j.spec, err)
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "KPI recompute job started", "schedule", j.spec, "classes", len(j.classes))
	return nil
}

func (j *KPIRecomputeJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "KPI recompute job stopped")
}

// RunOnce recomputes every class for the periods preceding now and returns the
// joined errors of the keys that failed.
func (j *KPIRecomputeJob) RunOnce(ctx context.Context) error {
	now := j.clock.Now()
	periods := []kernel.Period{kpi.PreviousWeek(now), kpi.PreviousMonth(now)}

	var (
		mu       sync.Mutex
		failures []error
		done     int
	)

	var g errgroup.Group
	g.SetLimit(j.concurrency)
	for _, period := range periods {
		for _, class := range j.classes {
			g.Go(func() error {
				err := j.recompute(ctx, class, period)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures = append(failures, fmt.Errorf("%s %s: %w", class, period, err))
					return nil
				}
				done++
				return nil
			})
		}
	}
	_ = g.Wait()

	j.logger.InfoContext(ctx, "KPI recompute finished", "recomputed", done, "failed", len(failures))
	return errors.Join(failures...)
}

func (j *KPIRecomputeJob) recompute(ctx context.Context, class kpi.MetricClass, period kernel.Period) error {
	cmd, err := commands.NewRecomputeKPICommand(class.Type, class.ProductClass, period)
	if err != nil {
		return err
	}

	record, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "KPI recompute failed", "class", class.String(), "period", period.String(), "error", err)
		return err
	}

	j.logger.DebugContext(ctx, "KPI recomputed",
		"class", class.String(), "period", period.String(),
		"trend", record.Trend().String(), "sample_size", record.SampleSize())
	return nil
}
