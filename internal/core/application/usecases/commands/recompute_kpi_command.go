package commands

import (
	"errors"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/pkg/guard"
)

var ErrRecomputeKPICommandIsNotConstructed = errors.New(
	"RecomputeKPICommand must be created via NewRecomputeKPICommand constructor",
)

// RecomputeKPICommand derives the KPI record of one metric class for the
// half-open period [start, end).
type RecomputeKPICommand struct { //nolint:recvcheck //using for validation
	class  kpi.MetricClass
	period kernel.Period

	guard guard.ConstructorGuard
}

func NewRecomputeKPICommand(metric kpi.MetricType, productClass string, period kernel.Period) (RecomputeKPICommand, error) {
	class, err := kpi.NewMetricClass(metric, productClass)
	if err = errors.Join(err, period.Validate()); err != nil {
		return RecomputeKPICommand{}, err
	}

	return RecomputeKPICommand{
		class:  class,
		period: period,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c RecomputeKPICommand) Validate() error {
	return c.guard.Validate(ErrRecomputeKPICommandIsNotConstructed)
}

func (c RecomputeKPICommand) Class() kpi.MetricClass { return c.class }
func (c RecomputeKPICommand) Period() kernel.Period  { return c.period }
