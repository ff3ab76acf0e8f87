package queries

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetKPIRecordsQueryIsNotConstructed = errors.New(
		"GetKPIRecordsQuery must be created via NewGetKPIRecordsQuery constructor",
	)
)

// KPIRecordFilter narrows the listing. Zero values mean "any": MetricUnknown
// matches every metric, a nil ProductClass every class (an empty string is
// the all-classes aggregate), zero From/To leave the range open.
type KPIRecordFilter struct {
	Metric       kpi.MetricType
	ProductClass *string
	From         time.Time
	To           time.Time
}

// GetKPIRecordsQuery lists stored KPI records whose period lies inside
// [From, To).
type GetKPIRecordsQuery struct {
	filter KPIRecordFilter

	guard guard.ConstructorGuard
}

func NewGetKPIRecordsQuery(filter KPIRecordFilter) (GetKPIRecordsQuery, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.To.After(filter.From) {
		return GetKPIRecordsQuery{}, errs.NewValueIsInvalidErrorWithCause("to", fmt.Errorf("%s is not after %s", filter.To, filter.From))
	}
	if filter.ProductClass != nil {
		class := strings.TrimSpace(*filter.ProductClass)
		filter.ProductClass = &class
	}
	return GetKPIRecordsQuery{
		filter: filter,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q GetKPIRecordsQuery) Validate() error {
	return q.guard.Validate(ErrGetKPIRecordsQueryIsNotConstructed)
}

func (q GetKPIRecordsQuery) Filter() KPIRecordFilter { return q.filter }

type GetKPIRecordsQueryResponse struct {
	MetricType   string
	ProductClass string
	Horizon      string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Value        *decimal.Decimal
	Target       *decimal.Decimal
	Trend        string
	SampleSize   int
	WithinTarget bool
	ComputedAt   time.Time
}
