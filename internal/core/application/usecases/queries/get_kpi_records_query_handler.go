package queries

import (
	"context"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetKPIRecordsQueryHandler struct {
	db *gorm.DB
}

func NewGetKPIRecordsQueryHandler(db *gorm.DB) GetKPIRecordsQueryHandler {
	return GetKPIRecordsQueryHandler{db: db}
}

// Handle returns matching records ordered by period, metric and class.
func (h GetKPIRecordsQueryHandler) Handle(
	ctx context.Context,
	query GetKPIRecordsQuery,
) ([]GetKPIRecordsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	filter := query.Filter()
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)
	if filter.Metric != kpi.MetricUnknown {
		where = append(where, "metric_type = ?")
		args = append(args, int(filter.Metric))
	}
	if filter.ProductClass != nil {
		where = append(where, "product_class = ?")
		args = append(args, *filter.ProductClass)
	}
	if !filter.From.IsZero() {
		where = append(where, "period_start >= ?")
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		where = append(where, "period_end <= ?")
		args = append(args, filter.To.UTC())
	}

	stmt := `
		SELECT
			metric_type, product_class, period_start, period_end,
			value, target, trend, sample_size, within_target, computed_at
		FROM kpi_records`
	if len(where) > 0 {
		stmt += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	stmt += "\n\t\tORDER BY period_start, metric_type, product_class"

	rows, err := h.db.WithContext(ctx).Raw(stmt, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]GetKPIRecordsQueryResponse, 0)
	for rows.Next() {
		var resp GetKPIRecordsQueryResponse
		var metric, trend int
		var value, target decimal.NullDecimal
		var start, end time.Time

		err = rows.Scan(
			&metric, &resp.ProductClass, &start, &end,
			&value, &target, &trend, &resp.SampleSize, &resp.WithinTarget, &resp.ComputedAt,
		)
		if err != nil {
			return nil, err
		}

		period, periodErr := kernel.NewPeriod(start, end)
		if periodErr != nil {
			return nil, periodErr
		}
		resp.MetricType = kpi.MetricType(metric).String()
		resp.Horizon = kpi.HorizonOf(period).String()
		resp.PeriodStart = period.Start()
		resp.PeriodEnd = period.End()
		resp.Trend = kpi.Trend(trend).String()
		if value.Valid {
			resp.Value = &value.Decimal
		}
		if target.Valid {
			resp.Target = &target.Decimal
		}
		records = append(records, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
