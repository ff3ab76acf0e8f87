package queries

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/site"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetLowStockSitesQueryHandler struct {
	db *gorm.DB
}

func NewGetLowStockSitesQueryHandler(db *gorm.DB) GetLowStockSitesQueryHandler {
	return GetLowStockSitesQueryHandler{db: db}
}

// Handle returns low-stock sites, highest priority first, then emptiest first.
// The threshold test matches site.StockLevel: at or below the absolute limit
// or at or below the percentage of capacity.
func (h GetLowStockSitesQueryHandler) Handle(
	ctx context.Context,
	query GetLowStockSitesQuery,
) ([]GetLowStockSitesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sites := make([]GetLowStockSitesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			s.id,
			s.name,
			s.sensor_id,
			s.priority,
			s.capacity,
			s.current_quantity,
			s.connected,
			(
				SELECT COUNT(*) FROM orders o
				WHERE o.site_id = s.id AND o.status IN ?
			) AS open_orders
		FROM (
			SELECT *,
				CASE WHEN capacity = 0 THEN 0
					ELSE ROUND(current_quantity * 100 / capacity, 2)
				END AS pct
			FROM sites
		) s
		WHERE s.current_quantity <= s.low_stock_absolute
			OR s.pct <= s.low_stock_percentage
		ORDER BY s.priority DESC, s.pct, s.id
	`, []int{int(order.Pending), int(order.Confirmed), int(order.Planned), int(order.InTransit)}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetLowStockSitesQueryResponse
		var id uuid.UUID
		var priority int
		var capacity, current decimal.Decimal

		err = rows.Scan(
			&id,
			&resp.Name,
			&resp.SensorID,
			&priority,
			&capacity,
			&current,
			&resp.Connected,
			&resp.OpenOrders,
		)
		if err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.Capacity, err = kernel.NewQuantity(capacity); err != nil {
			return nil, err
		}
		if resp.CurrentQuantity, err = kernel.NewQuantity(current); err != nil {
			return nil, err
		}
		resp.Priority = site.Priority(priority).String()
		resp.PercentageRemaining = resp.CurrentQuantity.PercentOf(resp.Capacity)
		sites = append(sites, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sites, nil
}
