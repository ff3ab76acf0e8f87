package queries

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetPendingOrdersQueryHandler reads undelivered orders joined with their
// site names.
//
// Example:
//
//	handler := NewGetPendingOrdersQueryHandler(db)
//	pending, err := handler.Handle(ctx, NewGetPendingOrdersQuery(""))
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d orders awaiting delivery\n", len(pending))
type GetPendingOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetPendingOrdersQueryHandler(db *gorm.DB) GetPendingOrdersQueryHandler {
	return GetPendingOrdersQueryHandler{db: db}
}

// Handle returns pending orders oldest first. Orders still awaiting approval
// are included and flagged.
func (h GetPendingOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetPendingOrdersQuery,
) ([]GetPendingOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetPendingOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.number,
			o.site_id,
			COALESCE(s.name, ''),
			o.requested_quantity,
			o.type,
			o.priority,
			o.status,
			o.product_class,
			o.requires_approval,
			o.window_start,
			o.window_end,
			o.route_id,
			o.created_at
		FROM orders o
		LEFT JOIN sites s ON s.id = o.site_id
		WHERE o.status IN ?
			AND (?::text = '' OR o.product_class = ?)
		ORDER BY o.created_at, o.id
	`, []int{int(order.Pending), int(order.Confirmed), int(order.Planned)},
		query.ProductClass(), query.ProductClass(),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetPendingOrdersQueryResponse
		var id, siteID uuid.UUID
		var routeID uuid.NullUUID
		var quantity decimal.Decimal
		var orderType, priority, status int

		err = rows.Scan(
			&id,
			&resp.Number,
			&siteID,
			&resp.SiteName,
			&quantity,
			&orderType,
			&priority,
			&status,
			&resp.ProductClass,
			&resp.RequiresApproval,
			&resp.WindowStart,
			&resp.WindowEnd,
			&routeID,
			&resp.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.SiteID, err = kernel.UUIDFromBytes(siteID[:]); err != nil {
			return nil, err
		}
		if routeID.Valid {
			rid, idErr := kernel.UUIDFromBytes(routeID.UUID[:])
			if idErr != nil {
				return nil, idErr
			}
			resp.RouteID = &rid
		}

		resp.RequestedQuantity = quantity
		resp.Type = order.Type(orderType).String()
		resp.Priority = order.Priority(priority).String()
		resp.Status = order.Status(status).String()
		resp.CreatedAt = resp.CreatedAt.UTC()
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
