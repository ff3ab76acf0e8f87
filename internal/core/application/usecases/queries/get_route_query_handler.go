package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetRouteQueryHandler struct {
	db *gorm.DB
}

func NewGetRouteQueryHandler(db *gorm.DB) GetRouteQueryHandler {
	return GetRouteQueryHandler{db: db}
}

// Handle returns ObjectNotFoundError when the route does not exist.
func (h GetRouteQueryHandler) Handle(ctx context.Context, query GetRouteQuery) (*GetRouteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	id := query.RouteID().String()

	resp, err := h.header(db, id)
	if err != nil {
		return nil, err
	}
	resp.ID = query.RouteID()

	if resp.Stops, err = h.stops(db, id); err != nil {
		return nil, err
	}
	if resp.Optimizations, err = h.optimizations(db, id); err != nil {
		return nil, err
	}

	return resp, nil
}

func (h GetRouteQueryHandler) header(db *gorm.DB, id string) (*GetRouteQueryResponse, error) {
	var resp GetRouteQueryResponse
	var routeType, status int
	var plannedDuration int64
	var actualDuration *int64
	var distancePerUnit decimal.NullDecimal

	row := db.Raw(`
		SELECT
			number, type, status, product_class, scheduled_date,
			vehicle_id, vehicle_capacity,
			planned_distance_km, planned_duration,
			actual_distance_km, actual_duration,
			total_delivered, distance_per_unit,
			degraded, degraded_reason, delay_reason,
			activated_at, completed_at, version
		FROM routes
		WHERE id = ?
	`, id).Row()
	err := row.Scan(
		&resp.Number, &routeType, &status, &resp.ProductClass, &resp.ScheduledDate,
		&resp.VehicleID, &resp.VehicleCapacity,
		&resp.PlannedDistanceKm, &plannedDuration,
		&resp.ActualDistanceKm, &actualDuration,
		&resp.TotalDelivered, &distancePerUnit,
		&resp.Degraded, &resp.DegradedReason, &resp.DelayReason,
		&resp.ActivatedAt, &resp.CompletedAt, &resp.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewObjectNotFoundError("route", id)
		}
		return nil, err
	}

	resp.Type = route.Type(routeType).String()
	resp.Status = route.Status(status).String()
	resp.PlannedDuration = time.Duration(plannedDuration)
	if actualDuration != nil {
		d := time.Duration(*actualDuration)
		resp.ActualDuration = &d
	}
	if distancePerUnit.Valid {
		resp.DistancePerUnit = &distancePerUnit.Decimal
	}
	return &resp, nil
}

func (h GetRouteQueryHandler) stops(db *gorm.DB, id string) ([]RouteStopView, error) {
	rows, err := db.Raw(`
		SELECT
			id, order_id, site_id, sequence, status, delivery_method,
			planned_quantity, delivered_quantity,
			estimated_arrival, actual_arrival, completed_at,
			has_issue, issue_description
		FROM route_stops
		WHERE route_id = ?
		ORDER BY sequence, id
	`, id).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := make([]RouteStopView, 0)
	for rows.Next() {
		var v RouteStopView
		var stopID, orderID, siteID uuid.UUID
		var status, method int
		var delivered decimal.NullDecimal

		err = rows.Scan(
			&stopID, &orderID, &siteID, &v.Sequence, &status, &method,
			&v.PlannedQuantity, &delivered,
			&v.EstimatedArrival, &v.ActualArrival, &v.CompletedAt,
			&v.HasIssue, &v.IssueDescription,
		)
		if err != nil {
			return nil, err
		}

		if v.ID, err = kernel.UUIDFromBytes(stopID[:]); err != nil {
			return nil, err
		}
		if v.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		if v.SiteID, err = kernel.UUIDFromBytes(siteID[:]); err != nil {
			return nil, err
		}
		if delivered.Valid {
			v.DeliveredQuantity = &delivered.Decimal
		}
		v.Status = route.StopStatus(status).String()
		v.DeliveryMethod = route.DeliveryMethod(method).String()
		stops = append(stops, v)
	}

	return stops, rows.Err()
}

func (h GetRouteQueryHandler) optimizations(db *gorm.DB, id string) ([]RouteOptimizationView, error) {
	rows, err := db.Raw(`
		SELECT attempt, provider, original_distance_km, optimized_distance_km,
			success, error_message, at
		FROM route_optimizations
		WHERE route_id = ?
		ORDER BY attempt
	`, id).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RouteOptimizationView, 0)
	for rows.Next() {
		var v RouteOptimizationView
		if err = rows.Scan(
			&v.Attempt, &v.Provider, &v.OriginalDistanceKm, &v.OptimizedDistanceKm,
			&v.Success, &v.ErrorMessage, &v.At,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, rows.Err()
}
