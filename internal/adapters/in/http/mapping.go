package http

import (
	"time"

	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/kpi"
	"replenishment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func toOrder(o *order.Order) Order {
	return Order{
		ID:               o.ID().Bytes(),
		Number:           o.Number(),
		SiteID:           o.SiteID().Bytes(),
		Quantity:         o.RequestedQuantity().Float64(),
		Type:             o.Type().String(),
		Priority:         o.Priority().String(),
		Status:           o.Status().String(),
		ProductClass:     o.ProductClass(),
		RequiresApproval: o.RequiresApproval(),
		CreatedAt:        o.CreatedAt(),
	}
}

func toRoute(r *queries.GetRouteQueryResponse) Route {
	response := Route{
		ID:                     r.ID.Bytes(),
		Number:                 r.Number,
		Type:                   r.Type,
		Status:                 r.Status,
		ProductClass:           r.ProductClass,
		ScheduledDate:          r.ScheduledDate,
		VehicleID:              r.VehicleID,
		VehicleCapacity:        r.VehicleCapacity.InexactFloat64(),
		PlannedDistanceKm:      r.PlannedDistanceKm,
		PlannedDurationMinutes: r.PlannedDuration.Minutes(),
		ActualDistanceKm:       r.ActualDistanceKm,
		TotalDelivered:         r.TotalDelivered.InexactFloat64(),
		DistancePerUnit:        floatPtr(r.DistancePerUnit),
		Degraded:               r.Degraded,
		DegradedReason:         r.DegradedReason,
		DelayReason:            r.DelayReason,
		ActivatedAt:            r.ActivatedAt,
		CompletedAt:            r.CompletedAt,
		Version:                r.Version,
		Stops:                  make([]Stop, len(r.Stops)),
		Optimizations:          make([]Optimization, len(r.Optimizations)),
	}
	if r.ActualDuration != nil {
		minutes := r.ActualDuration.Minutes()
		response.ActualDurationMinutes = &minutes
	}

	for i, st := range r.Stops {
		response.Stops[i] = Stop{
			ID:                st.ID.Bytes(),
			OrderID:           st.OrderID.Bytes(),
			SiteID:            st.SiteID.Bytes(),
			Sequence:          st.Sequence,
			Status:            st.Status,
			DeliveryMethod:    st.DeliveryMethod,
			PlannedQuantity:   st.PlannedQuantity.InexactFloat64(),
			DeliveredQuantity: floatPtr(st.DeliveredQuantity),
			EstimatedArrival:  st.EstimatedArrival,
			ActualArrival:     st.ActualArrival,
			CompletedAt:       st.CompletedAt,
			HasIssue:          st.HasIssue,
			IssueDescription:  st.IssueDescription,
		}
	}
	for i, o := range r.Optimizations {
		response.Optimizations[i] = Optimization{
			Attempt:             o.Attempt,
			Provider:            o.Provider,
			OriginalDistanceKm:  o.OriginalDistanceKm,
			OptimizedDistanceKm: o.OptimizedDistanceKm,
			Success:             o.Success,
			ErrorMessage:        o.ErrorMessage,
			At:                  o.At,
		}
	}

	return response
}

func fromRecord(r *kpi.Record, computedAt time.Time) KPIRecord {
	return KPIRecord{
		MetricType:   r.Class().Type.String(),
		ProductClass: r.Class().ProductClass,
		Horizon:      kpi.HorizonOf(r.Period()).String(),
		PeriodStart:  r.Period().Start(),
		PeriodEnd:    r.Period().End(),
		Value:        floatPtr(r.Value()),
		Target:       floatPtr(r.Target()),
		Trend:        r.Trend().String(),
		SampleSize:   r.SampleSize(),
		WithinTarget: r.WithinTarget(),
		ComputedAt:   computedAt,
	}
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func toUUIDs(ids []kernel.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		out[i] = id.Bytes()
	}
	return out
}
