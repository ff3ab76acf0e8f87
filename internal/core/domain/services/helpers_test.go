package services_test

import (
	"testing"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/domain/model/site"
	"replenishment/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 4, 14, 8, 0, 0, 0, time.UTC)

func testSite(t *testing.T, lat, lon float64) *site.Site {
	t.Helper()
	location, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	s, err := site.NewSite(kernel.NewUUID(), site.Attributes{
		Name:     "Farm",
		Location: location,
		Capacity: kernel.MustQuantity(100),
		Current:  kernel.MustQuantity(10),
		LowStock: site.MustStockLevel(5, 20),
		Priority: site.PriorityMedium,
	})
	require.NoError(t, err)
	return s
}

type orderOption func(*order.Request)

func withPriority(p order.Priority) orderOption {
	return func(r *order.Request) { r.Priority = p }
}

func withDeadline(t *testing.T, end time.Time) orderOption {
	return func(r *order.Request) {
		window, err := kernel.NewPeriod(now.Add(-time.Hour), end)
		require.NoError(t, err)
		r.DeliveryWindow = &window
	}
}

func confirmedCandidate(t *testing.T, quantity float64, createdAt time.Time, opts ...orderOption) services.Candidate {
	t.Helper()
	s := testSite(t, 45, -72)
	request := order.Request{
		Quantity: kernel.MustQuantity(quantity),
		Type:     order.TypeContract,
		Priority: order.PriorityMedium,
	}
	for _, opt := range opts {
		opt(&request)
	}
	o, err := order.NewOrder(kernel.NewUUID(), "ORD-1", s, request, order.NewApprovalPolicy(kernel.MustQuantity(50)), createdAt)
	require.NoError(t, err)
	require.NoError(t, o.Confirm(createdAt))
	return services.Candidate{Order: o, Site: s}
}

func draftRoute(t *testing.T, points ...[2]float64) *route.Route {
	t.Helper()
	specs := make([]route.StopSpec, 0, len(points))
	for _, p := range points {
		location, err := kernel.NewGeoPoint(p[0], p[1])
		require.NoError(t, err)
		specs = append(specs, route.StopSpec{
			OrderID:  kernel.NewUUID(),
			SiteID:   kernel.NewUUID(),
			Location: location,
			Quantity: kernel.MustQuantity(1),
		})
	}
	r, err := route.NewRoute(kernel.NewUUID(), "RT-000001", route.Header{
		ScheduledDate:          now,
		Vehicle:                route.Vehicle{ID: "TRK-1", Capacity: kernel.MustQuantity(40)},
		PlanningAccuracyTarget: decimal.NewFromInt(90),
	}, specs, nil, now)
	require.NoError(t, err)
	return r
}
