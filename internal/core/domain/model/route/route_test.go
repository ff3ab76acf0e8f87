package route_test

import (
	"testing"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scheduled = time.Date(2025, 4, 15, 6, 0, 0, 0, time.UTC)

func point(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func spec(t *testing.T, quantity float64, lat float64) route.StopSpec {
	t.Helper()
	return route.StopSpec{
		OrderID:  kernel.NewUUID(),
		SiteID:   kernel.NewUUID(),
		Location: point(t, lat, -72.0),
		Quantity: kernel.MustQuantity(quantity),
	}
}

func header(capacity float64) route.Header {
	return route.Header{
		ScheduledDate:          scheduled,
		Vehicle:                route.Vehicle{ID: "TRK-12", Capacity: kernel.MustQuantity(capacity)},
		ProductClass:           "soy_meal",
		PlanningAccuracyTarget: decimal.NewFromInt(90),
	}
}

func newRoute(t *testing.T, quantities ...float64) *route.Route {
	t.Helper()
	specs := make([]route.StopSpec, 0, len(quantities))
	types := make([]order.Type, 0, len(quantities))
	for i, q := range quantities {
		specs = append(specs, spec(t, q, 45+float64(i)))
		types = append(types, order.TypeContract)
	}
	r, err := route.NewRoute(kernel.NewUUID(), "RT-000001", header(40), specs, types, scheduled)
	require.NoError(t, err)
	return r
}

func identity(n int) route.Sequence {
	var seq route.Sequence
	for i := 0; i < n; i++ {
		seq.Order = append(seq.Order, i)
		seq.LegDistancesKm = append(seq.LegDistancesKm, 10)
		seq.LegDurations = append(seq.LegDurations, 15*time.Minute)
		seq.TotalDistanceKm += 10
		seq.TotalDuration += 15 * time.Minute
	}
	return seq
}

func activeRoute(t *testing.T, quantities ...float64) *route.Route {
	t.Helper()
	r := newRoute(t, quantities...)
	require.NoError(t, r.ApplySequence(identity(len(quantities)), route.Optimization{Provider: "test", Success: true, At: scheduled}, ""))
	require.NoError(t, r.Activate(scheduled))
	return r
}

func TestNewRoute(t *testing.T) {
	t.Run("creates draft route with numbered stops", func(t *testing.T) {
		// Given
		specs := []route.StopSpec{spec(t, 20, 46), spec(t, 15, 45)}

		// When
		r, err := route.NewRoute(kernel.NewUUID(), "RT-000007", header(38), specs,
			[]order.Type{order.TypeContract, order.TypeProactive}, scheduled)

		// Then
		require.NoError(t, err)
		require.NoError(t, r.Validate())
		assert.Equal(t, route.StatusDraft, r.Status())
		assert.Equal(t, route.TypeContract, r.Type())
		assert.True(t, r.TotalPlannedQuantity().Equal(kernel.MustQuantity(35)))
		require.Len(t, r.Stops(), 2)
		assert.Equal(t, 1, r.Stops()[0].Sequence())
		assert.Equal(t, 2, r.Stops()[1].Sequence())
		assert.Equal(t, route.DeliveryMethodSiloToSilo, r.Stops()[0].DeliveryMethod())
		assert.Equal(t, route.DefaultServiceMinutes, r.Stops()[0].ServiceMinutes())
		assert.Equal(t, "route.created", r.DomainEvents()[0].EventName())
	})

	t.Run("rejects stops over vehicle capacity", func(t *testing.T) {
		_, err := route.NewRoute(kernel.NewUUID(), "RT-1", header(38),
			[]route.StopSpec{spec(t, 20, 45), spec(t, 15, 46), spec(t, 10, 47)}, nil, scheduled)

		require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	})

	t.Run("rejects empty route", func(t *testing.T) {
		_, err := route.NewRoute(kernel.NewUUID(), "RT-1", header(38), nil, nil, scheduled)

		require.ErrorIs(t, err, route.ErrStopsAreRequired)
	})

	t.Run("rejects duplicate order", func(t *testing.T) {
		s := spec(t, 5, 45)

		_, err := route.NewRoute(kernel.NewUUID(), "RT-1", header(38), []route.StopSpec{s, s}, nil, scheduled)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("requires scheduled date and vehicle capacity", func(t *testing.T) {
		_, err := route.NewRoute(kernel.NewUUID(), "RT-1", route.Header{}, []route.StopSpec{spec(t, 5, 45)}, nil, scheduled)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestDeriveType(t *testing.T) {
	tests := []struct {
		name  string
		types []order.Type
		want  route.Type
	}{
		{"emergency wins", []order.Type{order.TypeContract, order.TypeEmergency}, route.TypeEmergency},
		{"contract and proactive", []order.Type{order.TypeContract, order.TypeProactive}, route.TypeContract},
		{"on demand only", []order.Type{order.TypeOnDemand, order.TypeOnDemand}, route.TypeOnDemand},
		{"mixed", []order.Type{order.TypeOnDemand, order.TypeContract}, route.TypeMixed},
		{"empty", nil, route.TypeMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, route.DeriveType(tt.types))
		})
	}
}

func TestRoute_ApplySequence(t *testing.T) {
	t.Run("renumbers stops in provider order", func(t *testing.T) {
		// Given
		r := newRoute(t, 5, 6, 7)
		before := r.Stops()

		// When
		err := r.ApplySequence(route.Sequence{
			Order:           []int{2, 0, 1},
			TotalDistanceKm: 42.123456,
			TotalDuration:   90 * time.Minute,
			LegDistancesKm:  []float64{12, 20, 10.123456},
			LegDurations:    []time.Duration{20 * time.Minute, 40 * time.Minute, 30 * time.Minute},
		}, route.Optimization{Provider: "ors", OriginalDistanceKm: 50, OptimizedDistanceKm: 42.12, Success: true, At: scheduled}, "")

		// Then
		require.NoError(t, err)
		after := r.Stops()
		assert.True(t, after[0].ID().IsEqual(before[2].ID()))
		assert.True(t, after[1].ID().IsEqual(before[0].ID()))
		assert.True(t, after[2].ID().IsEqual(before[1].ID()))
		for i, s := range after {
			assert.Equal(t, i+1, s.Sequence())
		}
		assert.Equal(t, route.StatusPlanned, r.Status())
		assert.InDelta(t, 42.1235, r.PlannedDistanceKm(), 1e-9)
		assert.Equal(t, 90*time.Minute, r.PlannedDuration())
		assert.False(t, r.IsDegraded())
		require.Len(t, r.Optimizations(), 1)
		assert.InDelta(t, 7.88, r.Optimizations()[0].SavingsKm(), 1e-9)

		// arrival = departure + legs + service time of previous stops
		assert.Equal(t, scheduled.Add(20*time.Minute), *after[0].EstimatedArrival())
		assert.Equal(t, scheduled.Add(20*time.Minute+30*time.Minute+40*time.Minute), *after[1].EstimatedArrival())
	})

	t.Run("records degraded reason", func(t *testing.T) {
		r := newRoute(t, 5)

		require.NoError(t, r.ApplySequence(identity(1), route.Optimization{Provider: "ors", ErrorMessage: "timeout"}, "provider timeout"))

		assert.True(t, r.IsDegraded())
		assert.Equal(t, "provider timeout", r.DegradedReason())
	})

	t.Run("rejects non permutations", func(t *testing.T) {
		r := newRoute(t, 5, 6)

		for _, perm := range [][]int{{0}, {0, 0}, {0, 2}, {-1, 0}} {
			err := r.ApplySequence(route.Sequence{Order: perm}, route.Optimization{}, "")
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, "%v", perm)
		}
		assert.Equal(t, route.StatusDraft, r.Status())
	})

	t.Run("active route cannot be resequenced", func(t *testing.T) {
		r := activeRoute(t, 5)

		require.ErrorIs(t, r.ApplySequence(identity(1), route.Optimization{}, ""), errs.ErrStateIsInvalid)
	})
}

func TestRoute_Activate(t *testing.T) {
	t.Run("from draft", func(t *testing.T) {
		r := newRoute(t, 5)

		require.NoError(t, r.Activate(scheduled))

		assert.Equal(t, route.StatusActive, r.Status())
		assert.Equal(t, scheduled, *r.ActivatedAt())
	})

	t.Run("twice fails", func(t *testing.T) {
		r := activeRoute(t, 5)

		require.ErrorIs(t, r.Activate(scheduled), errs.ErrStateIsInvalid)
	})
}

func TestRoute_StartStop(t *testing.T) {
	t.Run("records arrival once", func(t *testing.T) {
		r := activeRoute(t, 5)
		stopID := r.Stops()[0].ID()

		started, err := r.StartStop(stopID, scheduled.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, started)

		started, err = r.StartStop(stopID, scheduled.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, started)
		assert.Equal(t, scheduled.Add(time.Hour), *r.Stops()[0].ActualArrival())
		assert.Equal(t, route.StopStatusArrived, r.Stops()[0].Status())
	})

	t.Run("unknown stop", func(t *testing.T) {
		r := activeRoute(t, 5)

		_, err := r.StartStop(kernel.NewUUID(), scheduled)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("draft route", func(t *testing.T) {
		r := newRoute(t, 5)

		_, err := r.StartStop(r.Stops()[0].ID(), scheduled)

		require.ErrorIs(t, err, errs.ErrStateIsInvalid)
	})
}

func TestRoute_FulfillStop(t *testing.T) {
	t.Run("first fulfillment completes stop", func(t *testing.T) {
		// Given
		r := activeRoute(t, 8)
		stopID := r.Stops()[0].ID()

		// When
		delta, first, err := r.FulfillStop(stopID, kernel.MustQuantity(7.5), route.DefaultFulfillmentRules(), scheduled.Add(time.Hour))

		// Then
		require.NoError(t, err)
		assert.True(t, first)
		assert.True(t, delta.Equal(kernel.MustQuantity(7.5)))
		stop := r.Stops()[0]
		assert.Equal(t, route.StopStatusCompleted, stop.Status())
		assert.True(t, stop.DeliveredQuantity().Equal(kernel.MustQuantity(7.5)))
		assert.NotNil(t, stop.ActualArrival())
		assert.True(t, r.TotalDeliveredQuantity().Equal(kernel.MustQuantity(7.5)))
	})

	t.Run("over planned quantity without tolerance fails", func(t *testing.T) {
		r := activeRoute(t, 8)

		_, _, err := r.FulfillStop(r.Stops()[0].ID(), kernel.MustQuantity(8.01), route.DefaultFulfillmentRules(), scheduled)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Nil(t, r.Stops()[0].DeliveredQuantity())
	})

	t.Run("overage within tolerance is accepted", func(t *testing.T) {
		r := activeRoute(t, 8)
		rules, err := route.NewFulfillmentRules(decimal.NewFromInt(5), route.RepeatReject)
		require.NoError(t, err)

		_, _, err = r.FulfillStop(r.Stops()[0].ID(), kernel.MustQuantity(8.4), rules, scheduled)

		require.NoError(t, err)
	})

	t.Run("repeat is rejected by default", func(t *testing.T) {
		// Given 5t then 3t on a stop planned for 8t
		r := activeRoute(t, 8)
		stopID := r.Stops()[0].ID()
		_, _, err := r.FulfillStop(stopID, kernel.MustQuantity(5), route.DefaultFulfillmentRules(), scheduled)
		require.NoError(t, err)

		// When
		_, _, err = r.FulfillStop(stopID, kernel.MustQuantity(3), route.DefaultFulfillmentRules(), scheduled)

		// Then
		require.ErrorIs(t, err, errs.ErrStateIsInvalid)
		assert.True(t, r.Stops()[0].DeliveredQuantity().Equal(kernel.MustQuantity(5)))
		assert.True(t, r.TotalDeliveredQuantity().Equal(kernel.MustQuantity(5)))
	})

	t.Run("repeat accumulates when configured", func(t *testing.T) {
		// Given
		rules, err := route.NewFulfillmentRules(decimal.Zero, route.RepeatAccumulate)
		require.NoError(t, err)
		r := activeRoute(t, 8)
		stopID := r.Stops()[0].ID()
		_, _, err = r.FulfillStop(stopID, kernel.MustQuantity(5), rules, scheduled)
		require.NoError(t, err)

		// When
		delta, first, err := r.FulfillStop(stopID, kernel.MustQuantity(3), rules, scheduled)

		// Then
		require.NoError(t, err)
		assert.False(t, first)
		assert.True(t, delta.Equal(kernel.MustQuantity(3)))
		assert.True(t, r.Stops()[0].DeliveredQuantity().Equal(kernel.MustQuantity(8)))

		// and the bound still applies to the total
		_, _, err = r.FulfillStop(stopID, kernel.MustQuantity(0.5), rules, scheduled)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("cancelled route admits no fulfillment and keeps earlier ones", func(t *testing.T) {
		r := activeRoute(t, 8, 4)
		first := r.Stops()[0].ID()
		_, _, err := r.FulfillStop(first, kernel.MustQuantity(8), route.DefaultFulfillmentRules(), scheduled)
		require.NoError(t, err)

		released, err := r.Cancel("truck breakdown", scheduled)
		require.NoError(t, err)
		require.Len(t, released, 1)
		assert.True(t, released[0].IsEqual(r.Stops()[1].OrderID()))

		_, _, err = r.FulfillStop(r.Stops()[1].ID(), kernel.MustQuantity(4), route.DefaultFulfillmentRules(), scheduled)
		require.ErrorIs(t, err, errs.ErrStateIsInvalid)
		assert.True(t, r.TotalDeliveredQuantity().Equal(kernel.MustQuantity(8)))
		assert.Equal(t, route.StopStatusCompleted, r.Stops()[0].Status())
		assert.Equal(t, route.StopStatusCancelled, r.Stops()[1].Status())
	})

	t.Run("zero delivery is allowed", func(t *testing.T) {
		r := activeRoute(t, 8)

		delta, first, err := r.FulfillStop(r.Stops()[0].ID(), kernel.ZeroQuantity, route.DefaultFulfillmentRules(), scheduled)

		require.NoError(t, err)
		assert.True(t, first)
		assert.True(t, delta.IsZero())
	})

	t.Run("works while delayed", func(t *testing.T) {
		r := activeRoute(t, 8)
		require.NoError(t, r.Delay("traffic", scheduled))

		_, _, err := r.FulfillStop(r.Stops()[0].ID(), kernel.MustQuantity(8), route.DefaultFulfillmentRules(), scheduled)

		require.NoError(t, err)
		assert.Equal(t, "traffic", r.DelayReason())
	})
}

func TestRoute_Complete(t *testing.T) {
	t.Run("aggregates actuals from stops", func(t *testing.T) {
		// Given
		r := activeRoute(t, 8, 4)
		stops := r.Stops()
		_, _, err := r.FulfillStop(stops[0].ID(), kernel.MustQuantity(8), route.DefaultFulfillmentRules(), scheduled.Add(time.Hour))
		require.NoError(t, err)
		_, _, err = r.FulfillStop(stops[1].ID(), kernel.MustQuantity(2), route.DefaultFulfillmentRules(), scheduled.Add(3*time.Hour))
		require.NoError(t, err)

		// When
		err = r.Complete(route.Actuals{}, scheduled.Add(4*time.Hour))

		// Then
		require.NoError(t, err)
		assert.Equal(t, route.StatusCompleted, r.Status())
		assert.True(t, r.TotalDeliveredQuantity().Equal(kernel.MustQuantity(10)))
		assert.InDelta(t, 20.0, *r.ActualDistanceKm(), 1e-9)
		assert.Equal(t, 3*time.Hour, *r.ActualDuration())
		assert.Equal(t, "2", r.DistancePerUnit().String())
		assert.Equal(t, "100", r.PlanningAccuracy().String())
		assert.True(t, r.IsWithinAccuracyTarget())
		assert.Equal(t, "16.67", r.DeliveryEfficiency().String())
	})

	t.Run("distance per unit is nil when nothing was delivered", func(t *testing.T) {
		r := activeRoute(t, 8)
		require.NoError(t, r.FlagStopIssue(r.Stops()[0].ID(), "site gate locked", ""))

		require.NoError(t, r.Complete(route.Actuals{}, scheduled.Add(time.Hour)))

		assert.Nil(t, r.DistancePerUnit())
		assert.True(t, r.TotalDeliveredQuantity().IsZero())
	})

	t.Run("supplied actuals win", func(t *testing.T) {
		r := activeRoute(t, 8)
		_, _, err := r.FulfillStop(r.Stops()[0].ID(), kernel.MustQuantity(8), route.DefaultFulfillmentRules(), scheduled)
		require.NoError(t, err)
		distance, duration := 12.5, 2*time.Hour

		require.NoError(t, r.Complete(route.Actuals{DistanceKm: &distance, Duration: &duration}, scheduled))

		assert.InDelta(t, 12.5, *r.ActualDistanceKm(), 1e-9)
		assert.Equal(t, 2*time.Hour, *r.ActualDuration())
		assert.Equal(t, "80", r.PlanningAccuracy().String())
		assert.False(t, r.IsWithinAccuracyTarget())
	})

	t.Run("unsettled stop blocks completion", func(t *testing.T) {
		r := activeRoute(t, 8, 4)
		_, _, err := r.FulfillStop(r.Stops()[0].ID(), kernel.MustQuantity(8), route.DefaultFulfillmentRules(), scheduled)
		require.NoError(t, err)

		err = r.Complete(route.Actuals{}, scheduled)

		require.ErrorIs(t, err, errs.ErrStateIsInvalid)
		assert.Equal(t, route.StatusActive, r.Status())
	})

	t.Run("partial failure completes and reports undelivered orders", func(t *testing.T) {
		r := activeRoute(t, 8, 4)
		stops := r.Stops()
		_, _, err := r.FulfillStop(stops[0].ID(), kernel.MustQuantity(8), route.DefaultFulfillmentRules(), scheduled)
		require.NoError(t, err)
		require.NoError(t, r.FlagStopIssue(stops[1].ID(), "silo full of water", "customer to drain"))

		require.NoError(t, r.Complete(route.Actuals{}, scheduled))

		undelivered := r.UndeliveredOrderIDs()
		require.Len(t, undelivered, 1)
		assert.True(t, undelivered[0].IsEqual(stops[1].OrderID()))
		assert.Equal(t, "customer to drain", r.Stops()[1].ResolutionNotes())
	})

	t.Run("cancelled stop counts as settled", func(t *testing.T) {
		r := activeRoute(t, 8)
		require.NoError(t, r.CancelStopForOrder(r.Stops()[0].OrderID()))

		require.NoError(t, r.Complete(route.Actuals{}, scheduled))
	})
}

func TestRoute_FlagStopIssue(t *testing.T) {
	t.Run("description is required", func(t *testing.T) {
		r := activeRoute(t, 8)

		require.ErrorIs(t, r.FlagStopIssue(r.Stops()[0].ID(), " ", ""), route.ErrIssueDescriptionIsMissing)
	})

	t.Run("completed stop cannot be flagged", func(t *testing.T) {
		r := activeRoute(t, 8)
		_, _, err := r.FulfillStop(r.Stops()[0].ID(), kernel.MustQuantity(8), route.DefaultFulfillmentRules(), scheduled)
		require.NoError(t, err)

		require.ErrorIs(t, r.FlagStopIssue(r.Stops()[0].ID(), "late", ""), errs.ErrStateIsInvalid)
	})
}

func TestRoute_Cancel(t *testing.T) {
	t.Run("completed route cannot be cancelled", func(t *testing.T) {
		r := activeRoute(t, 8)
		require.NoError(t, r.FlagStopIssue(r.Stops()[0].ID(), "closed", ""))
		require.NoError(t, r.Complete(route.Actuals{}, scheduled))

		_, err := r.Cancel("", scheduled)

		require.ErrorIs(t, err, errs.ErrStateIsInvalid)
	})

	t.Run("draft route releases every order", func(t *testing.T) {
		r := newRoute(t, 1, 2, 3)

		released, err := r.Cancel("replanned", scheduled)

		require.NoError(t, err)
		assert.Len(t, released, 3)
		assert.Equal(t, route.StatusCancelled, r.Status())
	})
}

func TestStop_IsOnTime(t *testing.T) {
	r := activeRoute(t, 8, 4)
	stops := r.Stops()
	eta0, eta1 := *stops[0].EstimatedArrival(), *stops[1].EstimatedArrival()

	_, err := r.StartStop(stops[0].ID(), eta0.Add(10*time.Minute))
	require.NoError(t, err)
	_, err = r.StartStop(stops[1].ID(), eta1.Add(20*time.Minute))
	require.NoError(t, err)

	assert.True(t, stops[0].IsOnTime(15*time.Minute))
	assert.False(t, stops[1].IsOnTime(15*time.Minute))
}

func TestRestoreRoute(t *testing.T) {
	id := kernel.NewUUID()
	second := route.StopSnapshot{
		ID: kernel.NewUUID(), OrderID: kernel.NewUUID(), SiteID: kernel.NewUUID(),
		Location: point(t, 45, -72), Sequence: 2, PlannedQuantity: kernel.MustQuantity(3),
		Status: route.StopStatusPending, DeliveryMethod: route.DeliveryMethodTote, ServiceMinutes: 30,
	}
	first := second
	first.ID, first.OrderID, first.Sequence = kernel.NewUUID(), kernel.NewUUID(), 1

	r, err := route.RestoreRoute(route.Snapshot{
		ID:      id,
		Number:  "RT-000002",
		Header:  header(40),
		Type:    route.TypeMixed,
		Status:  route.StatusActive,
		Stops:   []route.StopSnapshot{second, first},
		Version: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), r.Version())
	assert.Equal(t, 1, r.Stops()[0].Sequence())
	assert.True(t, r.TotalPlannedQuantity().Equal(kernel.MustQuantity(6)))
	assert.Empty(t, r.DomainEvents())
}
