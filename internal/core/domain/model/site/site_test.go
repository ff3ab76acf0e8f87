package site_test

import (
	"testing"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/site"
	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSite(t *testing.T, capacity, current float64) *site.Site {
	t.Helper()

	location, err := kernel.NewGeoPoint(45.40, -72.73)
	require.NoError(t, err)

	s, err := site.NewSite(kernel.NewUUID(), site.Attributes{
		Name:     "Ferme Tremblay",
		Location: location,
		Capacity: kernel.MustQuantity(capacity),
		Current:  kernel.MustQuantity(current),
		LowStock: site.MustStockLevel(2, 20),
		Priority: site.PriorityMedium,
		SensorID: "BIN-001",
	})
	require.NoError(t, err)

	return s
}

func TestNewSite(t *testing.T) {
	location, _ := kernel.NewGeoPoint(45.40, -72.73)
	valid := site.Attributes{
		Name:     "Ferme Tremblay",
		Location: location,
		Capacity: kernel.MustQuantity(40),
		Current:  kernel.MustQuantity(10),
		Priority: site.PriorityHigh,
	}

	t.Run("valid attributes", func(t *testing.T) {
		// When
		s, err := site.NewSite(kernel.NewUUID(), valid)

		// Then
		require.NoError(t, err)
		require.NoError(t, s.Validate())
		assert.Equal(t, "Ferme Tremblay", s.Name())
		assert.Equal(t, site.PriorityHigh, s.Priority())
		assert.Equal(t, int64(0), s.Version())
		assert.True(t, s.Available().Equal(kernel.MustQuantity(30)))
		assert.False(t, s.IsConnected())
	})

	t.Run("collects every invalid attribute", func(t *testing.T) {
		// Given
		attrs := valid
		attrs.Name = "  "
		attrs.Capacity = kernel.ZeroQuantity
		attrs.Priority = site.PriorityUnknown

		// When
		_, err := site.NewSite(kernel.UUID{}, attrs)

		// Then
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("current above capacity is rejected", func(t *testing.T) {
		attrs := valid
		attrs.Current = kernel.MustQuantity(41)

		_, err := site.NewSite(kernel.NewUUID(), attrs)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var s *site.Site
		assert.Equal(t, site.ErrSiteIsNotConstructed, s.Validate())
		assert.Equal(t, site.ErrSiteIsNotConstructed, (&site.Site{}).Validate())
	})
}

func TestSite_CheckCanAccept(t *testing.T) {
	// Given capacity 40t with 35t stored
	s := newTestSite(t, 40, 35)

	t.Run("rejects an order that would overflow", func(t *testing.T) {
		err := s.CheckCanAccept(kernel.MustQuantity(10))

		require.ErrorIs(t, err, errs.ErrCapacityExceeded)
		assert.Contains(t, err.Error(), "available 5.0000")
	})

	t.Run("accepts an order that exactly fills the site", func(t *testing.T) {
		require.NoError(t, s.CheckCanAccept(kernel.MustQuantity(5)))
	})
}

func TestSite_Replenish(t *testing.T) {
	t.Run("increments stock", func(t *testing.T) {
		s := newTestSite(t, 40, 10)

		applied := s.Replenish(kernel.MustQuantity(12), time.Now())

		assert.True(t, applied.Equal(kernel.MustQuantity(12)))
		assert.True(t, s.CurrentQuantity().Equal(kernel.MustQuantity(22)))
		require.Len(t, s.DomainEvents(), 1)
		assert.Equal(t, "site.stock_replenished", s.DomainEvents()[0].EventName())
	})

	t.Run("clamps to capacity", func(t *testing.T) {
		s := newTestSite(t, 40, 35)

		applied := s.Replenish(kernel.MustQuantity(8), time.Now())

		assert.True(t, applied.Equal(kernel.MustQuantity(5)))
		assert.True(t, s.CurrentQuantity().Equal(s.Capacity()))
	})
}

func TestSite_ApplySensorReading(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("sets absolute quantity", func(t *testing.T) {
		s := newTestSite(t, 40, 30)

		applied, err := s.ApplySensorReading(kernel.MustQuantity(12.5), t0)

		require.NoError(t, err)
		assert.True(t, applied)
		assert.True(t, s.CurrentQuantity().Equal(kernel.MustQuantity(12.5)))
		assert.Equal(t, t0, *s.LastSensorReadingAt())
		assert.True(t, s.IsConnected())
	})

	t.Run("clamps readings above capacity", func(t *testing.T) {
		s := newTestSite(t, 40, 30)

		_, err := s.ApplySensorReading(kernel.MustQuantity(55), t0)

		require.NoError(t, err)
		assert.True(t, s.CurrentQuantity().Equal(kernel.MustQuantity(40)))
	})

	t.Run("ignores stale and duplicate timestamps", func(t *testing.T) {
		s := newTestSite(t, 40, 30)
		_, _ = s.ApplySensorReading(kernel.MustQuantity(20), t0)

		older, err := s.ApplySensorReading(kernel.MustQuantity(5), t0.Add(-time.Minute))
		require.NoError(t, err)
		same, err := s.ApplySensorReading(kernel.MustQuantity(6), t0)
		require.NoError(t, err)

		assert.False(t, older)
		assert.False(t, same)
		assert.True(t, s.CurrentQuantity().Equal(kernel.MustQuantity(20)))
	})

	t.Run("raises low stock event when crossing the threshold", func(t *testing.T) {
		s := newTestSite(t, 40, 30)

		_, err := s.ApplySensorReading(kernel.MustQuantity(7), t0)

		require.NoError(t, err)
		assert.True(t, s.IsLowStock())
		require.Len(t, s.DomainEvents(), 1)
		assert.Equal(t, "site.low_stock_detected", s.DomainEvents()[0].EventName())
	})

	t.Run("requires a timestamp", func(t *testing.T) {
		s := newTestSite(t, 40, 30)

		_, err := s.ApplySensorReading(kernel.MustQuantity(7), time.Time{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestSite_StockLevels(t *testing.T) {
	emergency := site.MustStockLevel(0.5, 10)

	tests := []struct {
		name          string
		current       float64
		wantLow       bool
		wantEmergency bool
	}{
		{"healthy", 30, false, false},
		{"at percentage threshold", 8, true, false},
		{"below absolute threshold", 1.5, true, true},
		{"at emergency percentage", 4, true, true},
		{"empty", 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSite(t, 40, tt.current)

			assert.Equal(t, tt.wantLow, s.IsLowStock())
			assert.Equal(t, tt.wantEmergency, s.IsEmergency(emergency))
		})
	}

	t.Run("percentage remaining", func(t *testing.T) {
		s := newTestSite(t, 40, 10)
		assert.True(t, decimal.NewFromInt(25).Equal(s.PercentageRemaining()))
	})

	t.Run("invalid percentage", func(t *testing.T) {
		_, err := site.NewStockLevel(kernel.MustQuantity(1), decimal.NewFromInt(120))
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestParsePriority(t *testing.T) {
	p, err := site.ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, site.PriorityHigh, p)
	assert.Equal(t, "high", p.String())

	_, err = site.ParsePriority("critical")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
