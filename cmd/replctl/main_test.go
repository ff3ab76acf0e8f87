package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"replenishment/internal/core/domain/services"
	"replenishment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", errs.NewValueIsRequiredError("approver"), ExitValidation},
		{"wrapped validation", fmt.Errorf("site id: %w", errs.NewValueIsInvalidError("uuid")), ExitValidation},
		{"not found", errs.NewObjectNotFoundError("order", "42"), ExitNotFound},
		{"state", errs.NewStateIsInvalidError("order", "delivered", "cancel"), ExitConflict},
		{"lock busy", errs.NewConflictError("site", "42"), ExitConflict},
		{"capacity", errs.NewCapacityExceededError("quantity", 10, 2), ExitConflict},
		{"nothing to plan", services.ErrInsufficientOrders, ExitConflict},
		{"cancelled", context.Canceled, ExitCancelled},
		{"other", errors.New("connection refused"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestCommandTree(t *testing.T) {
	paths := []string{
		"orders create", "orders pending", "orders approve", "orders confirm", "orders plan", "orders cancel", "orders requeue",
		"routes build", "routes show", "routes sequence", "routes activate", "routes complete", "routes cancel", "routes delay",
		"stops start", "stops fulfill", "stops issue",
		"sensors apply",
		"sites low-stock", "sites replenish",
		"kpi recompute", "kpi list", "kpi export", "kpi forecast",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			found, _, err := rootCmd.Find(strings.Fields(path))

			require.NoError(t, err)
			assert.Equal(t, path, strings.TrimPrefix(found.CommandPath(), "replctl "))
			assert.NotNil(t, found.RunE)
		})
	}
}

func TestParseTime(t *testing.T) {
	now := time.Date(2025, 4, 14, 8, 0, 0, 0, time.UTC)

	t.Run("empty is now", func(t *testing.T) {
		got, err := parseTime("at", " ", now)

		require.NoError(t, err)
		assert.Equal(t, now, got)
	})

	t.Run("date", func(t *testing.T) {
		got, err := parseTime("at", "2025-04-07", now)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("timestamp is normalized to UTC", func(t *testing.T) {
		got, err := parseTime("at", "2025-04-07T10:30:00+02:00", now)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 4, 7, 8, 30, 0, 0, time.UTC), got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseTime("at", "yesterday", now)

		assert.True(t, errs.IsValidation(err))
	})
}

func TestParsePeriod(t *testing.T) {
	period, err := parsePeriod("2025-04-07", "2025-04-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC), period.Start())

	_, err = parsePeriod("2025-04-07", "")
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = parsePeriod("2025-04-14", "2025-04-07")
	assert.Error(t, err)
}

func TestParseQuantity(t *testing.T) {
	q, err := parseQuantity("quantity", "12.5")
	require.NoError(t, err)
	assert.Equal(t, "12.5000", q.String())

	_, err = parseQuantity("quantity", "-1")
	assert.Error(t, err)

	_, err = parseQuantity("quantity", "twelve")
	assert.True(t, errs.IsValidation(err))
}

func TestParseReading(t *testing.T) {
	q, err := parseReading("-3")
	require.NoError(t, err)
	assert.True(t, q.IsZero())

	q, err = parseReading(" 7.25 ")
	require.NoError(t, err)
	assert.Equal(t, "7.2500", q.String())

	_, err = parseReading("full")
	assert.True(t, errs.IsValidation(err))
}

func TestParseID(t *testing.T) {
	_, err := parseID("order id", "not-a-uuid")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "order id")
	assert.Equal(t, ExitValidation, exitCode(err))
}
