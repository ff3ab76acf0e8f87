package excel_test

import (
	"bytes"
	"testing"
	"time"

	"replenishment/internal/adapters/out/excel"
	"replenishment/internal/core/application/usecases/queries"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestKPIExporter_Export(t *testing.T) {
	// Given
	value := decimal.RequireFromString("92.25")
	target := decimal.NewFromInt(90)
	start := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	records := []queries.GetKPIRecordsQueryResponse{
		{
			MetricType:   "forecast_accuracy",
			ProductClass: "feed",
			Horizon:      "weekly",
			PeriodStart:  start,
			PeriodEnd:    start.AddDate(0, 0, 7),
			Value:        &value,
			Target:       &target,
			Trend:        "improving",
			SampleSize:   4,
			WithinTarget: true,
			ComputedAt:   start.AddDate(0, 0, 7),
		},
		{
			MetricType:  "distance_per_unit",
			Horizon:     "weekly",
			PeriodStart: start,
			PeriodEnd:   start.AddDate(0, 0, 7),
			Trend:       "stable",
			ComputedAt:  start.AddDate(0, 0, 7),
		},
	}
	var buf bytes.Buffer

	// When
	err := excel.NewKPIExporter().Export(&buf, records)

	// Then
	require.NoError(t, err)
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(excel.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Metric", rows[0][0])
	assert.Equal(t, "Computed at", rows[0][10])

	assert.Equal(t, []string{"forecast_accuracy", "feed", "weekly", "2025-04-07", "2025-04-14", "92.25", "90", "TRUE", "improving", "4"}, rows[1][:10])

	blankValue, err := f.GetCellValue(excel.SheetName, "F3")
	require.NoError(t, err)
	assert.Empty(t, blankValue)
	assert.Equal(t, "FALSE", rows[2][7])
}

func TestKPIExporter_EmptyExportHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, excel.NewKPIExporter().Export(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := f.GetRows(excel.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestKPIExporter_FileName(t *testing.T) {
	name := excel.NewKPIExporter().FileName(time.Date(2025, 4, 14, 8, 30, 0, 0, time.UTC))

	assert.Equal(t, "kpis-20250414-083000.xlsx", name)
}
