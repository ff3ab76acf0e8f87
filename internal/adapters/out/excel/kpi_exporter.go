// Package excel renders KPI records as an xlsx workbook.
package excel

import (
	"fmt"
	"io"
	"time"

	"replenishment/internal/core/application/usecases/queries"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "KPIs"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headings = []any{
	"Metric", "Product class", "Horizon", "Period start", "Period end",
	"Value", "Target", "Within target", "Trend", "Sample size", "Computed at",
}

// KPIExporter writes one row per record under a header row. Missing values
// and targets are left blank.
type KPIExporter struct{}

func NewKPIExporter() KPIExporter {
	return KPIExporter{}
}

// FileName is the suggested attachment name for an export made at now.
func (KPIExporter) FileName(now time.Time) string {
	return fmt.Sprintf("kpis-%s.xlsx", now.UTC().Format("20060102-150405"))
}

func (e KPIExporter) Export(w io.Writer, records []queries.GetKPIRecordsQueryResponse) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err = f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err = setRow(f, 1, headings); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headings), 1)
	if err != nil {
		return err
	}
	if err = f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		if err = setRow(f, i+2, []any{
			r.MetricType,
			r.ProductClass,
			r.Horizon,
			r.PeriodStart.UTC().Format(time.DateOnly),
			r.PeriodEnd.UTC().Format(time.DateOnly),
			decimalCell(r.Value),
			decimalCell(r.Target),
			r.WithinTarget,
			r.Trend,
			r.SampleSize,
			r.ComputedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}

	if err = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err = f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func decimalCell(v *decimal.Decimal) any {
	if v == nil {
		return ""
	}
	return v.InexactFloat64()
}
