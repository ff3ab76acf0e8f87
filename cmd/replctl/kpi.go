package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"replenishment/internal/adapters/out/excel"
	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kpi"

	"github.com/spf13/cobra"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Recompute, list and export KPI records",
}

var kpiRecomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute KPI records for a period",
	Long: `Recompute KPI records from completed routes. With --previous the scheduled
job runs once: the previous ISO week and the previous month for every
configured class. Otherwise --from and --to select the period and --metric
limits the run to one metric.

Examples:
  replctl kpi recompute --previous
  replctl kpi recompute --from 2025-04-07 --to 2025-04-14 --class feed`,
	Args: cobra.NoArgs,
	RunE: runKPIRecompute,
}

var kpiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored KPI records",
	Args:  cobra.NoArgs,
	RunE:  runKPIList,
}

var kpiExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export KPI records to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runKPIExport,
}

var kpiForecastCmd = &cobra.Command{
	Use:   "forecast <quantity>",
	Short: "Record the forecast quantity of a product class for a period",
	Args:  cobra.ExactArgs(1),
	RunE:  runKPIForecast,
}

var (
	kpiMetric   string
	kpiClass    string
	kpiFrom     string
	kpiTo       string
	kpiPrevious bool
	kpiOutput   string
)

func init() {
	for _, c := range []*cobra.Command{kpiRecomputeCmd, kpiListCmd, kpiExportCmd} {
		c.Flags().StringVar(&kpiMetric, "metric", "", "metric type (distance_per_unit, forecast_accuracy, planning_accuracy, on_time_rate)")
		c.Flags().StringVar(&kpiClass, "class", "", "product class; empty is the all-classes aggregate")
		c.Flags().StringVar(&kpiFrom, "from", "", "period start, YYYY-MM-DD")
		c.Flags().StringVar(&kpiTo, "to", "", "period end, exclusive")
	}
	kpiRecomputeCmd.Flags().BoolVar(&kpiPrevious, "previous", false, "recompute the previous week and month for every configured class")
	kpiRecomputeCmd.MarkFlagsMutuallyExclusive("previous", "from")
	kpiExportCmd.Flags().StringVarP(&kpiOutput, "output", "o", "", "workbook path (default kpis-<timestamp>.xlsx)")

	kpiForecastCmd.Flags().StringVar(&kpiClass, "class", "", "product class")
	kpiForecastCmd.Flags().StringVar(&kpiFrom, "from", "", "period start, YYYY-MM-DD (required)")
	kpiForecastCmd.Flags().StringVar(&kpiTo, "to", "", "period end, exclusive (required)")

	kpiCmd.AddCommand(kpiRecomputeCmd, kpiListCmd, kpiExportCmd, kpiForecastCmd)
}

func runKPIRecompute(cmd *cobra.Command, _ []string) error {
	if kpiPrevious {
		return app.CreateKPIRecomputeJob().RunOnce(cmd.Context())
	}

	period, err := parsePeriod(kpiFrom, kpiTo)
	if err != nil {
		return err
	}
	metrics := kpi.AllMetrics()
	if kpiMetric != "" {
		m, err := kpi.ParseMetricType(kpiMetric)
		if err != nil {
			return err
		}
		metrics = []kpi.MetricType{m}
	}

	handler := app.CreateRecomputeKPICommandHandler()
	w := newTable(cmd)
	fmt.Fprintln(w, "METRIC\tCLASS\tVALUE\tTARGET\tTREND\tSAMPLES\tWITHIN TARGET")
	for _, m := range metrics {
		c, err := commands.NewRecomputeKPICommand(m, kpiClass, period)
		if err != nil {
			return err
		}
		record, err := handler.Handle(cmd.Context(), c)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%t\n",
			m, record.Class().ProductClass, formatDecimal(record.Value()), formatDecimal(record.Target()),
			record.Trend(), record.SampleSize(), record.WithinTarget())
	}
	return w.Flush()
}

func kpiRecords(cmd *cobra.Command) ([]queries.GetKPIRecordsQueryResponse, error) {
	filter := queries.KPIRecordFilter{}
	if kpiMetric != "" {
		m, err := kpi.ParseMetricType(kpiMetric)
		if err != nil {
			return nil, err
		}
		filter.Metric = m
	}
	if cmd.Flags().Changed("class") {
		filter.ProductClass = &kpiClass
	}
	var err error
	if filter.From, err = parseTime("from", kpiFrom, filter.From); err != nil {
		return nil, err
	}
	if filter.To, err = parseTime("to", kpiTo, filter.To); err != nil {
		return nil, err
	}

	q, err := queries.NewGetKPIRecordsQuery(filter)
	if err != nil {
		return nil, err
	}
	return app.CreateGetKPIRecordsQueryHandler().Handle(cmd.Context(), q)
}

func runKPIList(cmd *cobra.Command, _ []string) error {
	records, err := kpiRecords(cmd)
	if err != nil {
		return err
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "METRIC\tCLASS\tHORIZON\tSTART\tEND\tVALUE\tTARGET\tTREND\tWITHIN TARGET")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			r.MetricType, r.ProductClass, r.Horizon, r.PeriodStart.Format(time.DateOnly), r.PeriodEnd.Format(time.DateOnly),
			formatDecimal(r.Value), formatDecimal(r.Target), r.Trend, r.WithinTarget)
	}
	return w.Flush()
}

func runKPIExport(cmd *cobra.Command, _ []string) error {
	records, err := kpiRecords(cmd)
	if err != nil {
		return err
	}

	exporter := excel.NewKPIExporter()
	path := kpiOutput
	if path == "" {
		path = exporter.FileName(timeNow())
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := exporter.Export(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	cmd.Printf("Exported %d KPI records to %s\n", len(records), path)
	return nil
}

func runKPIForecast(cmd *cobra.Command, args []string) error {
	quantity, err := parseQuantity("quantity", args[0])
	if err != nil {
		return err
	}
	period, err := parsePeriod(kpiFrom, kpiTo)
	if err != nil {
		return err
	}

	c, err := commands.NewRecordForecastCommand(kpiClass, period, quantity)
	if err != nil {
		return err
	}
	if err := app.CreateRecordForecastCommandHandler().Handle(cmd.Context(), c); err != nil {
		return err
	}

	cmd.Printf("Forecast of %s recorded for %s\n", quantity, period)
	return nil
}
