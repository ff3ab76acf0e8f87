package main

import (
	"fmt"

	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/application/usecases/queries"

	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Inspect and replenish storage sites",
}

var sitesLowStockCmd = &cobra.Command{
	Use:   "low-stock",
	Short: "List sites at or below their low-stock threshold",
	Args:  cobra.NoArgs,
	RunE:  runSitesLowStock,
}

var sitesReplenishCmd = &cobra.Command{
	Use:   "replenish",
	Short: "Raise orders for low-stock sites now",
	Long: `Run the proactive replenishment job once. Every low-stock site without an
open order gets an order topping it up to capacity; sites at the emergency
level get an emergency order that waits for approval.`,
	Args: cobra.NoArgs,
	RunE: runSitesReplenish,
}

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "Feed sensor readings",
}

var sensorsApplyCmd = &cobra.Command{
	Use:   "apply <site-id> <quantity>",
	Short: "Apply a sensor reading to a site",
	Long: `Set the current quantity of a site from a sensor reading. Readings older
than the last applied one are ignored and negative readings count as empty.

Example:
  replctl sensors apply 5f0c... 12.5 --at 2025-04-14T08:00:00Z
  replctl sensors apply --at 2025-04-14T09:00:00Z -- 5f0c... -0.2`,
	Args: cobra.ExactArgs(2),
	RunE: runSensorsApply,
}

var sensorReadingAt string

func init() {
	sensorsApplyCmd.Flags().StringVar(&sensorReadingAt, "at", "", "reading time, RFC 3339 (default now)")

	sitesCmd.AddCommand(sitesLowStockCmd, sitesReplenishCmd)
	sensorsCmd.AddCommand(sensorsApplyCmd)
}

func runSitesLowStock(cmd *cobra.Command, _ []string) error {
	sites, err := app.CreateGetLowStockSitesQueryHandler().Handle(cmd.Context(), queries.NewGetLowStockSitesQuery())
	if err != nil {
		return err
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "ID\tNAME\tPRIORITY\tCURRENT\tCAPACITY\tREMAINING %\tOPEN ORDERS")
	for _, s := range sites {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			s.ID, s.Name, s.Priority, s.CurrentQuantity, s.Capacity, s.PercentageRemaining.StringFixed(2), s.OpenOrders)
	}
	return w.Flush()
}

func runSitesReplenish(cmd *cobra.Command, _ []string) error {
	created, err := app.CreateProactiveReplenishmentJob().RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "ORDER\tSITE\tTYPE\tQUANTITY\tAPPROVAL")
	for _, o := range created {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", o.Number(), o.SiteID(), o.Type(), o.RequestedQuantity(), o.RequiresApproval())
	}
	return w.Flush()
}

func runSensorsApply(cmd *cobra.Command, args []string) error {
	siteID, err := parseID("site id", args[0])
	if err != nil {
		return err
	}
	quantity, err := parseReading(args[1])
	if err != nil {
		return err
	}
	at, err := parseTime("at", sensorReadingAt, timeNow())
	if err != nil {
		return err
	}

	reading, err := commands.NewApplySensorReadingCommand(siteID, quantity, at)
	if err != nil {
		return err
	}
	applied, err := app.CreateApplySensorReadingCommandHandler().Handle(cmd.Context(), reading)
	if err != nil {
		return err
	}

	if applied {
		cmd.Printf("Reading applied to site %s: %s\n", siteID, quantity)
	} else {
		cmd.Printf("Reading for site %s is older than the last one and was ignored\n", siteID)
	}
	return nil
}
