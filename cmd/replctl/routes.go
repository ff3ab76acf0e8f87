package main

import (
	"fmt"
	"time"

	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Plan and run delivery routes",
}

var routesBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a route from planned orders",
	Long: `Select planned orders of a product class first-fit by urgency, priority and
age until the vehicle is full, then sequence the stops.

Example:
  replctl routes build --vehicle TRK-7 --capacity 38 --date 2025-04-15 --class feed`,
	Args: cobra.NoArgs,
	RunE: runRoutesBuild,
}

var routesShowCmd = &cobra.Command{
	Use:   "show <route-id>",
	Short: "Show a route and its stops",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoutesShow,
}

var routesSequenceCmd = &cobra.Command{
	Use:   "sequence <route-id>",
	Short: "Re-sequence the stops of a planned route",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoutesSequence,
}

var routesActivateCmd = &cobra.Command{
	Use:   "activate <route-id>",
	Short: "Start a planned route",
	Args:  cobra.ExactArgs(1),
	RunE: runRouteAction(func(cmd *cobra.Command, id kernel.UUID) error {
		c, err := commands.NewActivateRouteCommand(id)
		if err != nil {
			return err
		}
		if err := app.CreateActivateRouteCommandHandler().Handle(cmd.Context(), c); err != nil {
			return err
		}
		cmd.Printf("Route %s activated\n", id)
		return nil
	}),
}

var routesCompleteCmd = &cobra.Command{
	Use:   "complete <route-id>",
	Short: "Complete an active route",
	Long: `Complete a route once every stop is done. Orders of stops left undelivered
are returned to planning and listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoutesComplete,
}

var routesCancelCmd = &cobra.Command{
	Use:   "cancel <route-id>",
	Short: "Cancel a route and release its orders",
	Args:  cobra.ExactArgs(1),
	RunE: runRouteAction(func(cmd *cobra.Command, id kernel.UUID) error {
		c, err := commands.NewCancelRouteCommand(id, routeReason)
		if err != nil {
			return err
		}
		released, err := app.CreateCancelRouteCommandHandler().Handle(cmd.Context(), c)
		if err != nil {
			return err
		}
		cmd.Printf("Route %s cancelled, %d orders released\n", id, len(released))
		return nil
	}),
}

var routesDelayCmd = &cobra.Command{
	Use:   "delay <route-id>",
	Short: "Mark an active route as delayed",
	Args:  cobra.ExactArgs(1),
	RunE: runRouteAction(func(cmd *cobra.Command, id kernel.UUID) error {
		c, err := commands.NewDelayRouteCommand(id, routeReason)
		if err != nil {
			return err
		}
		if err := app.CreateDelayRouteCommandHandler().Handle(cmd.Context(), c); err != nil {
			return err
		}
		cmd.Printf("Route %s delayed\n", id)
		return nil
	}),
}

var (
	routeVehicle        string
	routeCapacity       string
	routeDate           string
	routeClass          string
	routeMethod         string
	routeOriginLat      float64
	routeOriginLon      float64
	routeReason         string
	routeActualKm       float64
	routeActualDuration time.Duration
)

func init() {
	f := routesBuildCmd.Flags()
	f.StringVar(&routeVehicle, "vehicle", "", "vehicle identifier (required)")
	f.StringVar(&routeCapacity, "capacity", "", "vehicle capacity (required)")
	f.StringVar(&routeDate, "date", "", "scheduled date, YYYY-MM-DD (default today)")
	f.StringVar(&routeClass, "class", "", "product class to plan")
	f.StringVar(&routeMethod, "method", "", "delivery method (silo_to_silo, compartment_delivery, tote_delivery)")
	f.Float64Var(&routeOriginLat, "origin-lat", 0, "depot latitude")
	f.Float64Var(&routeOriginLon, "origin-lon", 0, "depot longitude")
	_ = routesBuildCmd.MarkFlagRequired("vehicle")
	_ = routesBuildCmd.MarkFlagRequired("capacity")
	routesBuildCmd.MarkFlagsRequiredTogether("origin-lat", "origin-lon")

	routesCancelCmd.Flags().StringVar(&routeReason, "reason", "", "cancellation reason")
	routesDelayCmd.Flags().StringVar(&routeReason, "reason", "", "delay reason (required)")
	_ = routesDelayCmd.MarkFlagRequired("reason")

	routesCompleteCmd.Flags().Float64Var(&routeActualKm, "distance-km", 0, "actual distance driven")
	routesCompleteCmd.Flags().DurationVar(&routeActualDuration, "duration", 0, "actual duration, e.g. 5h30m")

	routesCmd.AddCommand(routesBuildCmd, routesShowCmd, routesSequenceCmd, routesActivateCmd,
		routesCompleteCmd, routesCancelCmd, routesDelayCmd)
}

func runRouteAction(fn func(*cobra.Command, kernel.UUID) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID("route id", args[0])
		if err != nil {
			return err
		}
		return fn(cmd, id)
	}
}

func runRoutesBuild(cmd *cobra.Command, _ []string) error {
	capacity, err := parseQuantity("capacity", routeCapacity)
	if err != nil {
		return err
	}
	date, err := parseTime("date", routeDate, timeNow())
	if err != nil {
		return err
	}

	var origin *kernel.GeoPoint
	if cmd.Flags().Changed("origin-lat") {
		p, err := kernel.NewGeoPoint(routeOriginLat, routeOriginLon)
		if err != nil {
			return err
		}
		origin = &p
	}

	method := route.DeliveryMethodUnknown
	if routeMethod != "" {
		if method, err = route.ParseDeliveryMethod(routeMethod); err != nil {
			return err
		}
	}

	c, err := commands.NewBuildRouteCommand(
		kernel.NewUUID(),
		route.Vehicle{ID: routeVehicle, Capacity: capacity},
		date,
		routeClass,
		origin,
		method,
	)
	if err != nil {
		return err
	}

	result, err := app.CreateBuildRouteCommandHandler().Handle(cmd.Context(), c)
	if err != nil {
		return err
	}

	r := result.Route
	cmd.Printf("Route %s built: %s, %d stops, %s planned\n",
		r.Number(), r.ID(), len(r.Stops()), r.TotalPlannedQuantity())
	printOutcome(cmd, result.Outcome.Provider, result.Outcome.Degraded, result.Outcome.Cause)
	if len(result.Rejected) > 0 {
		cmd.Printf("%d planned orders did not fit the vehicle\n", len(result.Rejected))
	}
	return nil
}

func runRoutesShow(cmd *cobra.Command, args []string) error {
	id, err := parseID("route id", args[0])
	if err != nil {
		return err
	}
	q, err := queries.NewGetRouteQuery(id)
	if err != nil {
		return err
	}
	r, err := app.CreateGetRouteQueryHandler().Handle(cmd.Context(), q)
	if err != nil {
		return err
	}

	cmd.Printf("Route %s (%s) %s, vehicle %s, scheduled %s\n",
		r.Number, r.Type, r.Status, r.VehicleID, r.ScheduledDate.Format(time.DateOnly))
	cmd.Printf("Planned %.1f km, delivered %s, distance per unit %s\n",
		r.PlannedDistanceKm, r.TotalDelivered.StringFixed(2), formatDecimal(r.DistancePerUnit))
	if r.Degraded {
		cmd.Printf("Sequenced by fallback: %s\n", r.DegradedReason)
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "#\tSTOP\tORDER\tSTATUS\tPLANNED\tDELIVERED\tETA\tISSUE")
	for _, st := range r.Stops {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			st.Sequence, st.ID, st.OrderID, st.Status, st.PlannedQuantity.StringFixed(2),
			formatDecimal(st.DeliveredQuantity), formatTime(st.EstimatedArrival), st.IssueDescription)
	}
	return w.Flush()
}

func runRoutesSequence(cmd *cobra.Command, args []string) error {
	return runRouteAction(func(cmd *cobra.Command, id kernel.UUID) error {
		c, err := commands.NewSequenceRouteCommand(id)
		if err != nil {
			return err
		}
		outcome, err := app.CreateSequenceRouteCommandHandler().Handle(cmd.Context(), c)
		if err != nil {
			return err
		}
		printOutcome(cmd, outcome.Provider, outcome.Degraded, outcome.Cause)
		return nil
	})(cmd, args)
}

func runRoutesComplete(cmd *cobra.Command, args []string) error {
	var (
		distance *float64
		duration *time.Duration
	)
	if cmd.Flags().Changed("distance-km") {
		distance = &routeActualKm
	}
	if cmd.Flags().Changed("duration") {
		duration = &routeActualDuration
	}

	return runRouteAction(func(cmd *cobra.Command, id kernel.UUID) error {
		c, err := commands.NewCompleteRouteCommand(id, distance, duration)
		if err != nil {
			return err
		}
		undelivered, err := app.CreateCompleteRouteCommandHandler().Handle(cmd.Context(), c)
		if err != nil {
			return err
		}
		cmd.Printf("Route %s completed\n", id)
		for _, orderID := range undelivered {
			cmd.Printf("  order %s returned to planning\n", orderID)
		}
		return nil
	})(cmd, args)
}

func printOutcome(cmd *cobra.Command, provider string, degraded bool, cause error) {
	if degraded {
		cmd.Printf("Stops sequenced by %s fallback: %v\n", provider, cause)
		return
	}
	cmd.Printf("Stops sequenced by %s\n", provider)
}
