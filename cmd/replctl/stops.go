package main

import (
	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/domain/model/kernel"

	"github.com/spf13/cobra"
)

var stopsCmd = &cobra.Command{
	Use:   "stops",
	Short: "Record delivery progress at route stops",
}

var stopsStartCmd = &cobra.Command{
	Use:   "start <route-id> <stop-id>",
	Short: "Record arrival at a stop",
	Args:  cobra.ExactArgs(2),
	RunE: runStopAction(func(cmd *cobra.Command, routeID, stopID kernel.UUID) error {
		at, err := parseTime("at", stopAt, timeNow())
		if err != nil {
			return err
		}
		c, err := commands.NewStartStopCommand(routeID, stopID, at)
		if err != nil {
			return err
		}
		if err := app.CreateStartStopCommandHandler().Handle(cmd.Context(), c); err != nil {
			return err
		}
		cmd.Printf("Stop %s started\n", stopID)
		return nil
	}),
}

var stopsFulfillCmd = &cobra.Command{
	Use:   "fulfill <route-id> <stop-id> <quantity>",
	Short: "Record the quantity delivered at a stop",
	Long: `Record a delivery. The site ledger is credited up to its capacity and the
order is delivered on the first fulfillment.

Example:
  replctl stops fulfill 9a1d... 4c2e... 12.5`,
	Args: cobra.ExactArgs(3),
	RunE: runStopsFulfill,
}

var stopsIssueCmd = &cobra.Command{
	Use:   "issue <route-id> <stop-id>",
	Short: "Flag an issue at a stop",
	Args:  cobra.ExactArgs(2),
	RunE: runStopAction(func(cmd *cobra.Command, routeID, stopID kernel.UUID) error {
		c, err := commands.NewFlagStopIssueCommand(routeID, stopID, stopIssue, stopResolution)
		if err != nil {
			return err
		}
		if err := app.CreateFlagStopIssueCommandHandler().Handle(cmd.Context(), c); err != nil {
			return err
		}
		cmd.Printf("Issue flagged on stop %s\n", stopID)
		return nil
	}),
}

var (
	stopAt         string
	stopIssue      string
	stopResolution string
)

func init() {
	stopsStartCmd.Flags().StringVar(&stopAt, "at", "", "arrival time, RFC 3339 (default now)")
	stopsFulfillCmd.Flags().StringVar(&stopAt, "at", "", "completion time, RFC 3339 (default now)")
	stopsIssueCmd.Flags().StringVar(&stopIssue, "description", "", "what went wrong (required)")
	stopsIssueCmd.Flags().StringVar(&stopResolution, "resolution", "", "how it was handled")
	_ = stopsIssueCmd.MarkFlagRequired("description")

	stopsCmd.AddCommand(stopsStartCmd, stopsFulfillCmd, stopsIssueCmd)
}

func runStopAction(fn func(*cobra.Command, kernel.UUID, kernel.UUID) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		routeID, err := parseID("route id", args[0])
		if err != nil {
			return err
		}
		stopID, err := parseID("stop id", args[1])
		if err != nil {
			return err
		}
		return fn(cmd, routeID, stopID)
	}
}

func runStopsFulfill(cmd *cobra.Command, args []string) error {
	quantity, err := parseQuantity("quantity", args[2])
	if err != nil {
		return err
	}

	return runStopAction(func(cmd *cobra.Command, routeID, stopID kernel.UUID) error {
		at, err := parseTime("at", stopAt, timeNow())
		if err != nil {
			return err
		}
		c, err := commands.NewFulfillStopCommand(routeID, stopID, quantity, at)
		if err != nil {
			return err
		}
		result, err := app.CreateFulfillStopCommandHandler().Handle(cmd.Context(), c)
		if err != nil {
			return err
		}

		cmd.Printf("Stop %s fulfilled: %s delivered, %s credited to the site\n", stopID, result.Delta, result.Applied)
		if !result.Delta.Equal(result.Applied) {
			cmd.Println("The site reached capacity; the excess was not credited")
		}
		return nil
	})(cmd, args)
}
