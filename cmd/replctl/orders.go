package main

import (
	"fmt"

	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/application/usecases/queries"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"

	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Manage replenishment orders",
}

var ordersCreateCmd = &cobra.Command{
	Use:   "create <site-id> <quantity>",
	Short: "Create an order for a site",
	Args:  cobra.ExactArgs(2),
	RunE:  runOrdersCreate,
}

var ordersPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List orders awaiting delivery",
	Args:  cobra.NoArgs,
	RunE:  runOrdersPending,
}

var ordersApproveCmd = &cobra.Command{
	Use:   "approve <order-id>",
	Short: "Approve an order that requires approval",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersApprove,
}

var ordersConfirmCmd = &cobra.Command{
	Use:   "confirm <order-id>",
	Short: "Confirm a pending order",
	Args:  cobra.ExactArgs(1),
	RunE: runOrderTransition(func(id kernel.UUID, cmd *cobra.Command) error {
		c, err := commands.NewConfirmOrderCommand(id)
		if err != nil {
			return err
		}
		return app.CreateConfirmOrderCommandHandler().Handle(cmd.Context(), c)
	}, "confirmed"),
}

var ordersPlanCmd = &cobra.Command{
	Use:   "plan <order-id>",
	Short: "Admit an order to route planning for a period",
	Long: `Record the planning period of an order and move it to planned. Orders that
require approval must be approved first.

Example:
  replctl orders plan 5f0c... --from 2025-04-14 --to 2025-04-21`,
	Args: cobra.ExactArgs(1),
	RunE: runOrdersPlan,
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel an order",
	Args:  cobra.ExactArgs(1),
	RunE: runOrderTransition(func(id kernel.UUID, cmd *cobra.Command) error {
		c, err := commands.NewCancelOrderCommand(id)
		if err != nil {
			return err
		}
		return app.CreateCancelOrderCommandHandler().Handle(cmd.Context(), c)
	}, "cancelled"),
}

var ordersRequeueCmd = &cobra.Command{
	Use:   "requeue <order-id>",
	Short: "Return an undelivered order to the planning queue",
	Args:  cobra.ExactArgs(1),
	RunE: runOrderTransition(func(id kernel.UUID, cmd *cobra.Command) error {
		c, err := commands.NewRequeueOrderCommand(id)
		if err != nil {
			return err
		}
		return app.CreateRequeueOrderCommandHandler().Handle(cmd.Context(), c)
	}, "requeued"),
}

var (
	orderType         string
	orderPriority     string
	orderProductClass string
	orderApprover     string
	orderFrom         string
	orderTo           string
)

func init() {
	ordersCreateCmd.Flags().StringVar(&orderType, "type", order.TypeContract.String(), "order type (contract, on_demand, proactive, emergency)")
	ordersCreateCmd.Flags().StringVar(&orderPriority, "priority", order.PriorityMedium.String(), "order priority (low, medium, high, urgent)")
	ordersCreateCmd.Flags().StringVar(&orderProductClass, "class", "", "product class")
	ordersPendingCmd.Flags().StringVar(&orderProductClass, "class", "", "only orders of this product class")
	ordersApproveCmd.Flags().StringVar(&orderApprover, "approver", "", "name of the approver (required)")
	_ = ordersApproveCmd.MarkFlagRequired("approver")
	ordersPlanCmd.Flags().StringVar(&orderFrom, "from", "", "planning period start, YYYY-MM-DD (required)")
	ordersPlanCmd.Flags().StringVar(&orderTo, "to", "", "planning period end, exclusive (required)")

	ordersCmd.AddCommand(ordersCreateCmd, ordersPendingCmd, ordersApproveCmd, ordersConfirmCmd,
		ordersPlanCmd, ordersCancelCmd, ordersRequeueCmd)
}

// runOrderTransition parses the order id argument and runs fn with it.
func runOrderTransition(fn func(kernel.UUID, *cobra.Command) error, done string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID("order id", args[0])
		if err != nil {
			return err
		}
		if err := fn(id, cmd); err != nil {
			return err
		}
		cmd.Printf("Order %s %s\n", id, done)
		return nil
	}
}

func runOrdersCreate(cmd *cobra.Command, args []string) error {
	siteID, err := parseID("site id", args[0])
	if err != nil {
		return err
	}
	quantity, err := parseQuantity("quantity", args[1])
	if err != nil {
		return err
	}
	t, err := order.ParseType(orderType)
	if err != nil {
		return err
	}
	p, err := order.ParsePriority(orderPriority)
	if err != nil {
		return err
	}

	c, err := commands.NewCreateOrderCommand(kernel.NewUUID(), siteID, order.Request{
		Quantity:     quantity,
		Type:         t,
		Priority:     p,
		ProductClass: orderProductClass,
	})
	if err != nil {
		return err
	}

	o, err := app.CreateCreateOrderCommandHandler().Handle(cmd.Context(), c)
	if err != nil {
		return err
	}

	cmd.Printf("Order %s created: %s (%s, %s", o.Number(), o.ID(), o.Status(), o.Priority())
	if o.RequiresApproval() {
		cmd.Print(", requires approval")
	}
	cmd.Println(")")
	return nil
}

func runOrdersPending(cmd *cobra.Command, _ []string) error {
	pending, err := app.CreateGetPendingOrdersQueryHandler().Handle(cmd.Context(), queries.NewGetPendingOrdersQuery(orderProductClass))
	if err != nil {
		return err
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "NUMBER\tID\tSITE\tQUANTITY\tTYPE\tPRIORITY\tSTATUS\tAPPROVAL")
	for _, o := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			o.Number, o.ID, o.SiteName, o.RequestedQuantity.StringFixed(2), o.Type, o.Priority, o.Status, o.RequiresApproval)
	}
	return w.Flush()
}

func runOrdersApprove(cmd *cobra.Command, args []string) error {
	return runOrderTransition(func(id kernel.UUID, cmd *cobra.Command) error {
		c, err := commands.NewApproveOrderCommand(id, orderApprover)
		if err != nil {
			return err
		}
		return app.CreateApproveOrderCommandHandler().Handle(cmd.Context(), c)
	}, "approved")(cmd, args)
}

func runOrdersPlan(cmd *cobra.Command, args []string) error {
	period, err := parsePeriod(orderFrom, orderTo)
	if err != nil {
		return err
	}
	return runOrderTransition(func(id kernel.UUID, cmd *cobra.Command) error {
		c, err := commands.NewPlanOrderCommand(id, period)
		if err != nil {
			return err
		}
		return app.CreatePlanOrderCommandHandler().Handle(cmd.Context(), c)
	}, "planned")(cmd, args)
}
