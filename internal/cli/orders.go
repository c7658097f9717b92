package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/storefront/internal/model"
	"github.com/dtroode/storefront/internal/service"
)

func newOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show your order history",
	}
	cmd.AddCommand(newOrdersListCmd(app), newOrdersShowCmd(app))
	return cmd
}

func requireLogin(app *App) error {
	if !app.Session.IsAuthenticated() {
		return service.ErrLoginRequired
	}
	return nil
}

func detailName(d model.OrderDetail) string {
	if d.Product.Product != nil && d.Product.Product.Name != "" {
		return d.Product.Product.Name
	}
	return fmt.Sprintf("product #%d", d.Product.ID)
}

func newOrdersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your orders with their products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}
			orders, err := app.Orders.History(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(orders) == 0 {
				fmt.Fprintln(out, "You have no orders yet.")
				return nil
			}

			rows := make([][]string, 0, len(orders))
			for _, o := range orders {
				names := make([]string, 0, len(o.Products))
				for _, d := range o.Products {
					names = append(names, fmt.Sprintf("%d x %s", d.Quantity, detailName(d)))
				}
				rows = append(rows, []string{
					strconv.FormatInt(o.ID, 10),
					formatDate(o.Date),
					o.Status.Label(),
					formatPrice(o.Total),
					strings.Join(names, ", "),
				})
			}
			renderTable(out, []string{"Order", "Date", "Status", "Total", "Products"}, rows)
			return nil
		},
	}
}

func newOrdersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			o, err := app.Orders.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printTitle(out, fmt.Sprintf("Order #%d", o.ID))
			fmt.Fprintf(out, "Date: %s\nStatus: %s\n", formatDate(o.Date), o.Status.Label())

			rows := make([][]string, 0, len(o.Products))
			for _, d := range o.Products {
				rows = append(rows, []string{detailName(d), strconv.Itoa(d.Quantity), formatPrice(d.UnitPrice), formatPrice(d.Subtotal)})
			}
			if len(rows) > 0 {
				renderTable(out, []string{"Product", "Qty", "Price", "Subtotal"}, rows)
			}
			fmt.Fprintf(out, "Total: %s\n", formatPrice(o.Total))
			return nil
		},
	}
}
