package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dtroode/storefront/internal/model"
)

func newCartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}
	cmd.AddCommand(
		newCartShowCmd(app),
		newCartAddCmd(app),
		newCartSetCmd(app),
		newCartRemoveCmd(app),
		newCartClearCmd(app),
	)
	return cmd
}

func printCart(cmd *cobra.Command, c model.Cart) {
	out := cmd.OutOrStdout()
	if c.IsEmpty() {
		fmt.Fprintln(out, "Your cart is empty.")
		return
	}

	rows := make([][]string, 0, len(c.Items))
	for _, item := range c.Items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ProductID(), 10),
			item.Name,
			formatPrice(item.UnitPrice()),
			strconv.Itoa(item.Quantity),
			formatPrice(item.Subtotal()),
		})
	}
	renderTable(out, []string{"ID", "Product", "Price", "Qty", "Subtotal"}, rows)
	fmt.Fprintf(out, "Items: %d\nTotal: %s\n", c.ItemCount(), formatPrice(c.Total()))
}

func newCartShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printCart(cmd, app.Cart.Snapshot())
			return nil
		},
	}
}

func parseQuantity(s string) (int, error) {
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return q, nil
}

func newCartAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty := 1
			if len(args) == 2 {
				if qty, err = parseQuantity(args[1]); err != nil {
					return err
				}
			}
			if qty < 1 {
				return model.ErrInvalidQuantity
			}

			p, err := app.Catalog.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			inCart := 0
			if item, ok := app.Cart.Item(id); ok {
				inCart = item.Quantity
			}
			if p.Stock <= 0 {
				return fmt.Errorf("%s is out of stock", p.Name)
			}
			if inCart+qty > p.Stock {
				return fmt.Errorf("only %d of %s in stock (%d already in cart)", p.Stock, p.Name, inCart)
			}

			if err := app.Cart.AddItem(cmd.Context(), *p, qty); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d x %s. Cart total: %s\n", qty, p.Name, formatPrice(app.Cart.Total()))
			return nil
		},
	}
}

func newCartSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a product in the cart; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}

			item, ok := app.Cart.Item(id)
			if !ok {
				return fmt.Errorf("product %d is not in the cart", id)
			}
			if qty > item.Stock {
				return fmt.Errorf("only %d of %s in stock", item.Stock, item.Name)
			}

			app.Cart.UpdateQuantity(cmd.Context(), id, qty)
			printCart(cmd, app.Cart.Snapshot())
			return nil
		},
	}
}

func newCartRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app.Cart.RemoveItem(cmd.Context(), id)
			printCart(cmd, app.Cart.Snapshot())
			return nil
		},
	}
}

func newCartClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.Cart.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
			return nil
		},
	}
}

func newCheckoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order with the cart contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			total := app.Cart.Total()
			order, err := app.Checkout.PlaceOrder(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d placed (%s). Status: %s\n", order.ID, formatPrice(total), order.Status.Label())
			return nil
		},
	}
}
