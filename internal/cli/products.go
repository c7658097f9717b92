package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dtroode/storefront/internal/model"
)

func newProductsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
	}
	cmd.AddCommand(newProductsListCmd(app), newProductsShowCmd(app))
	return cmd
}

func newProductsListCmd(app *App) *cobra.Command {
	var (
		filter   model.ProductFilter
		ordering string
		minPrice string
		maxPrice string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Ordering = model.ProductOrdering(ordering)
			switch filter.Ordering {
			case "", model.OrderByName, model.OrderByPriceAsc, model.OrderByPriceDesc, model.OrderByAvailability:
			default:
				return fmt.Errorf("unknown ordering %q", ordering)
			}

			var err error
			if filter.MinPrice, err = parsePrice(minPrice); err != nil {
				return err
			}
			if filter.MaxPrice, err = parsePrice(maxPrice); err != nil {
				return err
			}

			page, err := app.Catalog.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(page.Results) == 0 {
				fmt.Fprintln(out, "No products found.")
				return nil
			}

			rows := make([][]string, 0, len(page.Results))
			for _, p := range page.Results {
				rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Name, formatPrice(p.Price), stockLabel(p.Stock)})
			}
			renderTable(out, []string{"ID", "Name", "Price", "Stock"}, rows)
			fmt.Fprintf(out, "%d products", page.Count)
			if page.Next != "" {
				fmt.Fprintf(out, ", more with --page %d", max(filter.Page, 1)+1)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&filter.Page, "page", 0, "page number")
	cmd.Flags().StringVar(&filter.Search, "search", "", "search in name and description")
	cmd.Flags().StringVar(&ordering, "order", "", "ordering: nombre, precio, -precio or -stock")
	cmd.Flags().StringVar(&minPrice, "min-price", "", "minimum price")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "maximum price")
	cmd.Flags().BoolVar(&filter.InStock, "in-stock", false, "only products in stock")

	return cmd
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", s)
	}
	return &d, nil
}

func stockLabel(stock int) string {
	if stock <= 0 {
		return "out of stock"
	}
	return strconv.Itoa(stock)
}

func newProductsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.Catalog.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printTitle(out, p.Name)
			if p.Description != "" {
				fmt.Fprintln(out, p.Description)
			}
			fmt.Fprintf(out, "Price: %s\nStock: %s\n", formatPrice(p.Price), stockLabel(p.Stock))
			if item, ok := app.Cart.Item(p.ID); ok {
				fmt.Fprintf(out, "In cart: %d\n", item.Quantity)
			}
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
