package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loziogigio/omnicommerce/internal/domain"
)

type searchOptions struct {
	minPrice string
	maxPrice string
	skus     string
	orderBy  string
	page     int
	perPage  int
	asJSON   bool
}

func newSearchCommand(open Opener) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the catalogue",
		Long: `Runs a catalogue search with the same filters the /catalogue endpoint
accepts. Without a term every product matches.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.filter()
			if len(args) == 1 {
				f.Text = args[0]
			}
			return withCatalogue(cmd, open, func(ctx context.Context, c Catalogue) error {
				resp, err := c.Search(ctx, f, "")
				if err != nil {
					return err
				}
				if opts.asJSON {
					return outputJSON(cmd, resp)
				}
				printSearch(cmd, resp)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.minPrice, "min-price", "", "minimum price")
	flags.StringVar(&opts.maxPrice, "max-price", "", "maximum price")
	flags.StringVar(&opts.skus, "sku", "", "semicolon-separated SKU list")
	flags.StringVar(&opts.orderBy, "order-by", "", "sort order (price-asc, price-desc)")
	flags.IntVar(&opts.page, "page", 1, "page number")
	flags.IntVar(&opts.perPage, "per-page", 0, "results per page (0 uses the configured default)")
	flags.BoolVar(&opts.asJSON, "json", false, "output the full response as JSON")
	return cmd
}

func (o *searchOptions) filter() domain.SearchFilter {
	f := domain.SearchFilter{
		MinPrice: o.minPrice,
		MaxPrice: o.maxPrice,
		OrderBy:  o.orderBy,
		Page:     o.page,
		PerPage:  o.perPage,
	}
	if o.skus != "" {
		f.SKUs = strings.Split(o.skus, ";")
	}
	return f
}

func printSearch(cmd *cobra.Command, resp *domain.SearchResponse) {
	if len(resp.Products) == 0 {
		cmd.Println("No products found.")
		return
	}

	cmd.Printf("%d products, page %d of %d\n\n", resp.TotalCount, resp.CurrentPage, resp.Pages)
	for i, p := range resp.Products {
		cmd.Printf("  [%d] %s  %s  %s", i+1, p.SKU, p.Name, formatPrice(p.Price))
		if p.SalePrice != nil {
			cmd.Printf(" (sale %s)", formatPrice(p.SalePrice))
		}
		cmd.Println()
	}
	if resp.MinPriceAll != nil && resp.MaxPriceAll != nil {
		cmd.Printf("\nPrice range: %d - %d\n", *resp.MinPriceAll, *resp.MaxPriceAll)
	}
}
