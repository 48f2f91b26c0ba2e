package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/loziogigio/omnicommerce/internal/domain"
)

func newProductCommand(open Opener) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "product <slug>",
		Short: "Show a product page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalogue(cmd, open, func(ctx context.Context, c Catalogue) error {
				detail, err := c.ProductBySlug(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return outputJSON(cmd, detail)
				}
				printProduct(cmd, detail)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the full product page as JSON")
	return cmd
}

func printProduct(cmd *cobra.Command, d *domain.ProductDetail) {
	p := d.Product
	cmd.Printf("%s  %s\n", p.SKU, p.Name)
	cmd.Printf("  Price: %s\n", formatPrice(p.Price))
	if p.SalePrice != nil {
		cmd.Printf("  Sale:  %s\n", formatPrice(p.SalePrice))
	}
	if p.ShortDescription != "" {
		cmd.Printf("  %s\n", p.ShortDescription)
	}

	if len(d.Categories) > 0 {
		cmd.Print("  Categories:")
		for _, c := range d.Categories {
			cmd.Printf(" > %s", c.Label)
		}
		cmd.Println()
	}
	for _, f := range p.Features {
		cmd.Printf("  %s: %s %s\n", f.Name, f.Value, f.UOM)
	}
	cmd.Printf("  Reviews: %d, related products: %d\n", len(p.ItemReviews), len(d.RelatedProducts))
}
