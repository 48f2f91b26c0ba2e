// Package cli implements the catalogctl commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loziogigio/omnicommerce/internal/domain"
)

// Catalogue is the service surface the commands run against.
type Catalogue interface {
	Search(ctx context.Context, f domain.SearchFilter, userID string) (*domain.SearchResponse, error)
	ProductBySlug(ctx context.Context, slug string) (*domain.ProductDetail, error)
}

// Opener connects the catalogue on first use. The returned close func
// releases whatever the opener acquired.
type Opener func(ctx context.Context) (Catalogue, func() error, error)

// Indexer is a search index that seed documents can be written to.
type Indexer interface {
	BulkIndex(ctx context.Context, docs []domain.Record) error
	ResetIndex(ctx context.Context) error
}

// IndexOpener connects the index written by seed --index.
type IndexOpener func(ctx context.Context) (Indexer, error)

// NewRootCommand builds the catalogctl command tree.
func NewRootCommand(open Opener, openIndex IndexOpener) *cobra.Command {
	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Query the storefront catalogue from a shell",
		Long: `catalogctl runs catalogue searches and product lookups against the
configured search engine and database, using the same environment
configuration as the catalogue service.`,
		SilenceUsage: true,
	}
	root.AddCommand(newSearchCommand(open), newProductCommand(open), newSeedCommand(openIndex))
	return root
}

// withCatalogue opens the catalogue, runs fn and closes it again.
func withCatalogue(cmd *cobra.Command, open Opener, fn func(ctx context.Context, c Catalogue) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, closeFn, err := open(ctx)
	if err != nil {
		return fmt.Errorf("open catalogue: %w", err)
	}
	defer func() { _ = closeFn() }()

	return fn(ctx, c)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}
