package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/pkg/slug"
)

// seedCategory is a top-level group with the leaf groups products are
// spread over.
type seedCategory struct {
	Name   string
	Weight float64
	Leaves []string
}

var seedCategories = []seedCategory{
	{Name: "Uomo", Weight: 0.35, Leaves: []string{"Scarpe", "Giacche", "Camicie", "Pantaloni"}},
	{Name: "Donna", Weight: 0.35, Leaves: []string{"Scarpe", "Borse", "Vestiti", "Gonne"}},
	{Name: "Casa", Weight: 0.20, Leaves: []string{"Cucina", "Bagno", "Tessili"}},
	{Name: "Bambini", Weight: 0.10, Leaves: []string{"Giochi", "Abbigliamento"}},
}

var (
	seedBrands   = []string{"Aurora", "Borgo", "Corallo", "Dolomia", "Etna", "Fiordo"}
	seedPrefixes = []string{"Classico", "Sportivo", "Elegante", "Leggero", "Imbottito", "Vintage"}
	seedColors   = []string{"Nero", "Bianco", "Rosso", "Blu", "Verde", "Grigio", "Beige"}
	seedSizes    = []string{"S", "M", "L", "XL"}
)

const familySize = 4

func newSeedCommand(openIndex IndexOpener) *cobra.Command {
	var (
		count  int
		output string
		seed   uint64
		index  bool
		reset  bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate catalogue seed documents",
		Long: `Writes a deterministic JSON array of catalogue documents, suitable for
MEMORY_SEED_FILE. The same --seed always produces the same documents.

With --index the documents are bulk indexed into the Elasticsearch index
named by ELASTICSEARCH_URL and ELASTICSEARCH_INDEX instead of being
printed; --output still writes them to a file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			if reset && !index {
				return fmt.Errorf("--reset requires --index")
			}

			docs := GenerateProducts(count, seed)
			toFile := output != "" && output != "-"
			if toFile || !index {
				if err := writeSeed(cmd, docs, output, toFile); err != nil {
					return err
				}
			}
			if !index {
				return nil
			}
			return indexSeed(cmd, openIndex, docs, reset)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 500, "number of documents")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().BoolVar(&index, "index", false, "bulk index the documents into Elasticsearch")
	cmd.Flags().BoolVar(&reset, "reset", false, "drop and recreate the index first (with --index)")
	return cmd
}

func writeSeed(cmd *cobra.Command, docs []domain.Record, output string, toFile bool) error {
	w := cmd.OutOrStdout()
	if toFile {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create seed file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("write seed documents: %w", err)
	}
	if toFile {
		cmd.Printf("Wrote %d documents to %s\n", len(docs), output)
	}
	return nil
}

// seedBatchSize bounds the documents sent in one bulk request.
const seedBatchSize = 500

func indexSeed(cmd *cobra.Command, openIndex IndexOpener, docs []domain.Record, reset bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	idx, err := openIndex(ctx)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	if reset {
		if err := idx.ResetIndex(ctx); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
	}

	for batch := range slices.Chunk(docs, seedBatchSize) {
		if err := idx.BulkIndex(ctx, batch); err != nil {
			return fmt.Errorf("index seed documents: %w", err)
		}
	}
	cmd.Printf("Indexed %d documents\n", len(docs))
	return nil
}

// GenerateProducts builds count catalogue documents. Consecutive products
// share a family code in groups of familySize.
func GenerateProducts(count int, seed uint64) []domain.Record {
	rng := rand.New(rand.NewPCG(seed, seed))
	docs := make([]domain.Record, 0, count)

	remaining := count
	for i, cat := range seedCategories {
		n := int(float64(count) * cat.Weight)
		if i == len(seedCategories)-1 {
			n = remaining
		}
		remaining -= n

		for j := range n {
			docs = append(docs, generateProduct(rng, len(docs), cat, cat.Leaves[j%len(cat.Leaves)]))
		}
	}
	return docs
}

func generateProduct(rng *rand.Rand, idx int, cat seedCategory, leaf string) domain.Record {
	prefix := seedPrefixes[rng.IntN(len(seedPrefixes))]
	color := seedColors[rng.IntN(len(seedColors))]
	brand := seedBrands[idx%len(seedBrands)]
	name := fmt.Sprintf("%s %s %s", leaf, prefix, color)
	sku := fmt.Sprintf("SKU%05d", idx+1)

	// Prices in whole cents, VAT included.
	price := float64(990+rng.IntN(49000)) / 100
	promo := 0.0
	isPromo := rng.IntN(5) == 0
	if isPromo {
		promo = float64(int(price*70)) / 100
	}

	groupPath := slug.Segment(cat.Name) + "," + slug.Segment(leaf)
	size := seedSizes[rng.IntN(len(seedSizes))]

	return domain.Record{
		"id":                   domain.StringValue(strconv.Itoa(idx + 1)),
		"sku":                  domain.StringValue(sku),
		"slug":                 domain.StringValue(slug.Generate(name) + "-" + strings.ToLower(sku)),
		"name":                 domain.StringValue(name),
		"name_web":             domain.StringValue(fmt.Sprintf("%s %s di %s", leaf, strings.ToLower(prefix), brand)),
		"brand":                domain.StringValue(brand),
		"family_code":          domain.StringValue(fmt.Sprintf("FAM%04d", idx/familySize+1)),
		"gross_price_with_vat": domain.NumberValue(price),
		"net_price_with_vat":   domain.NumberValue(price),
		"promo_price_with_vat": domain.NumberValue(promo),
		"is_promo":             domain.BoolValue(isPromo),
		"availability":         domain.NumberValue(float64(rng.IntN(50))),
		"images":               domain.StringsValue(strings.ToLower(sku) + ".jpg"),
		"category":             domain.StringsValue(leaf),
		"groups":               domain.StringsValue(groupPath),
		"group_1":              domain.StringValue(cat.Name),
		"group_2":              domain.StringValue(leaf),
		"features":             domain.StringsValue("Colore:"+color, "Taglia:"+size),
		"product_brands": domain.RecordsValue(domain.Record{
			"name": domain.StringValue(brand),
			"slug": domain.StringValue(slug.Generate(brand)),
		}),
	}
}
