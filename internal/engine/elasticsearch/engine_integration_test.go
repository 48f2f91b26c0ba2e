package elasticsearch_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/engine"
	esengine "github.com/loziogigio/omnicommerce/internal/engine/elasticsearch"
	"github.com/loziogigio/omnicommerce/internal/query"
	"github.com/loziogigio/omnicommerce/pkg/logger"
)

// newTestEngine creates an engine on a fresh index. It skips the test if
// ELASTICSEARCH_URL is not set.
func newTestEngine(t *testing.T) *esengine.Engine {
	t.Helper()

	esURL := os.Getenv("ELASTICSEARCH_URL")
	if esURL == "" {
		t.Skip("ELASTICSEARCH_URL not set, skipping Elasticsearch integration tests")
	}

	indexName := fmt.Sprintf("test_omnicommerce_products_%d", time.Now().UnixNano())
	eng, err := esengine.New(context.Background(), esURL, indexName, logger.Discard())
	require.NoError(t, err, "failed to create Elasticsearch engine")

	t.Cleanup(func() {
		_ = eng.DeleteIndex(context.Background())
	})
	return eng
}

func newTestDoc(sku, name string, price float64, groups string) domain.Record {
	return domain.Record{
		"id":                 domain.StringValue("id-" + sku),
		"sku":                domain.StringValue(sku),
		"slug":               domain.StringValue("slug-" + sku),
		"name":               domain.StringValue(name),
		"net_price_with_vat": domain.NumberValue(price),
		"category":           domain.StringsValue("shoes"),
		"groups":             domain.StringsValue(groups),
		"features":           domain.StringsValue("color:red"),
	}
}

func run(t *testing.T, eng *esengine.Engine, f domain.SearchFilter) *engine.Result {
	t.Helper()
	plan, err := query.Build(f, nil, query.DefaultOptions())
	require.NoError(t, err)
	res, err := eng.Search(context.Background(), engine.NewRequest(plan))
	require.NoError(t, err)
	return res
}

func TestES_Ping(t *testing.T) {
	eng := newTestEngine(t)
	assert.NoError(t, eng.Ping(context.Background()))
}

func TestES_TextPriceAndStats(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.BulkIndex(context.Background(), []domain.Record{
		newTestDoc("A1", "Running Shoe", 40, "men,running"),
		newTestDoc("A2", "City Shoe", 60, "men,city"),
		newTestDoc("A3", "Running Sock", 5, "men,running"),
	}))

	res := run(t, eng, domain.SearchFilter{Text: "running", MinPrice: "10", OrderBy: domain.SortPriceAsc})
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "A1", res.Hits[0].Text("sku"))

	res = run(t, eng, domain.SearchFilter{OrderBy: domain.SortPriceDesc})
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, "A2", res.Hits[0].Text("sku"))
	st := res.Stats[query.PriceField]
	require.NotNil(t, st.Min)
	assert.Equal(t, 5.0, *st.Min)
	assert.Equal(t, 60.0, *st.Max)
	assert.Equal(t, []domain.FacetCount{{Value: "shoes", Count: 3}}, res.Facets[engine.FacetCategory])
}

func TestES_GroupsPrefixAndSlug(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.BulkIndex(context.Background(), []domain.Record{
		newTestDoc("A1", "Running Shoe", 40, "men,running"),
		newTestDoc("A2", "City Shoe", 60, "men,city"),
	}))

	res := run(t, eng, domain.SearchFilter{Category: "men,run"})
	assert.Equal(t, 1, res.Total)

	bySlug, err := eng.Search(context.Background(), engine.NewRequest(query.BySlug("slug-A2")))
	require.NoError(t, err)
	require.Len(t, bySlug.Hits, 1)
	assert.Equal(t, "A2", bySlug.Hits[0].Text("sku"))
}

func TestES_BulkIndex_Empty(t *testing.T) {
	eng := newTestEngine(t)
	assert.NoError(t, eng.BulkIndex(context.Background(), nil))
}
