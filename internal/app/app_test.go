package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loziogigio/omnicommerce/internal/config"
	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/engine"
	"github.com/loziogigio/omnicommerce/internal/query"
	"github.com/loziogigio/omnicommerce/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		SearchEngine:        config.EngineMemory,
		SearchTimeout:       time.Second,
		SolrURL:             "http://localhost:8983/solr",
		SolrCore:            "products",
		DefaultPerPage:      24,
		MaxPerPage:          48,
		EmptyWishlistPolicy: config.WishlistNoResults,
	}
}

func TestNewEngine_MemorySeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "1", "sku": "A1", "name": "Red Shoe", "net_price_with_vat": 10},
		{"id": "2", "sku": "A2", "name": "Blue Shoe", "net_price_with_vat": 20}
	]`), 0o600))

	cfg := testConfig()
	cfg.MemorySeedFile = path

	eng, err := NewEngine(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, "memory", eng.Name())
	assert.NoError(t, eng.Ping(context.Background()))

	res, err := eng.Search(context.Background(), engine.NewRequest(query.BySlug("red-shoe")))
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "A1", res.Hits[0].Text("sku"))
}

func TestNewEngine_MemoryWithoutSeed(t *testing.T) {
	eng, err := NewEngine(context.Background(), testConfig(), logger.Discard())
	require.NoError(t, err)

	plan, err := query.Build(domain.SearchFilter{}, nil, query.DefaultOptions())
	require.NoError(t, err)
	res, err := eng.Search(context.Background(), engine.NewRequest(plan))
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestNewEngine_Errors(t *testing.T) {
	t.Run("missing seed file", func(t *testing.T) {
		cfg := testConfig()
		cfg.MemorySeedFile = filepath.Join(t.TempDir(), "missing.json")
		_, err := NewEngine(context.Background(), cfg, logger.Discard())
		assert.ErrorContains(t, err, "open memory seed file")
	})

	t.Run("malformed seed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o600))
		cfg := testConfig()
		cfg.MemorySeedFile = path
		_, err := NewEngine(context.Background(), cfg, logger.Discard())
		assert.ErrorContains(t, err, "seed memory engine")
	})

	t.Run("invalid solr url", func(t *testing.T) {
		cfg := testConfig()
		cfg.SearchEngine = config.EngineSolr
		cfg.SolrURL = "not a url"
		_, err := NewEngine(context.Background(), cfg, logger.Discard())
		assert.ErrorContains(t, err, "init solr engine")
	})
}

func TestNewEngine_Solr(t *testing.T) {
	cfg := testConfig()
	cfg.SearchEngine = config.EngineSolr

	eng, err := NewEngine(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, "solr", eng.Name())
}

func TestQueryOptions(t *testing.T) {
	assert.Equal(t, query.Options{
		DefaultPerPage: 24,
		MaxPerPage:     48,
		EmptyWishlist:  query.WishlistNoResults,
	}, QueryOptions(testConfig()))
}
