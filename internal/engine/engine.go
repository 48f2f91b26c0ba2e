// Package engine defines the search gateway used by the catalogue and the
// adapters that implement it.
package engine

import (
	"context"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/query"
)

// Engine executes catalogue queries against a document index.
// Implementations may use Solr, Elasticsearch, or in-memory storage.
type Engine interface {
	// Search runs one query and returns the requested window of hits plus
	// facet counts and statistics computed over the whole result set.
	Search(ctx context.Context, req Request) (*Result, error)

	// Ping checks that the index is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and metrics.
	Name() string
}

// Request is one gateway call.
type Request struct {
	Query       query.Query
	Start       int
	Rows        int
	Sort        *query.Sort
	StatsField  string
	FacetFields []string
	Params      map[string]string
}

// Result is what the index answered.
type Result struct {
	Hits   []domain.Record
	Total  int
	Facets map[string][]domain.FacetCount
	Stats  map[string]domain.FieldStats
}

// Catalogue facet fields.
const (
	FacetCategory = "category"
	FacetFeatures = "features"
)

// NewRequest builds the gateway request for a plan.
func NewRequest(plan *query.Plan) Request {
	return Request{
		Query:       plan.Query,
		Start:       plan.Page.Start,
		Rows:        plan.Page.PerPage,
		Sort:        plan.Sort,
		StatsField:  query.PriceField,
		FacetFields: []string{FacetCategory, FacetFeatures},
		Params:      plan.Params,
	}
}
