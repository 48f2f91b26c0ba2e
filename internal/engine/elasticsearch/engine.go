// Package elasticsearch implements engine.Engine over an Elasticsearch index
// using the same Lucene query string the Solr adapter sends.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/engine"
	"github.com/loziogigio/omnicommerce/internal/query"
)

// Engine is an Elasticsearch-backed implementation of engine.Engine.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source domain.Record `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

type esMetricAgg struct {
	Value *float64 `json:"value"`
}

type esTermsAgg struct {
	Buckets []struct {
		Key      domain.Value `json:"key"`
		DocCount int          `json:"doc_count"`
	} `json:"buckets"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID    string `json:"_id"`
			Error struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

const (
	statsMinAgg = "stats_min"
	statsMaxAgg = "stats_max"
	facetPrefix = "facet_"
	facetSize   = 100
)

// New creates an engine connected to esURL. It ensures the index exists,
// creating it with the catalogue mapping if necessary. If indexName is
// empty, DefaultIndexName is used.
func New(ctx context.Context, esURL, indexName string, logger *slog.Logger) (*Engine, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{esURL}})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	e := &Engine{client: client, indexName: indexName, logger: logger}
	if err := e.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: ensure index: %w", err)
	}
	return e, nil
}

func (e *Engine) Name() string { return "elasticsearch" }

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

func (e *Engine) ensureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	_ = res.Body.Close()

	if res.StatusCode == http.StatusOK {
		e.logger.Info("elasticsearch index already exists", slog.String("index", e.indexName))
		return nil
	}

	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return decodeError("create index", res.Status(), res.Body)
	}

	e.logger.Info("elasticsearch index created", slog.String("index", e.indexName))
	return nil
}

// Search runs req as a query_string search with min/max and terms
// aggregations.
func (e *Engine) Search(ctx context.Context, req engine.Request) (*engine.Result, error) {
	if req.Query.MatchNone {
		return &engine.Result{}, nil
	}

	data, err := json.Marshal(SearchBody(req))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, decodeError("elasticsearch search", res.Status(), res.Body)
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	return toResult(req, &esResp)
}

// SearchBody builds the query DSL for req.
func SearchBody(req engine.Request) map[string]any {
	must := []any{
		map[string]any{
			"query_string": map[string]any{
				"query":            req.Query.String(),
				"default_operator": "AND",
			},
		},
	}

	var filters []any
	if prefix := req.Params[query.ParamGroups]; prefix != "" {
		filters = append(filters, map[string]any{
			"prefix": map[string]any{"groups": prefix},
		})
	}
	if raw := req.Params[query.ParamFeatures]; raw != "" {
		for _, f := range strings.Split(raw, ";") {
			if f = strings.TrimSpace(f); f != "" {
				filters = append(filters, map[string]any{
					"term": map[string]any{"features": f},
				})
			}
		}
	}

	boolQuery := map[string]any{"must": must}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	body := map[string]any{
		"query":            map[string]any{"bool": boolQuery},
		"from":             req.Start,
		"size":             req.Rows,
		"track_total_hits": true,
	}

	aggs := map[string]any{}
	if req.StatsField != "" {
		aggs[statsMinAgg] = map[string]any{"min": map[string]any{"field": req.StatsField}}
		aggs[statsMaxAgg] = map[string]any{"max": map[string]any{"field": req.StatsField}}
	}
	for _, f := range req.FacetFields {
		aggs[facetPrefix+f] = map[string]any{
			"terms": map[string]any{"field": f, "size": facetSize, "min_doc_count": 1},
		}
	}
	if len(aggs) > 0 {
		body["aggs"] = aggs
	}

	if req.Sort != nil {
		dir := "asc"
		if req.Sort.Desc {
			dir = "desc"
		}
		body["sort"] = []any{map[string]any{req.Sort.Field: dir}}
	}

	return body
}

func toResult(req engine.Request, esResp *esSearchResponse) (*engine.Result, error) {
	res := &engine.Result{
		Hits:   make([]domain.Record, 0, len(esResp.Hits.Hits)),
		Total:  esResp.Hits.Total.Value,
		Facets: make(map[string][]domain.FacetCount, len(req.FacetFields)),
		Stats:  make(map[string]domain.FieldStats, 1),
	}
	for _, hit := range esResp.Hits.Hits {
		res.Hits = append(res.Hits, hit.Source)
	}

	if req.StatsField != "" {
		var lo, hi esMetricAgg
		if err := decodeAgg(esResp.Aggregations, statsMinAgg, &lo); err != nil {
			return nil, err
		}
		if err := decodeAgg(esResp.Aggregations, statsMaxAgg, &hi); err != nil {
			return nil, err
		}
		res.Stats[req.StatsField] = domain.FieldStats{Min: lo.Value, Max: hi.Value}
	}

	for _, f := range req.FacetFields {
		var terms esTermsAgg
		if err := decodeAgg(esResp.Aggregations, facetPrefix+f, &terms); err != nil {
			return nil, err
		}
		counts := make([]domain.FacetCount, 0, len(terms.Buckets))
		for _, b := range terms.Buckets {
			counts = append(counts, domain.FacetCount{Value: b.Key.Text(), Count: b.DocCount})
		}
		res.Facets[f] = counts
	}

	return res, nil
}

func decodeAgg(aggs map[string]json.RawMessage, name string, dst any) error {
	raw, ok := aggs[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("elasticsearch search: decode aggregation %s: %w", name, err)
	}
	return nil
}

// BulkIndex adds or updates documents using the bulk NDJSON API. The sku
// field is the document id.
func (e *Engine) BulkIndex(ctx context.Context, docs []domain.Record) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		action := map[string]any{
			"index": map[string]any{"_index": e.indexName, "_id": d.Text(query.SKUField)},
		}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return decodeError("elasticsearch bulk index", res.Status(), res.Body)
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}
	if bulkResp.Errors {
		var msgs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				msgs = append(msgs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk index: partial errors: %s", strings.Join(msgs, "; "))
	}

	e.logger.Info("bulk indexed documents", slog.Int("count", len(docs)))
	return nil
}

// DeleteIndex removes the index. A missing index is not an error.
func (e *Engine) DeleteIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete([]string{e.indexName}, e.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return decodeError("elasticsearch delete index", res.Status(), res.Body)
	}
	return nil
}

// ResetIndex drops the index and creates it again with the catalogue mapping.
func (e *Engine) ResetIndex(ctx context.Context) error {
	if err := e.DeleteIndex(ctx); err != nil {
		return err
	}
	if err := e.ensureIndex(ctx); err != nil {
		return fmt.Errorf("elasticsearch reset index: %w", err)
	}
	return nil
}

func decodeError(op, status string, body io.Reader) error {
	var errResp esErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, status)
}
