// Package solr implements engine.Engine over the Solr select API.
package solr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/engine"
	"github.com/loziogigio/omnicommerce/pkg/httpclient"
)

// Doer sends HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Engine queries one Solr core.
type Engine struct {
	client  Doer
	coreURL string
	logger  *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New creates an engine for core at baseURL (for example
// http://localhost:8983/solr).
func New(client Doer, baseURL, core string, logger *slog.Logger) (*Engine, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("solr: invalid base URL %q", baseURL)
	}
	if core == "" {
		return nil, fmt.Errorf("solr: core is required")
	}
	return &Engine{
		client:  client,
		coreURL: u.String() + "/" + url.PathEscape(core),
		logger:  logger,
	}, nil
}

func (e *Engine) Name() string { return "solr" }

// Ping calls the core's ping handler.
func (e *Engine) Ping(ctx context.Context) error {
	resp, err := e.get(ctx, e.coreURL+"/admin/ping?wt=json")
	if err != nil {
		return fmt.Errorf("solr ping: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// Search runs req through the select handler.
func (e *Engine) Search(ctx context.Context, req engine.Request) (*engine.Result, error) {
	if req.Query.MatchNone {
		return &engine.Result{}, nil
	}

	resp, err := e.get(ctx, e.coreURL+"/select?"+Params(req).Encode())
	if err != nil {
		return nil, fmt.Errorf("solr search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body selectResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("solr search: decode response: %w", err)
	}

	res := &engine.Result{
		Hits:  body.Response.Docs,
		Total: body.Response.NumFound,
		Stats: make(map[string]domain.FieldStats, len(body.Stats.StatsFields)),
	}
	for field, st := range body.Stats.StatsFields {
		res.Stats[field] = domain.FieldStats{Min: st.Min, Max: st.Max}
	}
	res.Facets, err = decodeFacets(body.FacetCounts.FacetFields)
	if err != nil {
		return nil, fmt.Errorf("solr search: %w", err)
	}

	e.logger.DebugContext(ctx, "solr search",
		slog.String("q", req.Query.String()),
		slog.Int("num_found", res.Total),
	)
	return res, nil
}

// Params renders req as select handler parameters.
func Params(req engine.Request) url.Values {
	v := url.Values{}
	v.Set("q", req.Query.String())
	v.Set("start", strconv.Itoa(req.Start))
	v.Set("rows", strconv.Itoa(req.Rows))
	v.Set("wt", "json")

	if req.StatsField != "" {
		v.Set("stats", "true")
		v.Set("stats.field", req.StatsField)
	}
	if len(req.FacetFields) > 0 {
		v.Set("facet", "true")
		v.Set("facet.mincount", "1")
		for _, f := range req.FacetFields {
			v.Add("facet.field", f)
		}
	}
	if req.Sort != nil {
		dir := "asc"
		if req.Sort.Desc {
			dir = "desc"
		}
		v.Set("sort", req.Sort.Field+" "+dir)
	}
	for k, p := range req.Params {
		v.Set(k, p)
	}
	return v
}

func (e *Engine) get(ctx context.Context, target string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, "solr")
	}
	return resp, nil
}

type selectResponse struct {
	Response struct {
		NumFound int             `json:"numFound"`
		Docs     []domain.Record `json:"docs"`
	} `json:"response"`
	Stats struct {
		StatsFields map[string]struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		} `json:"stats_fields"`
	} `json:"stats"`
	FacetCounts struct {
		FacetFields map[string][]json.RawMessage `json:"facet_fields"`
	} `json:"facet_counts"`
}

// decodeFacets reads Solr's flat [value, count, value, count, ...] lists.
func decodeFacets(fields map[string][]json.RawMessage) (map[string][]domain.FacetCount, error) {
	out := make(map[string][]domain.FacetCount, len(fields))
	for field, flat := range fields {
		if len(flat)%2 != 0 {
			return nil, fmt.Errorf("facet %s: odd number of entries", field)
		}
		counts := make([]domain.FacetCount, 0, len(flat)/2)
		for i := 0; i < len(flat); i += 2 {
			var value domain.Value
			if err := json.Unmarshal(flat[i], &value); err != nil {
				return nil, fmt.Errorf("facet %s: value: %w", field, err)
			}
			var n int
			if err := json.Unmarshal(flat[i+1], &n); err != nil {
				return nil, fmt.Errorf("facet %s: count: %w", field, err)
			}
			counts = append(counts, domain.FacetCount{Value: value.Text(), Count: n})
		}
		out[field] = counts
	}
	return out, nil
}
