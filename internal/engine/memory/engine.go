// Package memory is an in-process search engine that evaluates catalogue
// queries directly against stored documents.
package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/engine"
	"github.com/loziogigio/omnicommerce/internal/query"
	"github.com/loziogigio/omnicommerce/pkg/slug"
)

// Fields consulted when the request carries gateway parameters.
const (
	GroupsField   = "groups"
	FeaturesField = "features"
)

// textFields are searched by free-text clauses.
var textFields = []string{"text", "name", "name_web", "sku", "description", "brand"}

// Engine is an in-memory implementation of engine.Engine. Documents are
// returned in insertion order unless a sort is requested.
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu   sync.RWMutex
	docs []domain.Record
}

var _ engine.Engine = (*Engine)(nil)

// New creates an engine holding docs.
func New(docs ...domain.Record) *Engine {
	e := &Engine{}
	e.Index(docs...)
	return e
}

// Load decodes a JSON array of documents from r and indexes them.
func (e *Engine) Load(r io.Reader) error {
	var docs []domain.Record
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return fmt.Errorf("memory engine: decode documents: %w", err)
	}
	e.Index(docs...)
	return nil
}

// Index appends documents. A document without a slug gets one generated
// from its name.
func (e *Engine) Index(docs ...domain.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, d := range docs {
		if d.Text(query.SlugField) == "" {
			if name := d.Text("name"); name != "" {
				d[query.SlugField] = domain.StringValue(slug.Generate(name))
			}
		}
		e.docs = append(e.docs, d)
	}
}

// Len returns the number of stored documents.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

func (e *Engine) Name() string { return "memory" }

func (e *Engine) Ping(context.Context) error { return nil }

// Search evaluates req against every stored document.
func (e *Engine) Search(ctx context.Context, req engine.Request) (*engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &engine.Result{
		Facets: make(map[string][]domain.FacetCount),
		Stats:  make(map[string]domain.FieldStats),
	}
	if req.Query.MatchNone {
		return res, nil
	}

	e.mu.RLock()
	matched := make([]domain.Record, 0)
	for _, d := range e.docs {
		if matches(d, req) {
			matched = append(matched, d)
		}
	}
	e.mu.RUnlock()

	if req.Sort != nil {
		sortRecords(matched, *req.Sort)
	}

	res.Total = len(matched)
	for _, field := range req.FacetFields {
		res.Facets[field] = facet(matched, field)
	}
	if req.StatsField != "" {
		res.Stats[req.StatsField] = stats(matched, req.StatsField)
	}

	start := min(max(req.Start, 0), len(matched))
	end := len(matched)
	if req.Rows > 0 {
		end = min(start+req.Rows, len(matched))
	}
	res.Hits = matched[start:end]
	return res, nil
}

func matches(d domain.Record, req engine.Request) bool {
	for _, c := range req.Query.Clauses {
		if !matchClause(d, c) {
			return false
		}
	}
	if prefix := req.Params[query.ParamGroups]; prefix != "" {
		if !slices.ContainsFunc(values(d, GroupsField), func(g string) bool {
			return strings.HasPrefix(g, prefix)
		}) {
			return false
		}
	}
	if raw := req.Params[query.ParamFeatures]; raw != "" {
		have := values(d, FeaturesField)
		for _, want := range strings.Split(raw, ";") {
			if want = strings.TrimSpace(want); want != "" && !slices.Contains(have, want) {
				return false
			}
		}
	}
	return true
}

func matchClause(d domain.Record, c query.Clause) bool {
	switch c := c.(type) {
	case query.Text:
		return matchText(d, c.Term)
	case query.Term:
		return slices.Contains(values(d, c.Field), c.Value)
	case query.AnyOf:
		have := values(d, c.Field)
		for _, v := range c.Values {
			if slices.Contains(have, v) {
				return true
			}
			if raw, err := url.PathUnescape(v); err == nil && slices.Contains(have, raw) {
				return true
			}
		}
		return false
	case query.Range:
		n, ok := d.Number(c.Field)
		if !ok {
			return false
		}
		if c.Lower != nil && n < *c.Lower {
			return false
		}
		return c.Upper == nil || n <= *c.Upper
	default:
		return false
	}
}

// matchText requires every word of term to appear in one of the text fields.
func matchText(d domain.Record, term string) bool {
	words := strings.Fields(strings.ToLower(term))
	if len(words) == 0 || len(words) == 1 && words[0] == "*" {
		return true
	}

	var sb strings.Builder
	for _, f := range textFields {
		for _, v := range values(d, f) {
			sb.WriteString(strings.ToLower(v))
			sb.WriteByte(' ')
		}
	}
	haystack := sb.String()

	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

// values returns a field as a list of strings. Scalars become one element.
func values(d domain.Record, field string) []string {
	v := d.Get(field)
	if list, ok := v.AsStrings(); ok {
		return list
	}
	if s := v.Text(); s != "" {
		return []string{s}
	}
	return nil
}

// sortRecords orders by a numeric field. Documents without it go last.
func sortRecords(docs []domain.Record, s query.Sort) {
	slices.SortStableFunc(docs, func(a, b domain.Record) int {
		x, okA := a.Number(s.Field)
		y, okB := b.Number(s.Field)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		case s.Desc:
			return cmp.Compare(y, x)
		default:
			return cmp.Compare(x, y)
		}
	})
}

// facet counts field values, most frequent first.
func facet(docs []domain.Record, field string) []domain.FacetCount {
	counts := make(map[string]int)
	for _, d := range docs {
		for _, v := range values(d, field) {
			counts[v]++
		}
	}

	out := make([]domain.FacetCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, domain.FacetCount{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.FacetCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out
}

func stats(docs []domain.Record, field string) domain.FieldStats {
	var st domain.FieldStats
	for _, d := range docs {
		n, ok := d.Number(field)
		if !ok {
			continue
		}
		if st.Min == nil || n < *st.Min {
			st.Min = &n
		}
		if st.Max == nil || n > *st.Max {
			st.Max = &n
		}
	}
	return st
}
