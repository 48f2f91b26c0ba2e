package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/engine"
	"github.com/loziogigio/omnicommerce/internal/query"
)

func newTestDoc(sku, name string, price float64) domain.Record {
	return domain.Record{
		"id":                 domain.StringValue("id-" + sku),
		"sku":                domain.StringValue(sku),
		"name":               domain.StringValue(name),
		"net_price_with_vat": domain.NumberValue(price),
		"category":           domain.StringsValue("shoes"),
	}
}

func skus(hits []domain.Record) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Text("sku")
	}
	return out
}

func search(t *testing.T, eng *Engine, filter domain.SearchFilter) *engine.Result {
	t.Helper()
	plan, err := query.Build(filter, nil, query.DefaultOptions())
	require.NoError(t, err)
	res, err := eng.Search(context.Background(), engine.NewRequest(plan))
	require.NoError(t, err)
	return res
}

func TestEngine_SearchByText(t *testing.T) {
	eng := New(
		newTestDoc("A1", "Red Running Shoe", 40),
		newTestDoc("A2", "Blue Sandal", 20),
		newTestDoc("A3", "Running Sock", 5),
	)

	res := search(t, eng, domain.SearchFilter{Text: "running"})
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"A1", "A3"}, skus(res.Hits))

	res = search(t, eng, domain.SearchFilter{Text: "red shoe"})
	assert.Equal(t, []string{"A1"}, skus(res.Hits))

	res = search(t, eng, domain.SearchFilter{})
	assert.Equal(t, 3, res.Total, "wildcard matches everything")
}

func TestEngine_PriceRangeAndSort(t *testing.T) {
	eng := New(
		newTestDoc("A1", "Shoe", 40),
		newTestDoc("A2", "Shoe", 20),
		newTestDoc("A3", "Shoe", 60),
		newTestDoc("A4", "Shoe", 10),
	)

	res := search(t, eng, domain.SearchFilter{MinPrice: "10", MaxPrice: "50", OrderBy: domain.SortPriceDesc})
	assert.Equal(t, []string{"A1", "A2", "A4"}, skus(res.Hits), "bounds are inclusive")

	res = search(t, eng, domain.SearchFilter{OrderBy: domain.SortPriceAsc})
	assert.Equal(t, []string{"A4", "A2", "A1", "A3"}, skus(res.Hits))
}

func TestEngine_StatsCoverWholeResultSet(t *testing.T) {
	eng := New(
		newTestDoc("A1", "Shoe", 40),
		newTestDoc("A2", "Shoe", 20),
		newTestDoc("A3", "Shoe", 60),
	)

	res := search(t, eng, domain.SearchFilter{PerPage: 1, Page: 2})
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "A2", res.Hits[0].Text("sku"))
	assert.Equal(t, 3, res.Total)

	st := res.Stats[query.PriceField]
	require.NotNil(t, st.Min)
	require.NotNil(t, st.Max)
	assert.Equal(t, 20.0, *st.Min)
	assert.Equal(t, 60.0, *st.Max)
}

func TestEngine_PageBeyondEnd(t *testing.T) {
	eng := New(newTestDoc("A1", "Shoe", 40))

	res := search(t, eng, domain.SearchFilter{Page: 5})
	assert.Empty(t, res.Hits)
	assert.Equal(t, 1, res.Total)
}

func TestEngine_SKUList(t *testing.T) {
	eng := New(
		newTestDoc("A1", "Shoe", 40),
		newTestDoc("A 2", "Shoe", 20),
		newTestDoc("A3", "Shoe", 60),
	)

	res := search(t, eng, domain.SearchFilter{SKUs: []string{"A3", "A 2"}})
	assert.Equal(t, []string{"A 2", "A3"}, skus(res.Hits), "quoted SKUs match their raw form")
}

func TestEngine_Facets(t *testing.T) {
	a := newTestDoc("A1", "Shoe", 40)
	a["features"] = domain.StringsValue("color:red", "size:42")
	b := newTestDoc("A2", "Shoe", 20)
	b["features"] = domain.StringsValue("color:red")
	b["category"] = domain.StringsValue("sandals")
	eng := New(a, b)

	res := search(t, eng, domain.SearchFilter{})
	assert.Equal(t, []domain.FacetCount{{Value: "color:red", Count: 2}, {Value: "size:42", Count: 1}},
		res.Facets[engine.FacetFeatures])
	assert.Equal(t, []domain.FacetCount{{Value: "sandals", Count: 1}, {Value: "shoes", Count: 1}},
		res.Facets[engine.FacetCategory])
}

func TestEngine_GroupsAndFeaturesParams(t *testing.T) {
	a := newTestDoc("A1", "Shoe", 40)
	a["groups"] = domain.StringsValue("footwear,running")
	a["features"] = domain.StringsValue("color:red", "size:42")
	b := newTestDoc("A2", "Shoe", 20)
	b["groups"] = domain.StringsValue("footwear,city")
	b["features"] = domain.StringsValue("color:red")
	eng := New(a, b)

	res := search(t, eng, domain.SearchFilter{Category: "footwear"})
	assert.Equal(t, 2, res.Total)

	res = search(t, eng, domain.SearchFilter{Category: "footwear,run"})
	assert.Equal(t, []string{"A1"}, skus(res.Hits))

	res = search(t, eng, domain.SearchFilter{Features: "color:red;size:42"})
	assert.Equal(t, []string{"A1"}, skus(res.Hits))
}

func TestEngine_MatchNone(t *testing.T) {
	eng := New(newTestDoc("A1", "Shoe", 40))

	res, err := eng.Search(context.Background(), engine.Request{Query: query.Query{MatchNone: true}})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Hits)
}

func TestEngine_BySlug(t *testing.T) {
	eng := New(newTestDoc("A1", "Scarpa Città", 40), newTestDoc("A2", "Sandal", 20))

	res, err := eng.Search(context.Background(), engine.NewRequest(query.BySlug("scarpa-citta")))
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "A1", res.Hits[0].Text("sku"))
}

func TestEngine_Load(t *testing.T) {
	eng := New()
	err := eng.Load(strings.NewReader(`[{"sku":"A1","name":"Shoe","net_price_with_vat":"12.5"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Len())

	res := search(t, eng, domain.SearchFilter{MinPrice: "12"})
	assert.Equal(t, []string{"A1"}, skus(res.Hits), "numeric strings are compared as numbers")

	assert.Error(t, eng.Load(strings.NewReader(`{"sku":`)))
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Search(ctx, engine.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
