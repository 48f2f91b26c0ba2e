package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/engine"
	"github.com/loziogigio/omnicommerce/internal/engine/memory"
	"github.com/loziogigio/omnicommerce/internal/query"
	apperrors "github.com/loziogigio/omnicommerce/pkg/errors"
)

type stubEngine struct {
	search func(ctx context.Context, req engine.Request) (*engine.Result, error)
	ping   error
}

func (s *stubEngine) Search(ctx context.Context, req engine.Request) (*engine.Result, error) {
	return s.search(ctx, req)
}

func (s *stubEngine) Ping(context.Context) error { return s.ping }
func (s *stubEngine) Name() string { return "stub" }

func TestNewRequest(t *testing.T) {
	plan, err := query.Build(domain.SearchFilter{Text: "shoe", Page: 3, PerPage: 10, OrderBy: domain.SortPriceAsc, Category: "men"}, nil, query.DefaultOptions())
	require.NoError(t, err)

	req := engine.NewRequest(plan)
	assert.Equal(t, 20, req.Start)
	assert.Equal(t, 10, req.Rows)
	assert.Equal(t, query.PriceField, req.StatsField)
	assert.Equal(t, []string{engine.FacetCategory, engine.FacetFeatures}, req.FacetFields)
	assert.Equal(t, &query.Sort{Field: query.PriceField}, req.Sort)
	assert.Equal(t, "men", req.Params[query.ParamGroups])
}

func TestInstrumented_PassesThrough(t *testing.T) {
	inner := memory.New(domain.Record{"sku": domain.StringValue("A1"), "name": domain.StringValue("Shoe")})
	eng := engine.Instrument(inner, time.Second)

	res, err := eng.Search(context.Background(), engine.Request{Query: query.Query{}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "memory", eng.Name())
	assert.NoError(t, eng.Ping(context.Background()))
}

func TestInstrumented_DeadlineBecomesTimeout(t *testing.T) {
	inner := &stubEngine{search: func(ctx context.Context, _ engine.Request) (*engine.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	eng := engine.Instrument(inner, 10*time.Millisecond)

	_, err := eng.Search(context.Background(), engine.Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInstrumented_FailureBecomesUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	inner := &stubEngine{
		search: func(context.Context, engine.Request) (*engine.Result, error) { return nil, cause },
		ping:   cause,
	}
	eng := engine.Instrument(inner, time.Second)

	_, err := eng.Search(context.Background(), engine.Request{})
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.NotErrorIs(t, err, apperrors.ErrTimeout)
	assert.ErrorIs(t, err, cause)

	assert.ErrorIs(t, eng.Ping(context.Background()), apperrors.ErrServiceUnavail)
}

func TestInstrumented_KeepsAppErrors(t *testing.T) {
	inner := &stubEngine{search: func(context.Context, engine.Request) (*engine.Result, error) {
		return nil, apperrors.InvalidInput("bad query")
	}}
	eng := engine.Instrument(inner, 0)

	_, err := eng.Search(context.Background(), engine.Request{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
