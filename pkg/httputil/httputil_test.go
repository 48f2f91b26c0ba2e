package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/loziogigio/omnicommerce/pkg/errors"
	"github.com/loziogigio/omnicommerce/pkg/logger"
	"github.com/loziogigio/omnicommerce/pkg/validator"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusAccepted, Response{Data: "hello"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "hello", decode(t, rec).Data)
}

func TestWriteData_WrapsInEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, map[string]int{"totalCount": 3})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"totalCount":3}}`, rec.Body.String())
}

func TestWriteError_StatusAndCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.NotFound("product", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped invalid", fmt.Errorf("build: %w", apperrors.InvalidInput("bad min_price")), http.StatusBadRequest, "INVALID_INPUT"},
		{"unavailable", apperrors.Unavailable("search index", errors.New("refused")), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"timeout", apperrors.Timeout("search index", context.DeadlineExceeded), http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"mapping", apperrors.Mapping("no sku"), http.StatusBadGateway, "MAPPING_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/catalogue", nil)
			rec := httptest.NewRecorder()
			WriteError(rec, req, tt.err, logger.Discard())

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/catalogue", nil)
	rec := httptest.NewRecorder()
	WriteError(rec, req, errors.New("password=hunter2"), logger.Discard())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-1"))
	rec := httptest.NewRecorder()
	WriteError(rec, req, apperrors.NotFound("product", "x"), logger.Discard())

	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "corr-1", resp.Error.RequestID)
}

func TestWriteError_ValidationErrorCarriesFields(t *testing.T) {
	var params struct {
		Slug string `query:"slug" validate:"required"`
	}
	verr := validator.Validate(params)
	require.Error(t, verr)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	WriteError(rec, req, verr, logger.Discard())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Fields["slug"])
}

func TestResponse_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Response{Data: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "error")

	data, err = json.Marshal(Response{Error: &ErrorResponse{Code: "C", Message: "m"}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "data")
	assert.NotContains(t, string(data), "request_id")
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/catalogue?page=3&per_page=&bad=2.5", nil)

	n, err := QueryInt(req, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = QueryInt(req, "per_page", 12)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = QueryInt(req, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = QueryInt(req, "bad", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/catalogue?a=1&b=true&c=false&d=0&e=", nil)

	assert.True(t, QueryBool(req, "a"))
	assert.True(t, QueryBool(req, "b"))
	assert.False(t, QueryBool(req, "c"))
	assert.False(t, QueryBool(req, "d"))
	assert.False(t, QueryBool(req, "e"))
	assert.False(t, QueryBool(req, "missing"))
}

func TestQuery_KeepsSemicolons(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/catalogue?features=color:red;size:L&sku=A1;A%2F2&search_term=red+shoe&page=2&page=9&&flag", nil)
	q := Query(req)

	assert.Equal(t, "color:red;size:L", q.Get("features"))
	assert.Equal(t, "A1;A/2", q.Get("sku"))
	assert.Equal(t, "red shoe", q.Get("search_term"))
	assert.Equal(t, "2", q.Get("page"))
	assert.True(t, q.Has("flag"))
	assert.Empty(t, q.Get("missing"))
}

func TestQuery_KeepsMalformedEscapes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/catalogue", nil)
	req.URL.RawQuery = "search_term=50%off"

	assert.Equal(t, "50%off", Query(req).Get("search_term"))
}

func TestQueryInt_ReadsPastSemicolons(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/catalogue?features=a;b&page=4", nil)

	n, err := QueryInt(req, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
