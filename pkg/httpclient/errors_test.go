package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func parseStatus(t *testing.T, resp *http.Response) *StatusError {
	t.Helper()
	err := ParseResponseError(resp, "solr")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	return statusErr
}

func TestParseResponseError_SolrBody(t *testing.T) {
	got := parseStatus(t, makeResponse(http.StatusBadRequest,
		`{"responseHeader":{"status":400},"error":{"msg":"undefined field text2","code":400}}`))

	assert.Equal(t, "solr", got.Upstream)
	assert.Equal(t, http.StatusBadRequest, got.StatusCode)
	assert.Equal(t, "undefined field text2", got.Message)
	assert.Equal(t, "solr returned status 400: undefined field text2", got.Error())
}

func TestParseResponseError_EnvelopeBody(t *testing.T) {
	got := parseStatus(t, makeResponse(http.StatusServiceUnavailable,
		`{"error":{"code":"SERVICE_UNAVAILABLE","message":"index warming"}}`))
	assert.Equal(t, "index warming", got.Message)
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	got := parseStatus(t, makeResponse(http.StatusBadGateway, "<html>bad gateway</html>"))
	assert.Equal(t, "<html>bad gateway</html>", got.Message)
}

func TestParseResponseError_EmptyBody(t *testing.T) {
	got := parseStatus(t, makeResponse(http.StatusNotFound, ""))
	assert.Equal(t, "solr returned status 404", got.Error())
}
