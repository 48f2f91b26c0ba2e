package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StatusError is a non-2xx answer from an upstream.
type StatusError struct {
	Upstream   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Upstream, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Upstream, e.StatusCode, e.Message)
}

// upstreamErrorBody covers both the {"error":{"code","message"}} envelope and
// Solr's {"error":{"msg","code"}} shape.
type upstreamErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	} `json:"error"`
}

// maxErrorBody caps how much of an error body is read.
const maxErrorBody = 64 << 10

// ParseResponseError consumes and closes the body of a non-2xx response and
// returns a *StatusError describing it. A structured error message is used
// when the body carries one, otherwise the raw body is kept.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &StatusError{Upstream: upstream, StatusCode: resp.StatusCode, Message: "unreadable body: " + err.Error()}
	}

	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
		msg := parsed.Error.Message
		if msg == "" {
			msg = parsed.Error.Msg
		}
		return &StatusError{Upstream: upstream, StatusCode: resp.StatusCode, Message: msg}
	}

	return &StatusError{Upstream: upstream, StatusCode: resp.StatusCode, Message: string(body)}
}
