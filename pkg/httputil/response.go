package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/loziogigio/omnicommerce/pkg/errors"
	"github.com/loziogigio/omnicommerce/pkg/logger"
	"github.com/loziogigio/omnicommerce/pkg/validator"
)

// Response is the JSON envelope of every catalogue endpoint.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a 200 response wrapping data in the envelope.
func WriteData(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteError renders err as an error envelope. AppErrors keep their code,
// message and status; anything else becomes a 500. Server-side failures are
// logged with the request-scoped logger when one is mounted, else fallback.
// Classified upstream failures are left to the layer that produced them.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeValidation(w, valErr, requestID)
		return
	}

	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.AppError
	classified := errors.As(err, &appErr)
	if !classified {
		appErr = apperrors.Internal(err)
	}
	body := &ErrorResponse{Code: appErr.Code, Message: appErr.Message, RequestID: requestID}

	if status == http.StatusInternalServerError || (status > http.StatusInternalServerError && !classified) {
		l.ErrorContext(r.Context(), "request failed",
			logger.Err(err),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: body})
}

func writeValidation(w http.ResponseWriter, valErr *validator.ValidationError, requestID string) {
	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   "request validation failed",
			Fields:    valErr.Fields(),
			RequestID: requestID,
		},
	})
}

// Query parses the raw query string of r. Pairs are split on '&' only, so
// values may carry an unescaped ';'. The first occurrence of a key wins when
// read through Get.
func Query(r *http.Request) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(r.URL.RawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		values.Add(key, value)
	}
	return values
}

// QueryInt reads an integer query parameter. An absent or blank parameter
// yields def; anything that is not an integer is an InvalidInput error.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	return ParseInt(Query(r), name, def)
}

// ParseInt is QueryInt over already parsed values.
func ParseInt(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(name + " must be an integer")
	}
	return n, nil
}

// QueryBool reads a boolean flag. Absent, blank, "0", "false" and "no" are
// false; any other value is true.
func QueryBool(r *http.Request, name string) bool {
	return ParseBool(Query(r), name)
}

// ParseBool is QueryBool over already parsed values.
func ParseBool(q url.Values, name string) bool {
	switch strings.ToLower(strings.TrimSpace(q.Get(name))) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
