package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flushRecorder struct {
	*httptest.ResponseRecorder
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestStatusRecorder(t *testing.T) {
	t.Run("defaults to 200", func(t *testing.T) {
		rec := newStatusRecorder(httptest.NewRecorder())
		_, _ = rec.Write([]byte("hello"))
		assert.Equal(t, http.StatusOK, rec.status)
		assert.Equal(t, 5, rec.bytes)
	})

	t.Run("keeps first status", func(t *testing.T) {
		rec := newStatusRecorder(httptest.NewRecorder())
		rec.WriteHeader(http.StatusTeapot)
		rec.WriteHeader(http.StatusOK)
		assert.Equal(t, http.StatusTeapot, rec.status)
	})

	t.Run("flush delegates", func(t *testing.T) {
		inner := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
		newStatusRecorder(inner).Flush()
		assert.True(t, inner.flushed)
	})

	t.Run("unwrap", func(t *testing.T) {
		inner := httptest.NewRecorder()
		assert.Same(t, inner, newStatusRecorder(inner).Unwrap())
	})
}
