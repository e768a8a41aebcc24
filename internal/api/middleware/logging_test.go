package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
)

func TestLoggingMiddleware(t *testing.T) {
	t.Run("echoes the request id", func(t *testing.T) {
		handler := middleware.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotNil(t, observability.LoggerFromContext(r.Context()))
			w.WriteHeader(http.StatusCreated)
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/programs/p1/enroll", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("generates a request id", func(t *testing.T) {
		handler := middleware.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("keeps the writer flushable", func(t *testing.T) {
		handler := middleware.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher, ok := w.(http.Flusher)
			assert.True(t, ok)
			if ok {
				flusher.Flush()
			}
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/stream", nil))

		assert.True(t, w.Flushed)
	})
}
