package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toxscope/toxscope/internal/testutil"
)

func okHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("body"))
	})
}

func TestRequestLoggingLogsCompletedRequest(t *testing.T) {
	ml := testutil.NewMockLogger()
	handler := RequestLogging(ml, nil, DefaultLoggingConfig())(okHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state?x=1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ml.HasMessage("info", "HTTP request completed"))
	assert.Equal(t, "/api/v1/state?x=1", ml.FieldValue("info", "HTTP request completed", "path"))
	assert.Equal(t, http.StatusOK, ml.FieldValue("info", "HTTP request completed", "status"))
}

func TestRequestLoggingSkipsConfiguredPaths(t *testing.T) {
	ml := testutil.NewMockLogger()
	handler := RequestLogging(ml, nil, DefaultLoggingConfig())(okHandler(http.StatusOK))

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Empty(t, ml.GetMessages())
}

func TestRequestLoggingLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusNotFound, "warn"},
		{http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		ml := testutil.NewMockLogger()
		handler := RequestLogging(ml, nil, DefaultLoggingConfig())(okHandler(tt.status))

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		msgs := ml.GetMessages()
		assert.Len(t, msgs, 1, "status %d", tt.status)
		assert.Equal(t, tt.level, msgs[0].Level, "status %d", tt.status)
	}
}

func TestWrappedResponseWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	w := newWrappedResponseWriter(rec)

	n, err := w.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusOK, w.statusCode)
	assert.Equal(t, int64(5), w.bytesWritten)
}

func TestWrappedResponseWriterFirstHeaderWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := newWrappedResponseWriter(rec)

	w.WriteHeader(http.StatusTeapot)
	w.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusTeapot, w.statusCode)
}
