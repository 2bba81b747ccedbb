package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toxscope/toxscope/internal/application/explore"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/prometheus"
	"github.com/toxscope/toxscope/internal/interfaces/http/handlers"
	"github.com/toxscope/toxscope/internal/interfaces/http/middleware"
	"github.com/toxscope/toxscope/internal/testutil"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
)

func testService(t *testing.T) *explore.Service {
	t.Helper()
	compounds := []ctypes.Compound{
		{
			ID: "1", Name: "aspirin",
			Descriptors: map[ctypes.DescriptorKey]float64{ctypes.DescMolWeight: 180},
		},
	}
	stats := ctypes.StatsMap{ctypes.DescMolWeight: {Min: 100, Mean: 180, Max: 600, Count: 1}}
	svc := explore.NewService(compounds, stats, 10, nil, nil, nil)
	t.Cleanup(svc.Close)
	return svc
}

func fullRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := testService(t)
	ml := testutil.NewMockLogger()
	collector := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "toxscope"}, ml)

	return NewRouter(RouterConfig{
		ExploreHandler:   handlers.NewExploreHandler(svc),
		EmbeddingHandler: handlers.NewEmbeddingHandler(svc),
		CompoundHandler:  handlers.NewCompoundHandler(svc, ml),
		HealthHandler:    handlers.NewHealthHandler("test"),
		CORS:             middleware.CORS(middleware.DefaultCORSConfig([]string{"*"})),
		Logging:          middleware.RequestLogging(ml, nil, middleware.DefaultLoggingConfig()),
		MetricsCollector: collector,
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouterHealthEndpoints(t *testing.T) {
	r := fullRouter(t)

	assert.Equal(t, http.StatusOK, get(t, r, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, r, "/readyz").Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	r := fullRouter(t)

	w := get(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterAPIRoutes(t *testing.T) {
	r := fullRouter(t)

	for _, path := range []string{
		"/api/v1/state",
		"/api/v1/descriptors",
		"/api/v1/embedding/weights",
		"/api/v1/compounds/aspirin",
		"/api/v1/compounds/aspirin/curves",
	} {
		w := get(t, r, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	r := fullRouter(t)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/api/v1/nope").Code)
}

func TestRouterNilHandlersNoPanic(t *testing.T) {
	r := NewRouter(RouterConfig{})

	require.NotPanics(t, func() {
		assert.Equal(t, http.StatusNotFound, get(t, r, "/api/v1/state").Code)
	})
}

func TestRouterCORSApplied(t *testing.T) {
	r := fullRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
