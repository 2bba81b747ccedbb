package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/prometheus"
	"github.com/toxscope/toxscope/internal/interfaces/http/handlers"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	ExploreHandler   *handlers.ExploreHandler
	EmbeddingHandler *handlers.EmbeddingHandler
	CompoundHandler  *handlers.CompoundHandler
	HealthHandler    *handlers.HealthHandler

	// Middleware
	CORS    func(http.Handler) http.Handler
	Logging func(http.Handler) http.Handler

	// Infrastructure
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration: global middleware, public health endpoints, the metrics
// endpoint, and the /api/v1 resource groups.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.Logging != nil {
		r.Use(cfg.Logging)
	}

	// Public health endpoints.
	r.Group(func(pub chi.Router) {
		if cfg.HealthHandler != nil {
			pub.Get("/healthz", cfg.HealthHandler.Liveness)
			pub.Get("/readyz", cfg.HealthHandler.Readiness)
		}
	})

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerExploreRoutes(api, cfg.ExploreHandler)
		registerEmbeddingRoutes(api, cfg.EmbeddingHandler)
		registerCompoundRoutes(api, cfg.CompoundHandler)
	})

	return r
}

// registerExploreRoutes mounts the exploration-state endpoints.
func registerExploreRoutes(r chi.Router, h *handlers.ExploreHandler) {
	if h == nil {
		return
	}
	r.Get("/state", h.GetState)
	r.Post("/dose", h.SetDose)
	r.Post("/reset", h.Reset)
	r.Put("/selection", h.SetSelection)
	r.Post("/lasso", h.Lasso)
	r.Get("/descriptors", h.Descriptors)

	r.Route("/filters", func(fr chi.Router) {
		fr.Post("/range", h.SetRange)
		fr.Post("/discrete", h.SetDiscrete)
	})
}

// registerEmbeddingRoutes mounts the embedding scatter endpoints.
func registerEmbeddingRoutes(r chi.Router, h *handlers.EmbeddingHandler) {
	if h == nil {
		return
	}
	r.Route("/embedding", func(er chi.Router) {
		er.Get("/", h.Points)
		er.Get("/weights", h.Weights)
	})
}

// registerCompoundRoutes mounts per-compound endpoints.
func registerCompoundRoutes(r chi.Router, h *handlers.CompoundHandler) {
	if h == nil {
		return
	}
	r.Route("/compounds/{name}", func(cr chi.Router) {
		cr.Get("/", h.Detail)
		cr.Get("/curves", h.Curves)
		cr.Get("/structure", h.Structure)
	})
}
