package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/toxscope/toxscope/internal/application/embedding"
	"github.com/toxscope/toxscope/internal/application/explore"
	"github.com/toxscope/toxscope/internal/config"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/toxscope/toxscope/internal/interfaces/http"
	"github.com/toxscope/toxscope/internal/interfaces/http/handlers"
	"github.com/toxscope/toxscope/internal/interfaces/http/middleware"
)

// RunServer wires the full service graph — metrics, fetcher, dataset,
// embedding loader, exploration service, route tree — and serves it until a
// shutdown signal arrives, the context is cancelled, or the listener fails.
func RunServer(ctx context.Context, cfg *config.Config, log logging.Logger, version string) error {
	log.Info("starting toxscope",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
		logging.String("data_source", cfg.Data.Source))

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		collector = prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "toxscope"}, log)
		metrics = prometheus.NewAppMetrics(collector)
	}

	fetcher, err := NewFetcher(cfg, log, metrics)
	if err != nil {
		return err
	}

	compounds, stats, err := LoadDataset(ctx, cfg, fetcher, log)
	if err != nil {
		return err
	}
	log.Info("dataset loaded",
		logging.Int("compounds", len(compounds)),
		logging.Int("descriptors", len(stats)))

	loader := embedding.NewLoader(fetcher, log, metrics,
		embedding.WithIDsResource(cfg.Embedding.IDsResource))

	svc := explore.NewService(compounds, stats, cfg.Explore.InitialDose, loader, log, metrics,
		explore.WithQuietInterval(cfg.Explore.QuietInterval),
		explore.WithBinCount(cfg.Explore.BinCount))
	defer svc.Close()

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ExploreHandler:   handlers.NewExploreHandler(svc),
		EmbeddingHandler: handlers.NewEmbeddingHandler(svc),
		CompoundHandler:  handlers.NewCompoundHandler(svc, log),
		HealthHandler:    handlers.NewHealthHandler(version),
		CORS:             middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins)),
		Logging:          middleware.RequestLogging(log, metrics, middleware.DefaultLoggingConfig()),
		MetricsCollector: collector,
		MetricsPath:      cfg.Metrics.Path,
	})

	srv := httpserver.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", logging.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("context cancelled, shutting down")
	}

	return srv.Stop(context.Background())
}
