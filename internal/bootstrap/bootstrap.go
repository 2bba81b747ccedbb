// Package bootstrap wires configuration into the infrastructure pieces the
// binaries share: the resource fetcher chain and the compound dataset. Both
// the API server and the offline CLI commands load data through here, so the
// source selection logic exists exactly once.
package bootstrap

import (
	"context"

	"github.com/toxscope/toxscope/internal/config"
	"github.com/toxscope/toxscope/internal/domain/compound"
	"github.com/toxscope/toxscope/internal/infrastructure/database/postgres"
	"github.com/toxscope/toxscope/internal/infrastructure/fetch"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/prometheus"
	"github.com/toxscope/toxscope/pkg/errors"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
)

// NewFetcher builds the resource fetcher selected by data.source, wrapped
// with instrumentation and, when enabled, the Redis read-through cache.
func NewFetcher(cfg *config.Config, log logging.Logger, metrics *prometheus.AppMetrics) (fetch.Fetcher, error) {
	var (
		inner fetch.Fetcher
		err   error
	)
	switch cfg.Data.Source {
	case "file":
		inner, err = fetch.NewFileFetcher(cfg.Data.Root)
	case "http":
		inner, err = fetch.NewHTTPFetcher(cfg.Data.HTTP)
	case "object":
		inner, err = fetch.NewObjectFetcher(cfg.Data.Object, log)
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown data source %q", cfg.Data.Source)
	}
	if err != nil {
		return nil, err
	}

	f := fetch.Instrument(inner, cfg.Data.Source, log, metrics)
	if cfg.Cache.Enabled {
		f = fetch.NewCachedFetcher(f, cfg.Cache.CacheConfig, log)
	}
	return f, nil
}

// LoadDataset loads the compound records and descriptor statistics, from
// Postgres when the database is enabled and from the fetcher otherwise.
func LoadDataset(ctx context.Context, cfg *config.Config, fetcher fetch.Fetcher, log logging.Logger) ([]ctypes.Compound, ctypes.StatsMap, error) {
	if cfg.Database.Enabled {
		return loadFromDatabase(ctx, cfg, log)
	}
	return loadFromFetcher(ctx, cfg, fetcher)
}

func loadFromFetcher(ctx context.Context, cfg *config.Config, fetcher fetch.Fetcher) ([]ctypes.Compound, ctypes.StatsMap, error) {
	raw, err := fetcher.Fetch(ctx, cfg.Data.CompoundsResource)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeDatasetLoad, "failed to fetch compound dataset")
	}
	compounds, err := compound.DecodeDataset(raw)
	if err != nil {
		return nil, nil, err
	}

	raw, err = fetcher.Fetch(ctx, cfg.Data.StatsResource)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeStatsLoad, "failed to fetch descriptor statistics")
	}
	stats, err := compound.DecodeStats(raw)
	if err != nil {
		return nil, nil, err
	}
	return compounds, stats, nil
}

func loadFromDatabase(ctx context.Context, cfg *config.Config, log logging.Logger) ([]ctypes.Compound, ctypes.StatsMap, error) {
	conn, err := postgres.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()

	repo := postgres.NewCompoundRepository(conn.Pool(), log)
	compounds, err := repo.ListCompounds(ctx)
	if err != nil {
		return nil, nil, err
	}
	stats, err := repo.DescriptorStats(ctx)
	if err != nil {
		return nil, nil, err
	}
	return compounds, stats, nil
}
