// Package fetch provides the external-resource fetcher used for the compound
// dataset, descriptor statistics, the embedding id list, and the per-weight
// coordinate files. Backends exist for HTTP(S), the local filesystem, and
// S3-compatible object storage, plus a Redis-backed read-through cache
// decorator for deployments where several instances share the same resources.
//
// Every Fetch honours context cancellation: a caller tearing down or
// superseding a request cancels its context and the fetch aborts without
// committing anything.
package fetch

import (
	"context"
	"time"

	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/prometheus"
)

// Fetcher retrieves the raw bytes of a named resource. Names are
// backend-relative paths such as "compounds.json" or
// "embeddings/blend_0.3.csv".
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, name string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}

// instrumented wraps a Fetcher with metrics and debug logging.
type instrumented struct {
	inner   Fetcher
	backend string
	log     logging.Logger
	metrics *prometheus.AppMetrics
}

// Instrument decorates f so every fetch is timed and counted under the given
// backend label. A nil metrics set disables recording but keeps logging.
func Instrument(f Fetcher, backend string, log logging.Logger, metrics *prometheus.AppMetrics) Fetcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &instrumented{inner: f, backend: backend, log: log.Named("fetch"), metrics: metrics}
}

func (i *instrumented) Fetch(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := i.inner.Fetch(ctx, name)
	elapsed := time.Since(start)
	i.metrics.RecordFetch(i.backend, err, elapsed)
	if err != nil {
		i.log.Warn("resource fetch failed",
			logging.String("backend", i.backend),
			logging.String("name", name),
			logging.Duration("elapsed", elapsed),
			logging.Err(err))
		return nil, err
	}
	i.log.Debug("resource fetched",
		logging.String("backend", i.backend),
		logging.String("name", name),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", elapsed))
	return data, nil
}
