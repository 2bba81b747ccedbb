package embedding

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/toxscope/toxscope/internal/infrastructure/fetch"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/prometheus"
	"github.com/toxscope/toxscope/pkg/errors"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// Loader fetches and parses per-weight coordinate sets, memoizing successful
// loads for its lifetime. Failed loads are never memoized, so a transient
// fetch error is retried on the next request for that weight.
//
// Loads can be superseded: every request takes a token, and a load whose
// token is no longer the newest when its result arrives is dropped and
// reported as cancelled instead of delivered. The memo cache still keeps the
// parsed points, so re-requesting that weight is a cache hit.
type Loader struct {
	fetcher fetch.Fetcher
	log     logging.Logger
	metrics *prometheus.AppMetrics

	idsResource string
	group       singleflight.Group

	mu     sync.Mutex
	closed bool
	ids    []string
	hasIDs bool
	cache  map[int][]etypes.EmbeddingPointBase
	latest uint64
	seq    uint64
}

// Option adjusts loader construction.
type Option func(*Loader)

// WithIDsResource overrides the id list resource name.
func WithIDsResource(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.idsResource = name
		}
	}
}

// NewLoader builds a Loader over the given resource fetcher.
func NewLoader(fetcher fetch.Fetcher, log logging.Logger, metrics *prometheus.AppMetrics, opts ...Option) *Loader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	l := &Loader{
		fetcher:     fetcher,
		log:         log.Named("embedding"),
		metrics:     metrics,
		idsResource: IDsResource,
		cache:       make(map[int][]etypes.EmbeddingPointBase),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Close marks the loader torn down. In-flight loads are dropped before
// delivery and later calls fail immediately.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

// Load returns the base point set for the given weight index, fetching and
// parsing it on first use. Only the newest outstanding request is delivered;
// a superseded one returns a cancelled error.
func (l *Loader) Load(ctx context.Context, index int) ([]etypes.EmbeddingPointBase, error) {
	opt, err := OptionAt(index)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, errors.New(errors.ErrCodeCancelled, "embedding loader closed")
	}
	l.seq++
	token := l.seq
	l.latest = token
	pts, hit := l.cache[index]
	l.mu.Unlock()

	l.metrics.RecordEmbeddingCache(hit)
	if hit {
		return pts, nil
	}

	v, err, _ := l.group.Do(opt.Resource, func() (interface{}, error) {
		start := time.Now()
		loaded, lerr := l.loadResource(ctx, opt)
		l.metrics.RecordEmbeddingLoad(lerr, time.Since(start))
		if lerr != nil {
			return nil, lerr
		}
		l.mu.Lock()
		if !l.closed {
			l.cache[index] = loaded
		}
		l.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	stale := l.closed || l.latest != token
	l.mu.Unlock()
	if stale {
		l.metrics.RecordEmbeddingStaleDrop()
		l.log.Debug("embedding load superseded", logging.Int("weight_index", index))
		return nil, errors.New(errors.ErrCodeCancelled, "embedding load superseded")
	}
	return v.([]etypes.EmbeddingPointBase), nil
}

// IDs returns the canonical positional id list, fetching it on first use.
// A successful fetch is kept for the loader's lifetime.
func (l *Loader) IDs(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	if l.hasIDs {
		ids := l.ids
		l.mu.Unlock()
		return ids, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(l.idsResource, func() (interface{}, error) {
		data, ferr := l.fetcher.Fetch(ctx, l.idsResource)
		if ferr != nil {
			return nil, errors.Wrap(ferr, errors.ErrCodeEmbeddingIDs, "fetch embedding id list")
		}
		ids := parseIDList(data)
		l.mu.Lock()
		if !l.closed {
			l.ids = ids
			l.hasIDs = true
		}
		l.mu.Unlock()
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (l *Loader) loadResource(ctx context.Context, opt WeightOption) ([]etypes.EmbeddingPointBase, error) {
	ids, err := l.IDs(ctx)
	if err != nil {
		return nil, err
	}
	data, err := l.fetcher.Fetch(ctx, opt.Resource)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingLoad, "fetch embedding coordinates").
			WithDetail(opt.Resource)
	}
	pts, rows, dropped, err := parseCoordinates(data, ids)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingLoad, "parse embedding coordinates").
			WithDetail(opt.Resource)
	}
	if rows != len(ids) {
		l.log.Warn("embedding row count differs from id list",
			logging.String("resource", opt.Resource),
			logging.Int("rows", rows),
			logging.Int("ids", len(ids)))
	}
	l.log.Debug("embedding coordinates loaded",
		logging.String("resource", opt.Resource),
		logging.Int("points", len(pts)),
		logging.Int("dropped", dropped))
	return pts, nil
}

// parseIDList splits a newline-delimited id resource, dropping blank lines.
func parseIDList(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// parseCoordinates decodes a coordinate CSV against the positional id list.
// The first record is a header and is discarded. Each data record holds x and
// y in its last two fields, optionally preceded by an explicit id that
// overrides the positional one. Records with unparsable or non-finite
// coordinates, or with no id from either source, are dropped but still
// consume their positional slot.
func parseCoordinates(data []byte, ids []string) ([]etypes.EmbeddingPointBase, int, int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, 0, io.ErrUnexpectedEOF
	}
	records = records[1:]

	var (
		pts     []etypes.EmbeddingPointBase
		dropped int
	)
	for slot, rec := range records {
		if len(rec) < 2 {
			dropped++
			continue
		}
		id := ""
		if len(rec) >= 3 {
			id = strings.TrimSpace(rec[0])
		}
		if id == "" && slot < len(ids) {
			id = ids[slot]
		}
		x, xerr := strconv.ParseFloat(strings.TrimSpace(rec[len(rec)-2]), 64)
		y, yerr := strconv.ParseFloat(strings.TrimSpace(rec[len(rec)-1]), 64)
		if id == "" || xerr != nil || yerr != nil ||
			math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			dropped++
			continue
		}
		pts = append(pts, etypes.EmbeddingPointBase{ID: id, X: x, Y: y})
	}
	return pts, len(records), dropped, nil
}
