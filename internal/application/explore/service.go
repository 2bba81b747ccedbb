package explore

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/toxscope/toxscope/internal/application/embedding"
	"github.com/toxscope/toxscope/internal/application/scatter"
	"github.com/toxscope/toxscope/internal/domain/compound"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/prometheus"
	"github.com/toxscope/toxscope/pkg/errors"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// DescriptorInfo is one entry of the descriptor catalog exposed to clients.
type DescriptorInfo struct {
	Key   ctypes.DescriptorKey   `json:"key"`
	Label string                 `json:"label"`
	Stats ctypes.DescriptorStats `json:"stats"`
}

// CompoundDetail is the detail-panel payload for one compound.
type CompoundDetail struct {
	Compound  *ctypes.Compound               `json:"compound"`
	Margins   map[ctypes.EndpointKey]float64 `json:"margins,omitempty"`
	Aggregate *float64                       `json:"aggregate_margin,omitempty"`
	Class     etypes.MarginClass             `json:"class"`
	Curves    []etypes.CurveSeries           `json:"curves,omitempty"`
}

// Service is the exploration application facade: one shared viewer session,
// the debounced dose and range controllers in front of it, and the embedding
// loader beside it. HTTP handlers and CLI commands talk to the Service, never
// to the session directly.
type Service struct {
	log     logging.Logger
	metrics *prometheus.AppMetrics
	session *Session
	loader  *embedding.Loader
	clock   Clock
	quiet   time.Duration

	binCount int

	mu        sync.Mutex
	doseDeb   *Debouncer[float64]
	rangeDebs map[ctypes.DescriptorKey]*Debouncer[etypes.RangeBound]
	closed    bool
}

// ServiceOption adjusts service construction.
type ServiceOption func(*Service)

// WithClock injects a clock for the debounce controllers; tests use a fake.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

// WithQuietInterval overrides the debounce quiet interval.
func WithQuietInterval(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.quiet = d
		}
	}
}

// WithBinCount overrides the descriptor histogram resolution.
func WithBinCount(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.binCount = n
		}
	}
}

// NewService builds the service over an immutable dataset.
func NewService(
	compounds []ctypes.Compound,
	stats ctypes.StatsMap,
	initialDose float64,
	loader *embedding.Loader,
	log logging.Logger,
	metrics *prometheus.AppMetrics,
	opts ...ServiceOption,
) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Service{
		log:       log.Named("explore"),
		metrics:   metrics,
		loader:    loader,
		quiet:     DefaultQuietInterval,
		rangeDebs: make(map[ctypes.DescriptorKey]*Debouncer[etypes.RangeBound]),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = RealClock()
	}
	s.session = NewSession(compounds, stats, initialDose, log)
	if s.binCount > 0 {
		s.session.SetBinCount(s.binCount)
	}
	s.doseDeb = NewDebouncer(initialDose, s.quiet, s.commitDose, s.clock)
	return s
}

// Session exposes the underlying viewer session for read access.
func (s *Service) Session() *Session { return s.session }

// State returns the full derived state snapshot.
func (s *Service) State() etypes.StateResponse {
	snap := s.session.Snapshot()
	s.recordGauges(snap)
	return snap
}

func (s *Service) recordGauges(snap etypes.StateResponse) {
	if s.metrics == nil {
		return
	}
	s.metrics.VisibleCompounds.WithLabelValues(s.session.ID()).Set(float64(snap.Visible))
	s.metrics.SelectionSize.WithLabelValues(s.session.ID()).Set(float64(len(snap.Selection)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Debounced parameter controllers
// ─────────────────────────────────────────────────────────────────────────────

func (s *Service) commitDose(dose float64) {
	start := time.Now()
	if err := s.session.SetDose(dose); err != nil {
		s.log.Warn("dose commit rejected", logging.Float64("dose", dose), logging.Err(err))
		return
	}
	if s.metrics != nil {
		s.metrics.DoseCommitsTotal.WithLabelValues().Inc()
		s.metrics.RecomputeDuration.WithLabelValues("dose").Observe(time.Since(start).Seconds())
	}
}

// ScheduleDose validates a dose and schedules its debounced commit. The
// pending value is visible immediately; the session recomputes after the
// quiet interval.
func (s *Service) ScheduleDose(dose float64) error {
	if math.IsNaN(dose) || math.IsInf(dose, 0) || dose <= 0 {
		return errors.Validation("dose must be a positive finite number")
	}
	s.doseDeb.Schedule(dose)
	return nil
}

// PendingDose returns the latest scheduled dose, committed or not.
func (s *Service) PendingDose() float64 {
	return s.doseDeb.Pending()
}

// ScheduleRange validates range bounds and schedules their debounced commit.
// A controller is created per descriptor on first use.
func (s *Service) ScheduleRange(key ctypes.DescriptorKey, min, max float64) error {
	if math.IsNaN(min) || math.IsNaN(max) {
		return errors.Validation("range bounds must be numbers")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.Cancelled("service closed")
	}
	deb, ok := s.rangeDebs[key]
	if !ok {
		snap := s.session.Snapshot()
		initial, seeded := snap.Filters.Range[key]
		if !seeded {
			return errors.New(errors.ErrCodeDescriptorUnknown, "no statistics for descriptor").WithDetail(string(key))
		}
		k := key
		deb = NewDebouncer(initial, s.quiet, func(b etypes.RangeBound) {
			start := time.Now()
			if err := s.session.SetRange(k, b.Min, b.Max); err != nil {
				s.log.Warn("range commit rejected", logging.String("key", string(k)), logging.Err(err))
				return
			}
			if s.metrics != nil {
				s.metrics.RecomputeDuration.WithLabelValues("range").Observe(time.Since(start).Seconds())
			}
		}, s.clock)
		s.rangeDebs[key] = deb
	}
	deb.Schedule(etypes.RangeBound{Min: min, Max: max})
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Immediate controls
// ─────────────────────────────────────────────────────────────────────────────

// SetDiscrete selects a discrete filter option.
func (s *Service) SetDiscrete(filterID, optionID string) error {
	return s.session.SetDiscrete(filterID, optionID)
}

// SetSelection replaces the embedding-based selection set.
func (s *Service) SetSelection(ids []string) {
	s.session.SetSelection(ids)
}

// Reset restores filters to their initial seed. Pending debounced range
// commits are snapped to the reset values so a stale commit cannot undo it.
func (s *Service) Reset() {
	s.session.Reset()
	snap := s.session.Snapshot()
	s.mu.Lock()
	for key, deb := range s.rangeDebs {
		if b, ok := snap.Filters.Range[key]; ok {
			deb.Sync(b)
		}
	}
	s.mu.Unlock()
}

// SetWeightIndex records the active embedding weight position.
func (s *Service) SetWeightIndex(idx int) error {
	return s.session.SetWeightIndex(idx)
}

// ─────────────────────────────────────────────────────────────────────────────
// Embedding and lasso
// ─────────────────────────────────────────────────────────────────────────────

// viewportSide resolves a client-reported container side, in pixels, to the
// square plot side. Zero or negative means no report, taking the maximum.
func viewportSide(viewport float64) float64 {
	if viewport <= 0 {
		return scatter.MaxViewport
	}
	return scatter.ViewportSize(viewport, viewport)
}

// Embedding switches to the given weight index and returns its decorated
// point set, projected and styled for a square viewport of the given side
// (zero means the maximum). A load failure is scoped to the embedding view:
// the response carries a warning and an empty point set instead of an error,
// except for an out-of-range index which is the caller's mistake.
func (s *Service) Embedding(ctx context.Context, index int, viewport float64) (etypes.EmbeddingResponse, error) {
	if err := s.session.SetWeightIndex(index); err != nil {
		return etypes.EmbeddingResponse{}, err
	}
	if s.loader == nil {
		return etypes.EmbeddingResponse{
			WeightIndex: index,
			Points:      []etypes.EmbeddingPoint{},
			Warning:     "no embedding source configured",
		}, nil
	}
	base, err := s.loader.Load(ctx, index)
	if err != nil {
		if errors.IsCancelled(err) {
			// Superseded or torn down; not a failure worth surfacing.
			return etypes.EmbeddingResponse{WeightIndex: index, Points: []etypes.EmbeddingPoint{}}, nil
		}
		s.log.Warn("embedding load failed", logging.Int("weight_index", index), logging.Err(err))
		return etypes.EmbeddingResponse{
			WeightIndex: index,
			Points:      []etypes.EmbeddingPoint{},
			Warning:     "embedding unavailable for this weight; compound list unaffected",
		}, nil
	}
	points := embedding.Decorate(base, s.session.CompoundIndex(), s.session.Margins())

	selected := make(map[string]bool)
	for _, id := range s.session.Selection() {
		selected[id] = true
	}
	side := viewportSide(viewport)
	_, points = scatter.Present(points, side, selected)
	return etypes.EmbeddingResponse{WeightIndex: index, Points: points, Viewport: side}, nil
}

// Lasso evaluates a recorded gesture path against the current weight's
// decorated points and replaces the selection with the result. The gesture
// is resolved in the screen space of the client's viewport so the tap
// tolerance holds at UI scale.
func (s *Service) Lasso(ctx context.Context, path []etypes.PathPoint, viewport float64) (etypes.StateResponse, error) {
	resp, err := s.Embedding(ctx, s.session.WeightIndex(), viewport)
	if err != nil {
		return etypes.StateResponse{}, err
	}
	proj := scatter.NewProjection(resp.Points, resp.Viewport, resp.Viewport)
	res := scatter.ResolveGestureIn(proj, path, resp.Points)
	s.session.SetSelection(res.Selection)
	return s.State(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalogs and detail
// ─────────────────────────────────────────────────────────────────────────────

// Descriptors returns the descriptor catalog with population statistics.
func (s *Service) Descriptors() []DescriptorInfo {
	keys := ctypes.DescriptorKeys()
	out := make([]DescriptorInfo, 0, len(keys))
	for _, key := range keys {
		info := DescriptorInfo{Key: key, Label: ctypes.DescriptorLabel(key)}
		if st, ok := s.session.stats[key]; ok {
			info.Stats = st
		}
		out = append(out, info)
	}
	return out
}

// WeightOptions returns the static embedding weight enumeration.
func (s *Service) WeightOptions() []embedding.WeightOption {
	return embedding.Options()
}

// Detail assembles the detail-panel payload for one compound at the current
// dose: the record, its per-endpoint and aggregate margins, and the parsed
// dose-response curve series.
func (s *Service) Detail(name string) (CompoundDetail, error) {
	c, err := s.session.Compound(name)
	if err != nil {
		return CompoundDetail{}, err
	}
	detail := CompoundDetail{
		Compound: c,
		Class:    etypes.MarginAlert,
		Curves:   compound.Curves(c),
	}
	if m, ok := s.session.Margins()[name]; ok {
		detail.Margins = m.Endpoint
		detail.Class = m.Class
		if m.Defined {
			agg := m.Aggregate
			detail.Aggregate = &agg
		}
	}
	return detail, nil
}

// Curves returns just the dose-response series for one compound.
func (s *Service) Curves(name string) ([]etypes.CurveSeries, error) {
	c, err := s.session.Compound(name)
	if err != nil {
		return nil, err
	}
	return compound.Curves(c), nil
}

// Close tears down the debounce controllers and the embedding loader.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	debs := make([]*Debouncer[etypes.RangeBound], 0, len(s.rangeDebs))
	for _, d := range s.rangeDebs {
		debs = append(debs, d)
	}
	s.mu.Unlock()

	s.doseDeb.Close()
	for _, d := range debs {
		d.Close()
	}
	if s.loader != nil {
		s.loader.Close()
	}
}
