package explore

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/toxscope/toxscope/internal/domain/compound"
	"github.com/toxscope/toxscope/internal/domain/safety"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
	"github.com/toxscope/toxscope/pkg/errors"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// WeightOptionCount is the number of discrete embedding blend positions
// (0.0 to 1.0 in 0.1 steps).
const WeightOptionCount = 11

// Session is the viewer: the single owner of all user-driven mutable state
// (filter state, dose, weight index, selection set) for one exploration
// session. Every setter sanitises its input, applies it, and synchronously
// recomputes the full derived snapshot — margins, filtered rows, histograms —
// before returning. Nothing below the session mutates shared state.
type Session struct {
	id  string
	log logging.Logger

	mu sync.RWMutex

	// Immutable after construction.
	compounds []ctypes.Compound
	index     map[string]*ctypes.Compound
	stats     ctypes.StatsMap
	discrete  []DiscreteFilter
	binCount  int

	// User-driven state.
	filters     etypes.FilterState
	dose        float64
	weightIndex int
	selection   []string

	// Derived snapshot, rebuilt eagerly on every input change.
	margins    map[string]safety.Margins
	visible    []ctypes.Compound
	histograms map[ctypes.DescriptorKey][]float64
	generation uint64
}

// NewSession constructs a viewer session over an immutable dataset and seeds
// the filter state from the population statistics.
func NewSession(compounds []ctypes.Compound, stats ctypes.StatsMap, initialDose float64, log logging.Logger) *Session {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Session{
		id:        uuid.NewString(),
		log:       log.Named("session"),
		compounds: compounds,
		index:     compound.IndexByName(compounds),
		stats:     stats,
		dose:      initialDose,
		binCount:  DefaultBinCount,
	}
	// The margin-class filter reads the session's live margin map; the
	// closure is evaluated only inside recompute, after margins are rebuilt.
	s.discrete = []DiscreteFilter{
		NewMarginClassFilter(func(name string) etypes.MarginClass {
			if m, ok := s.margins[name]; ok {
				return m.Class
			}
			return etypes.MarginAlert
		}),
	}
	s.filters = SeedFilters(stats, s.discrete)
	s.recompute(true)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// recompute rebuilds the derived snapshot. Margins are recomputed only when
// the dose changed; filtering and histograms always rerun. Must be called
// with s.mu held (or before the session is shared).
func (s *Session) recompute(doseChanged bool) {
	if doseChanged || s.margins == nil {
		s.margins = safety.MarginMap(s.compounds, s.dose)
	}

	next := FilteredCompounds(s.compounds, s.filters, s.stats, s.selection, s.discrete)
	if !sameResultSet(s.visible, next) {
		s.generation++
	}
	s.visible = next
	s.histograms = Histograms(next, s.stats, ctypes.DescriptorKeys(), s.binCount)
}

// SetBinCount changes the histogram resolution and rebuilds the derived
// snapshot. Values below one are ignored.
func (s *Session) SetBinCount(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.binCount = n
	s.recompute(false)
}

// sameResultSet reports whether two derivations produced the same ordered
// row set, compared by name.
func sameResultSet(a, b []ctypes.Compound) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

// SetDose applies a new therapeutic dose and recomputes margins for the full
// compound set. The dose must be a positive finite number.
func (s *Session) SetDose(dose float64) error {
	if math.IsNaN(dose) || math.IsInf(dose, 0) || dose <= 0 {
		return errors.Validation("dose must be a positive finite number")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if dose == s.dose {
		return nil
	}
	s.dose = dose
	s.recompute(true)
	return nil
}

// SetRange applies new bounds for one descriptor range filter. Bounds are
// clamped into the population [stats.Min, stats.Max] and swapped if reversed,
// preserving the filter-state invariant.
func (s *Session) SetRange(key ctypes.DescriptorKey, min, max float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[key]
	if !ok {
		return errors.New(errors.ErrCodeDescriptorUnknown, "no statistics for descriptor").WithDetail(string(key))
	}
	if math.IsNaN(min) || math.IsNaN(max) {
		return errors.Validation("range bounds must be numbers")
	}
	if min > max {
		min, max = max, min
	}
	min = math.Max(min, st.Min)
	max = math.Min(max, st.Max)
	s.filters.Range[key] = etypes.RangeBound{Min: min, Max: max}
	s.recompute(false)
	return nil
}

// SetDiscrete selects an option of a discrete filter.
func (s *Session) SetDiscrete(filterID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.discrete {
		f := &s.discrete[i]
		if f.ID != filterID {
			continue
		}
		if f.Option(optionID) == nil {
			return errors.Validation("unknown filter option").WithDetail(filterID + "=" + optionID)
		}
		s.filters.Discrete[filterID] = optionID
		s.recompute(false)
		return nil
	}
	return errors.Validation("unknown discrete filter").WithDetail(filterID)
}

// SetSelection replaces the embedding-based selection set. An empty set means
// "no embedding-based restriction". The slice is copied; callers keep
// ownership of theirs.
func (s *Session) SetSelection(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = append([]string(nil), ids...)
	s.recompute(false)
}

// ClearSelection removes any embedding-based restriction.
func (s *Session) ClearSelection() {
	s.SetSelection(nil)
}

// SetWeightIndex records the active embedding weight position.
func (s *Session) SetWeightIndex(idx int) error {
	if idx < 0 || idx >= WeightOptionCount {
		return errors.New(errors.ErrCodeEmbeddingWeightOOB, "weight index out of range")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weightIndex = idx
	return nil
}

// Reset restores every range filter to the full population range and every
// discrete filter to its first declared option — exactly the initial seed.
// Dose, weight index, and selection are user parameters, not filters, and
// are left untouched.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = SeedFilters(s.stats, s.discrete)
	s.recompute(false)
}

// Dose returns the current therapeutic dose.
func (s *Session) Dose() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dose
}

// WeightIndex returns the active embedding weight position.
func (s *Session) WeightIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weightIndex
}

// Selection returns a copy of the current selection set.
func (s *Session) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selection...)
}

// Compound returns the record with the given name, or an error when absent.
func (s *Session) Compound(name string) (*ctypes.Compound, error) {
	c, ok := s.index[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeCompoundNotFound, "compound not found").WithDetail(name)
	}
	return c, nil
}

// CompoundIndex returns the name-keyed record index. The index is immutable
// for the session lifetime.
func (s *Session) CompoundIndex() map[string]*ctypes.Compound {
	return s.index
}

// Margins returns the current margin summary keyed by compound name. The
// returned map is the live derived snapshot; callers must treat it as
// read-only and re-fetch after any dose change.
func (s *Session) Margins() map[string]safety.Margins {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.margins
}

// Snapshot assembles the full derived state response.
func (s *Session) Snapshot() etypes.StateResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]etypes.CompoundRow, 0, len(s.visible))
	for i := range s.visible {
		c := &s.visible[i]
		row := etypes.CompoundRow{
			ID:    c.ID,
			Name:  c.Name,
			Class: etypes.MarginAlert,
		}
		if m, ok := s.margins[c.Name]; ok {
			row.Class = m.Class
			if m.Defined {
				agg := m.Aggregate
				row.AggregateMargin = &agg
			}
		}
		rows = append(rows, row)
	}

	// Deep-copy the mutable maps so callers can hold the response across
	// subsequent state changes.
	filters := etypes.FilterState{
		Range:    make(map[ctypes.DescriptorKey]etypes.RangeBound, len(s.filters.Range)),
		Discrete: make(map[string]string, len(s.filters.Discrete)),
	}
	for k, v := range s.filters.Range {
		filters.Range[k] = v
	}
	for k, v := range s.filters.Discrete {
		filters.Discrete[k] = v
	}
	hists := make(map[ctypes.DescriptorKey][]float64, len(s.histograms))
	for k, v := range s.histograms {
		hists[k] = append([]float64(nil), v...)
	}

	return etypes.StateResponse{
		Dose:        s.dose,
		WeightIndex: s.weightIndex,
		Filters:     filters,
		Selection:   append([]string(nil), s.selection...),
		Rows:        rows,
		Histograms:  hists,
		Total:       len(s.compounds),
		Visible:     len(s.visible),
		Generation:  s.generation,
	}
}
