package explore

import (
	"math"

	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// DefaultBinCount is the histogram resolution used by the descriptor panels.
const DefaultBinCount = 24

// FilteredCompounds applies the three predicate stages in order and returns
// the surviving compounds in their input order (a stable filter, never a
// sort). The function is pure: it is re-evaluated in full whenever any input
// changes, which for the bounded dataset sizes this service targets is
// cheaper and simpler than incremental maintenance. Cost is O(N·F) for N
// compounds and F active filters.
//
// Stage order:
//  1. selection membership by compound name, only when the selection set is
//     non-empty;
//  2. range filters, for every key that has both a configured range and
//     population stats — a compound with the descriptor absent is excluded;
//  3. discrete filters — an absent or nil predicate excludes nothing.
func FilteredCompounds(
	compounds []ctypes.Compound,
	filters etypes.FilterState,
	stats ctypes.StatsMap,
	selection []string,
	discrete []DiscreteFilter,
) []ctypes.Compound {
	var selected map[string]struct{}
	if len(selection) > 0 {
		selected = make(map[string]struct{}, len(selection))
		for _, id := range selection {
			selected[id] = struct{}{}
		}
	}

	// Resolve discrete predicates once, not per compound.
	type activePredicate struct {
		match func(c *ctypes.Compound) bool
	}
	var predicates []activePredicate
	for i := range discrete {
		f := &discrete[i]
		optID, ok := filters.Discrete[f.ID]
		if !ok {
			continue
		}
		opt := f.Option(optID)
		if opt == nil || opt.Match == nil {
			continue
		}
		predicates = append(predicates, activePredicate{match: opt.Match})
	}

	out := make([]ctypes.Compound, 0, len(compounds))

compoundLoop:
	for i := range compounds {
		c := &compounds[i]

		if selected != nil {
			if _, ok := selected[c.Name]; !ok {
				continue
			}
		}

		for key, bound := range filters.Range {
			if _, hasStats := stats[key]; !hasStats {
				continue
			}
			v, present := c.Descriptor(key)
			if !present || v < bound.Min || v > bound.Max {
				continue compoundLoop
			}
		}

		for _, p := range predicates {
			if !p.match(c) {
				continue compoundLoop
			}
		}

		out = append(out, *c)
	}
	return out
}

// Histograms buckets every compound's descriptor value into binCount
// equal-width bins per key and normalises each histogram by its own maximum
// bin count, yielding bar heights in [0, 1]. Keys whose stats are missing,
// non-finite, or degenerate (min == max) are skipped, as are compounds whose
// value is absent. An all-zero histogram is left unnormalised: dividing by a
// zero maximum would propagate NaN into rendering.
func Histograms(
	compounds []ctypes.Compound,
	stats ctypes.StatsMap,
	keys []ctypes.DescriptorKey,
	binCount int,
) map[ctypes.DescriptorKey][]float64 {
	if binCount <= 0 {
		binCount = DefaultBinCount
	}
	out := make(map[ctypes.DescriptorKey][]float64, len(keys))

	for _, key := range keys {
		st, ok := stats[key]
		if !ok {
			continue
		}
		span := st.Max - st.Min
		if math.IsNaN(span) || math.IsInf(span, 0) || span == 0 {
			continue
		}

		bins := make([]float64, binCount)
		for i := range compounds {
			v, present := compounds[i].Descriptor(key)
			if !present || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			idx := int(math.Floor((v - st.Min) / span * float64(binCount)))
			if idx < 0 {
				idx = 0
			}
			if idx > binCount-1 {
				idx = binCount - 1
			}
			bins[idx]++
		}

		max := 0.0
		for _, b := range bins {
			if b > max {
				max = b
			}
		}
		if max > 0 {
			for i := range bins {
				bins[i] /= max
			}
		}
		out[key] = bins
	}
	return out
}
