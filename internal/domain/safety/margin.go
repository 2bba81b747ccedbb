// Package safety implements the safety-metrics engine: per-endpoint and
// aggregate safety margins derived from a compound's lethal-dose thresholds
// and the current therapeutic dose, plus the qualitative classification used
// for colouring and discrete filtering.
//
// Every function here is pure. Margins are recomputed for the full compound
// set whenever the dose changes; compound records are never mutated.
package safety

import (
	"math"

	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// ld50Sentinel marks an LD50 the upstream model could not estimate. The value
// is stored verbatim in the dataset and must never enter a margin.
const ld50Sentinel = -999

// Classification thresholds, in multiples of the therapeutic dose.
const (
	broadThreshold    = 10
	moderateThreshold = 3
	narrowThreshold   = 1
)

// validLD50 reports whether v is usable for a margin: finite, positive, and
// not the sentinel.
func validLD50(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 && v != ld50Sentinel
}

// EndpointMargin returns LD50(endpoint)/dose and true when the compound has a
// valid LD50 for that endpoint and dose > 0; otherwise 0 and false.
func EndpointMargin(c *ctypes.Compound, endpoint ctypes.EndpointKey, dose float64) (float64, bool) {
	if c == nil || dose <= 0 {
		return 0, false
	}
	ep, ok := c.Endpoints[endpoint]
	if !ok || ep.LD50 == nil || !validLD50(*ep.LD50) {
		return 0, false
	}
	return *ep.LD50 / dose, true
}

// AggregateMargin returns the minimum of all defined endpoint margins across
// the fixed eight toxicity endpoints (the primary bioactivity endpoint is
// excluded). The second result is false iff no endpoint has a valid margin.
func AggregateMargin(c *ctypes.Compound, dose float64) (float64, bool) {
	min := math.Inf(1)
	found := false
	for _, key := range ctypes.ToxicityEndpoints() {
		m, ok := EndpointMargin(c, key, dose)
		if !ok {
			continue
		}
		if m < min {
			min = m
		}
		found = true
	}
	if !found {
		return 0, false
	}
	return min, true
}

// Classify maps a margin to its qualitative class. A margin that is absent
// (ok == false) or non-finite is always MarginAlert.
func Classify(margin float64, ok bool) etypes.MarginClass {
	if !ok || math.IsNaN(margin) || math.IsInf(margin, 0) {
		return etypes.MarginAlert
	}
	switch {
	case margin >= broadThreshold:
		return etypes.MarginBroad
	case margin >= moderateThreshold:
		return etypes.MarginModerate
	case margin >= narrowThreshold:
		return etypes.MarginNarrow
	default:
		return etypes.MarginAlert
	}
}

// Margins is the per-compound margin summary at one dose.
type Margins struct {
	// Endpoint holds the margin for each toxicity endpoint that produced a
	// valid value.
	Endpoint map[ctypes.EndpointKey]float64

	// Aggregate is the minimum endpoint margin, valid only when Defined.
	Aggregate float64
	Defined   bool

	Class etypes.MarginClass
}

// MarginMap computes the margin summary for every compound at the given dose,
// keyed by compound name. It is a pure map over the list: input records are
// left untouched and the result is rebuilt from scratch on every call.
func MarginMap(compounds []ctypes.Compound, dose float64) map[string]Margins {
	out := make(map[string]Margins, len(compounds))
	for i := range compounds {
		c := &compounds[i]
		per := make(map[ctypes.EndpointKey]float64)
		for _, key := range ctypes.ToxicityEndpoints() {
			if m, ok := EndpointMargin(c, key, dose); ok {
				per[key] = m
			}
		}
		agg, defined := AggregateMargin(c, dose)
		out[c.Name] = Margins{
			Endpoint:  per,
			Aggregate: agg,
			Defined:   defined,
			Class:     Classify(agg, defined),
		}
	}
	return out
}
