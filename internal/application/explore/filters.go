// Package explore implements the derived-state pipeline at the core of the
// exploration service: range and discrete filtering, histogram derivation,
// the debounced parameter controller, and the viewer session that owns all
// user-adjustable state and fans changes out to the pure derivation
// functions.
package explore

import (
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// DiscreteOption is one selectable option of a discrete filter. A nil Match
// means the option excludes nothing (the "ALL" position).
type DiscreteOption struct {
	ID    string
	Label string
	Match func(c *ctypes.Compound) bool
}

// DiscreteFilter is a declared discrete filter: an identifier plus its
// ordered option list. The first declared option is the default and the reset
// target.
type DiscreteFilter struct {
	ID      string
	Label   string
	Options []DiscreteOption
}

// Option returns the option with the given id, or nil when unknown.
func (f *DiscreteFilter) Option(id string) *DiscreteOption {
	for i := range f.Options {
		if f.Options[i].ID == id {
			return &f.Options[i]
		}
	}
	return nil
}

// MarginClassFilterID identifies the built-in margin-class discrete filter.
const MarginClassFilterID = "margin_class"

// NewMarginClassFilter builds the discrete filter over the qualitative safety
// classification. classOf resolves a compound name to its class under the
// current dose; the closure is rebuilt whenever the margin map changes so the
// filter always sees fresh classifications.
func NewMarginClassFilter(classOf func(name string) etypes.MarginClass) DiscreteFilter {
	match := func(want etypes.MarginClass) func(c *ctypes.Compound) bool {
		return func(c *ctypes.Compound) bool {
			return classOf(c.Name) == want
		}
	}
	return DiscreteFilter{
		ID:    MarginClassFilterID,
		Label: "Safety margin",
		Options: []DiscreteOption{
			{ID: "all", Label: "All compounds"},
			{ID: "broad", Label: "Broad (≥10×)", Match: match(etypes.MarginBroad)},
			{ID: "moderate", Label: "Moderate (≥3×)", Match: match(etypes.MarginModerate)},
			{ID: "narrow", Label: "Narrow (≥1×)", Match: match(etypes.MarginNarrow)},
			{ID: "alert", Label: "Alert (<1×)", Match: match(etypes.MarginAlert)},
		},
	}
}

// SeedFilters builds the initial filter state: every descriptor key present
// in stats gets the full population range, and every discrete filter is set
// to its first declared option. Reset reproduces exactly this state.
func SeedFilters(stats ctypes.StatsMap, discrete []DiscreteFilter) etypes.FilterState {
	fs := etypes.FilterState{
		Range:    make(map[ctypes.DescriptorKey]etypes.RangeBound, len(stats)),
		Discrete: make(map[string]string, len(discrete)),
	}
	for key, st := range stats {
		fs.Range[key] = etypes.RangeBound{Min: st.Min, Max: st.Max}
	}
	for _, f := range discrete {
		if len(f.Options) > 0 {
			fs.Discrete[f.ID] = f.Options[0].ID
		}
	}
	return fs
}
