// Package explore defines the exploration-state data types and HTTP
// request/response structures for the toxscope API. Like the other pkg/types
// packages it carries no logic, only data shapes.
package explore

import (
	"github.com/toxscope/toxscope/pkg/types/compound"
)

// ─────────────────────────────────────────────────────────────────────────────
// MarginClass — qualitative safety-margin classification
// ─────────────────────────────────────────────────────────────────────────────

// MarginClass is the qualitative classification of an aggregate safety margin
// at the current therapeutic dose.
type MarginClass string

const (
	// MarginBroad marks a margin of at least 10× the dose.
	MarginBroad MarginClass = "BROAD"

	// MarginModerate marks a margin of at least 3×.
	MarginModerate MarginClass = "MODERATE"

	// MarginNarrow marks a margin of at least 1×.
	MarginNarrow MarginClass = "NARROW"

	// MarginAlert marks a margin below 1×, or a compound for which no valid
	// margin could be computed.
	MarginAlert MarginClass = "ALERT"
)

// ─────────────────────────────────────────────────────────────────────────────
// Filter state
// ─────────────────────────────────────────────────────────────────────────────

// RangeBound is an inclusive [Min, Max] interval for one descriptor.
type RangeBound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterState is the complete user-adjustable filter configuration. It is
// owned by the viewer session; everything below the session consumes it
// read-only. Invariant: each present range bound lies within the population
// [stats.Min, stats.Max] for its key and Min <= Max.
type FilterState struct {
	// Range maps descriptor keys to their configured inclusive bounds.
	Range map[compound.DescriptorKey]RangeBound `json:"range"`

	// Discrete maps discrete filter identifiers to the currently selected
	// option id.
	Discrete map[string]string `json:"discrete"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Embedding
// ─────────────────────────────────────────────────────────────────────────────

// EmbeddingPointBase is one row of a loaded per-weight coordinate set before
// decoration: an id (the compound name join key) and raw 2D coordinates.
type EmbeddingPointBase struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// EmbeddingPoint is a base point decorated with the matching compound and its
// current aggregate safety margin. Compound is nil and Margin absent when no
// record shares the point's join key; such points are still rendered.
type EmbeddingPoint struct {
	ID     string             `json:"id"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
	Record *compound.Compound `json:"-"`

	// Margin is the aggregate safety margin at the current dose, nil when
	// unavailable. Rebuilt on every dose change.
	Margin *float64 `json:"margin,omitempty"`

	// Px, Py are the projected screen coordinates within the square plot
	// viewport. X and Y stay in data space.
	Px float64 `json:"px"`
	Py float64 `json:"py"`

	// Style is the render styling for the point at the current margin ramp
	// and selection state.
	Style PointStyle `json:"style"`
}

// PointStyle is the render styling of one scatter point.
type PointStyle struct {
	Fill   string  `json:"fill"`
	Radius float64 `json:"radius"`
	Stroke string  `json:"stroke,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTP request / response structures
// ─────────────────────────────────────────────────────────────────────────────

// DoseRequest sets the therapeutic dose parameter.
type DoseRequest struct {
	Dose float64 `json:"dose"`
}

// SelectionRequest replaces the embedding-based selection set.
type SelectionRequest struct {
	IDs []string `json:"ids"`
}

// LassoRequest submits a recorded freehand path (in data space) for
// server-side membership evaluation against the current embedding points.
type LassoRequest struct {
	Path []PathPoint `json:"path"`

	// Viewport is the client's square plot side in pixels; the gesture is
	// evaluated in that screen space so the tap tolerance holds at UI scale.
	// Zero means the maximum viewport.
	Viewport float64 `json:"viewport,omitempty"`
}

// PathPoint is one recorded pointer position.
type PathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CompoundRow is the list-view projection of a compound at the current dose.
type CompoundRow struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	AggregateMargin *float64     `json:"aggregate_margin,omitempty"`
	Class           MarginClass  `json:"class"`
}

// StateResponse is the full derived exploration state returned after any
// input change: the visible row set plus everything the charting collaborators
// consume.
type StateResponse struct {
	Dose        float64                              `json:"dose"`
	WeightIndex int                                  `json:"weight_index"`
	Filters     FilterState                          `json:"filters"`
	Selection   []string                             `json:"selection"`
	Rows        []CompoundRow                        `json:"rows"`
	Histograms  map[compound.DescriptorKey][]float64 `json:"histograms"`
	Total       int                                  `json:"total"`
	Visible     int                                  `json:"visible"`

	// Generation increments whenever the visible result set changes; the
	// scroll-virtualization collaborator resets to the top when it observes
	// a new generation.
	Generation uint64 `json:"generation"`
}

// CurveSeries is the parsed dose-response series for one endpoint of one
// compound, ready for the external curve renderer.
type CurveSeries struct {
	Endpoint compound.EndpointKey `json:"endpoint"`
	Doses    []float64            `json:"doses"`
	Mean     []float64            `json:"mean"`
	SD       []float64            `json:"sd,omitempty"`
	Lower    []float64            `json:"lower,omitempty"`
	Upper    []float64            `json:"upper,omitempty"`

	LD20 *float64 `json:"ld20,omitempty"`
	LD50 *float64 `json:"ld50,omitempty"`
	LD80 *float64 `json:"ld80,omitempty"`
}

// EmbeddingResponse carries the decorated point set for one weight index.
type EmbeddingResponse struct {
	WeightIndex int              `json:"weight_index"`
	Points      []EmbeddingPoint `json:"points"`

	// Viewport is the side of the square plot viewport, in pixels, that Px
	// and Py were projected into.
	Viewport float64 `json:"viewport,omitempty"`

	// Warning is set when the embedding load failed; the primary list remains
	// usable and the client shows the warning inline beside the controls.
	Warning string `json:"warning,omitempty"`
}
