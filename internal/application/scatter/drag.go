package scatter

import (
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// dragState is the lasso interaction state.
type dragState int

const (
	dragIdle dragState = iota
	dragActive
)

// Result is the outcome of a finished lasso gesture. Selection always
// replaces the previous selection set, including when it is empty.
type Result struct {
	// Selection holds the ids of the points the gesture selected.
	Selection []string

	// Tap is true when the gesture resolved as a tap rather than a lasso.
	Tap bool
}

// Tracker is the lasso drag state machine. A pointer-down starts recording,
// moves append to the path, and pointer-up and pointer-leave finish the
// gesture identically. It is not safe for concurrent use; each viewer session
// owns one tracker.
type Tracker struct {
	state dragState
	path  []etypes.PathPoint

	// TooltipCleared is set on every pointer-down; the detail tooltip must
	// not survive into a drag.
	TooltipCleared bool
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Active reports whether a gesture is being recorded.
func (t *Tracker) Active() bool {
	return t.state == dragActive
}

// Path returns the recorded path so far.
func (t *Tracker) Path() []etypes.PathPoint {
	return t.path
}

// Down starts a gesture at the given position, discarding any previous path.
func (t *Tracker) Down(x, y float64) {
	t.state = dragActive
	t.path = t.path[:0]
	t.path = append(t.path, etypes.PathPoint{X: x, Y: y})
	t.TooltipCleared = true
}

// Move appends a position to the active path. Moves while idle are ignored;
// hover motion must not start a gesture.
func (t *Tracker) Move(x, y float64) {
	if t.state != dragActive {
		return
	}
	t.path = append(t.path, etypes.PathPoint{X: x, Y: y})
}

// Up finishes the gesture against the given points and returns the
// replacement selection. The path is always cleared, selected or not.
func (t *Tracker) Up(points []etypes.EmbeddingPoint) Result {
	return t.finish(points)
}

// Leave finishes the gesture exactly as Up does. A pointer escaping the plot
// region must not leave a gesture dangling.
func (t *Tracker) Leave(points []etypes.EmbeddingPoint) Result {
	return t.finish(points)
}

func (t *Tracker) finish(points []etypes.EmbeddingPoint) Result {
	if t.state != dragActive {
		return Result{}
	}
	path := t.path
	t.state = dragIdle
	t.path = nil
	return ResolveGesture(path, points)
}

// ResolveGesture evaluates a recorded path against the point set. Three or
// more recorded positions form a lasso polygon tested under the even-odd
// rule; one or two positions are a tap resolving to the nearest point within
// TapTolerance; an empty path selects nothing.
func ResolveGesture(path []etypes.PathPoint, points []etypes.EmbeddingPoint) Result {
	if len(path) == 0 {
		return Result{Selection: []string{}}
	}
	if len(path) < 3 {
		// A tap resolves against the last recorded position, not the
		// pointer-down location.
		last := path[len(path)-1]
		res := Result{Selection: []string{}, Tap: true}
		if p, ok := NearestWithin(points, last.X, last.Y, TapTolerance); ok {
			res.Selection = append(res.Selection, p.ID)
		}
		return res
	}
	sel := []string{}
	for _, p := range points {
		if ContainsEvenOdd(path, p.X, p.Y) {
			sel = append(sel, p.ID)
		}
	}
	return Result{Selection: sel}
}
