// Package scatter implements the embedding scatter-plot engine: linear data
// to screen scales with padded domains, square viewport sizing, the freehand
// lasso drag machine with even-odd polygon membership, tap-to-select nearest
// point resolution, and the margin-driven point color scale.
package scatter

import (
	"math"

	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

const (
	// MinViewport and MaxViewport bound the square plot side in pixels.
	MinViewport = 100.0
	MaxViewport = 600.0

	// domainPadFraction widens each scale domain so extreme points do not sit
	// on the plot border.
	domainPadFraction = 0.05

	// degeneratePad replaces fractional padding when a domain has zero span.
	degeneratePad = 1.0

	// rayEpsilon guards the even-odd ray cast against edges that are exactly
	// horizontal at the test ordinate.
	rayEpsilon = 1e-9

	// TapTolerance is the maximum screen distance, in pixels, at which a tap
	// resolves to its nearest point.
	TapTolerance = 12.0
)

// ─────────────────────────────────────────────────────────────────────────────
// Scales and viewport
// ─────────────────────────────────────────────────────────────────────────────

// Scale is a linear mapping from a padded data domain onto a screen range.
type Scale struct {
	domainMin float64
	domainMax float64
	rangeMin  float64
	rangeMax  float64
}

// NewScale builds a scale over [domainMin, domainMax], widening the domain by
// 5% of its span on each side. A zero-span domain is widened by an absolute
// 1.0 on each side instead so the mapping stays invertible.
func NewScale(domainMin, domainMax, rangeMin, rangeMax float64) Scale {
	pad := (domainMax - domainMin) * domainPadFraction
	if pad == 0 {
		pad = degeneratePad
	}
	return Scale{
		domainMin: domainMin - pad,
		domainMax: domainMax + pad,
		rangeMin:  rangeMin,
		rangeMax:  rangeMax,
	}
}

// Apply maps a data value onto the screen range.
func (s Scale) Apply(v float64) float64 {
	t := (v - s.domainMin) / (s.domainMax - s.domainMin)
	return s.rangeMin + t*(s.rangeMax-s.rangeMin)
}

// Domain returns the padded domain bounds.
func (s Scale) Domain() (float64, float64) {
	return s.domainMin, s.domainMax
}

// ViewportSize returns the side of the square plot viewport for the given
// available area: the smaller dimension, clamped to [MinViewport, MaxViewport].
func ViewportSize(width, height float64) float64 {
	side := math.Min(width, height)
	if side < MinViewport {
		return MinViewport
	}
	if side > MaxViewport {
		return MaxViewport
	}
	return side
}

// Projection maps embedding data coordinates onto a square viewport. The y
// scale is inverted so larger data values render toward the top.
type Projection struct {
	X    Scale
	Y    Scale
	Size float64
}

// NewProjection fits a projection to the extents of the given points. With no
// points both domains collapse to [0, 0] and rely on degenerate padding.
func NewProjection(points []etypes.EmbeddingPoint, width, height float64) Projection {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	if len(points) == 0 {
		minX, maxX, minY, maxY = 0, 0, 0, 0
	}
	size := ViewportSize(width, height)
	return Projection{
		X:    NewScale(minX, maxX, 0, size),
		Y:    NewScale(minY, maxY, size, 0),
		Size: size,
	}
}

// Project maps one data point to screen coordinates.
func (p Projection) Project(x, y float64) (float64, float64) {
	return p.X.Apply(x), p.Y.Apply(y)
}

// ─────────────────────────────────────────────────────────────────────────────
// Polygon membership and tap resolution
// ─────────────────────────────────────────────────────────────────────────────

// ContainsEvenOdd reports whether (x, y) lies inside the polygon described by
// path under the even-odd rule, casting a horizontal ray toward +x. rayEpsilon
// is added to each edge's vertical span so an edge that is exactly horizontal
// at the test ordinate cannot divide by zero.
func ContainsEvenOdd(path []etypes.PathPoint, x, y float64) bool {
	if len(path) < 3 {
		return false
	}
	inside := false
	j := len(path) - 1
	for i := 0; i < len(path); i++ {
		a, b := path[i], path[j]
		if (a.Y > y) != (b.Y > y) {
			cross := a.X + (y-a.Y)*(b.X-a.X)/(b.Y-a.Y+rayEpsilon)
			if x < cross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// NearestWithin returns the point closest to (x, y) if its distance is at
// most tol, searching in the same coordinate space the arguments use.
func NearestWithin(points []etypes.EmbeddingPoint, x, y, tol float64) (etypes.EmbeddingPoint, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range points {
		d := math.Hypot(p.X-x, p.Y-y)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 || bestDist > tol {
		return etypes.EmbeddingPoint{}, false
	}
	return points[best], true
}
