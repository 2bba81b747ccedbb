package scatter

import (
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// Present projects and styles a decorated point set for a square viewport of
// the given side. Each returned point carries screen coordinates in Px/Py and
// a margin-ramp style, with selected points enlarged and outlined; the data
// coordinates are left untouched.
func Present(points []etypes.EmbeddingPoint, side float64, selected map[string]bool) (Projection, []etypes.EmbeddingPoint) {
	proj := NewProjection(points, side, side)
	colors := NewColorScale(points)
	out := make([]etypes.EmbeddingPoint, len(points))
	for i, p := range points {
		p.Px, p.Py = proj.Project(p.X, p.Y)
		p.Style = colors.StyleFor(p, selected[p.ID])
		out[i] = p
	}
	return proj, out
}

// ResolveGestureIn maps a data-space gesture path and point set through the
// given projection and resolves the gesture in screen space, so TapTolerance
// applies in pixels regardless of the data domain's span.
func ResolveGestureIn(proj Projection, path []etypes.PathPoint, points []etypes.EmbeddingPoint) Result {
	spath := make([]etypes.PathPoint, len(path))
	for i, q := range path {
		x, y := proj.Project(q.X, q.Y)
		spath[i] = etypes.PathPoint{X: x, Y: y}
	}
	spts := make([]etypes.EmbeddingPoint, len(points))
	for i, p := range points {
		p.X, p.Y = proj.Project(p.X, p.Y)
		spts[i] = p
	}
	return ResolveGesture(spath, spts)
}
