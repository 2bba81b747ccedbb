package scatter

import (
	"fmt"
	"math"

	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

const (
	// Hue endpoints of the margin color ramp, in degrees. Low margins render
	// warm, high margins render green.
	hueMin = 10.0
	hueMax = 120.0

	colorSaturation = 70
	colorLightness  = 45

	// NeutralColor marks points with no usable margin value.
	NeutralColor = "hsl(0, 0%, 62%)"

	// UniformColor marks every point when the margin domain has zero span and
	// a ramp would be meaningless.
	UniformColor = "hsl(200, 60%, 50%)"

	baseRadius     = 3.5
	selectedRadius = 5.5
	selectedStroke = "hsl(0, 0%, 10%)"
)

// ColorScale maps aggregate margins onto the hue ramp. The domain is fitted
// to the finite margins of the point set being rendered.
type ColorScale struct {
	min        float64
	max        float64
	degenerate bool
	empty      bool
}

// NewColorScale fits a scale to the finite margins among the given points.
func NewColorScale(points []etypes.EmbeddingPoint) ColorScale {
	min, max := math.Inf(1), math.Inf(-1)
	found := false
	for _, p := range points {
		if p.Margin == nil || !isFinite(*p.Margin) {
			continue
		}
		min = math.Min(min, *p.Margin)
		max = math.Max(max, *p.Margin)
		found = true
	}
	if !found {
		return ColorScale{empty: true}
	}
	return ColorScale{min: min, max: max, degenerate: min == max}
}

// Color returns the CSS color for one margin value. Nil or non-finite values
// take the neutral color; a degenerate domain takes the uniform color.
func (c ColorScale) Color(margin *float64) string {
	if c.empty || margin == nil || !isFinite(*margin) {
		return NeutralColor
	}
	if c.degenerate {
		return UniformColor
	}
	t := (*margin - c.min) / (c.max - c.min)
	hue := hueMin + t*(hueMax-hueMin)
	return fmt.Sprintf("hsl(%.1f, %d%%, %d%%)", hue, colorSaturation, colorLightness)
}

// StyleFor returns the style for a point, enlarging and outlining it when it
// belongs to the current selection.
func (c ColorScale) StyleFor(p etypes.EmbeddingPoint, selected bool) etypes.PointStyle {
	s := etypes.PointStyle{Fill: c.Color(p.Margin), Radius: baseRadius}
	if selected {
		s.Radius = selectedRadius
		s.Stroke = selectedStroke
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
