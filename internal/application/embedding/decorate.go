package embedding

import (
	"github.com/toxscope/toxscope/internal/domain/safety"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// Decorate joins base points to compound records by name and attaches the
// compound's current aggregate safety margin. Points with no matching record
// keep a nil record and no margin; they still render, just without detail.
func Decorate(base []etypes.EmbeddingPointBase, index map[string]*ctypes.Compound, margins map[string]safety.Margins) []etypes.EmbeddingPoint {
	out := make([]etypes.EmbeddingPoint, 0, len(base))
	for _, b := range base {
		p := etypes.EmbeddingPoint{ID: b.ID, X: b.X, Y: b.Y}
		if c, ok := index[b.ID]; ok {
			p.Record = c
			if m, ok := margins[b.ID]; ok && m.Defined {
				agg := m.Aggregate
				p.Margin = &agg
			}
		}
		out = append(out, p)
	}
	return out
}
