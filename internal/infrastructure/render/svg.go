package render

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/toxscope/toxscope/pkg/errors"
)

const depictionSize = 240

// svgRenderer is the built-in fallback engine: it emits a labelled SVG card
// carrying the notation text. Deployments with a real depiction engine
// replace it through Configure.
type svgRenderer struct{}

func defaultFactory(context.Context) (Renderer, error) {
	return svgRenderer{}, nil
}

func (svgRenderer) Render(ctx context.Context, notation string, kind Notation) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCancelled, "rendering cancelled")
	}
	notation = strings.TrimSpace(notation)
	if notation == "" {
		return nil, errors.New(errors.ErrCodeNotationInvalid, "empty structure notation")
	}
	if kind == NotationInChI && !strings.HasPrefix(notation, "InChI=") {
		return nil, errors.New(errors.ErrCodeNotationInvalid, "InChI notation must start with \"InChI=\"")
	}

	label := notation
	if len(label) > 28 {
		label = label[:25] + "..."
	}
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#fff" stroke="#ccc"/>`+
			`<text x="50%%" y="46%%" text-anchor="middle" font-family="monospace" font-size="11">%s</text>`+
			`<text x="50%%" y="58%%" text-anchor="middle" font-family="sans-serif" font-size="9" fill="#888">%s</text>`+
			`</svg>`,
		depictionSize, depictionSize, depictionSize, depictionSize,
		html.EscapeString(label), html.EscapeString(string(kind)))
	return []byte(svg), nil
}

// UnavailableDepiction is the placeholder body served when no structure can
// be drawn. It is always valid SVG so the detail panel renders something.
func UnavailableDepiction() []byte {
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#f5f5f5" stroke="#ccc"/>`+
			`<text x="50%%" y="52%%" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#888">structure unavailable</text>`+
			`</svg>`,
		depictionSize, depictionSize, depictionSize, depictionSize)
	return []byte(svg)
}
