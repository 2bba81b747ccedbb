// Package compound provides dataset decoding for the exploration service:
// the numeric series parser used by every dose-response field and the JSON
// dataset/stats loaders that turn external resources into immutable records.
package compound

import (
	"math"
	"strconv"
	"strings"
)

// seriesSeparators reports whether r separates tokens in a series encoding.
// Commas and all whitespace are treated uniformly.
func seriesSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// ParseSeries parses a delimited numeric-array-encoded string into a float
// slice. Bracket characters are stripped, tokens are split on commas and
// whitespace uniformly, and tokens that fail numeric conversion are discarded
// rather than failing the whole parse. Returns nil when the input is empty or
// yields zero valid numbers.
//
// Parsing the same input twice always yields the same result; the function
// never mutates shared state.
func ParseSeries(text string) []float64 {
	if text == "" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == '[' || r == ']' {
			return -1
		}
		return r
	}, text)

	tokens := strings.FieldsFunc(cleaned, seriesSeparator)
	if len(tokens) == 0 {
		return nil
	}

	out := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
