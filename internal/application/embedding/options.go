// Package embedding implements the per-weight 2D coordinate loader: fetching
// and parsing coordinate files, the positional join against the canonical id
// list, session-lifetime memoization, staleness guarding for superseded
// loads, and the decoration step that attaches compounds and current safety
// margins to base points.
package embedding

import (
	"fmt"

	"github.com/toxscope/toxscope/pkg/errors"
)

// WeightOption is one discrete blend position of the embedding, naming its
// coordinate resource. The set of options is static configuration.
type WeightOption struct {
	// Index is the option's position, 0..10.
	Index int `json:"index"`

	// Weight is the blend weight, 0.0..1.0 in 0.1 steps.
	Weight float64 `json:"weight"`

	Label    string `json:"label"`
	Resource string `json:"-"`
}

// IDsResource is the newline-delimited resource giving the canonical
// positional ordering of compound ids for coordinate joins.
const IDsResource = "ids.txt"

// weightOptions is the static 11-position enumeration.
var weightOptions = buildWeightOptions()

func buildWeightOptions() []WeightOption {
	out := make([]WeightOption, 11)
	for i := range out {
		w := float64(i) / 10
		out[i] = WeightOption{
			Index:    i,
			Weight:   w,
			Label:    fmt.Sprintf("%.1f", w),
			Resource: fmt.Sprintf("embeddings/blend_%.1f.csv", w),
		}
	}
	return out
}

// Options returns the static weight option enumeration as a fresh copy.
func Options() []WeightOption {
	return append([]WeightOption(nil), weightOptions...)
}

// OptionAt returns the weight option at the given index.
func OptionAt(index int) (WeightOption, error) {
	if index < 0 || index >= len(weightOptions) {
		return WeightOption{}, errors.New(errors.ErrCodeEmbeddingWeightOOB, "weight index out of range").
			WithDetail(fmt.Sprintf("index=%d", index))
	}
	return weightOptions[index], nil
}
