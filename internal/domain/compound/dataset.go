package compound

import (
	"bytes"
	"encoding/json"

	"github.com/toxscope/toxscope/pkg/errors"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// DecodeDataset parses a raw JSON document into the compound list. The
// document must be a JSON array; anything else is a dataset load error (the
// one failure mode that halts dependent views rather than degrading).
func DecodeDataset(data []byte) ([]ctypes.Compound, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New(errors.ErrCodeDatasetMalformed, "compound dataset must be a JSON array")
	}
	var out []ctypes.Compound
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetMalformed, "failed to decode compound dataset")
	}
	return out, nil
}

// DecodeStats parses the descriptor statistics resource: a JSON object
// mapping descriptor key to {min, mean, max, count}.
func DecodeStats(data []byte) (ctypes.StatsMap, error) {
	var out ctypes.StatsMap
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStatsLoad, "failed to decode descriptor statistics")
	}
	return out, nil
}

// IndexByName builds a name-keyed lookup over the compound list. Later
// records win on duplicate names, matching positional-last semantics of the
// upstream data pipeline.
func IndexByName(compounds []ctypes.Compound) map[string]*ctypes.Compound {
	idx := make(map[string]*ctypes.Compound, len(compounds))
	for i := range compounds {
		idx[compounds[i].Name] = &compounds[i]
	}
	return idx
}

// Curves extracts the parsed dose-response series for every endpoint of c
// that has both a dose grid and a mean series. Endpoints whose series fields
// are missing or unparseable are omitted entirely: the detail view shows
// "data not available" instead of an error.
func Curves(c *ctypes.Compound) []etypes.CurveSeries {
	doses := ParseSeries(c.Doses)
	if doses == nil {
		return nil
	}
	out := make([]etypes.CurveSeries, 0, len(c.Endpoints))
	for _, key := range ctypes.AllEndpoints() {
		ep, ok := c.Endpoints[key]
		if !ok {
			continue
		}
		mean := ParseSeries(ep.Mean)
		if mean == nil {
			continue
		}
		out = append(out, etypes.CurveSeries{
			Endpoint: key,
			Doses:    doses,
			Mean:     mean,
			SD:       ParseSeries(ep.SD),
			Lower:    ParseSeries(ep.Lower),
			Upper:    ParseSeries(ep.Upper),
			LD20:     ep.LD20,
			LD50:     ep.LD50,
			LD80:     ep.LD80,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
