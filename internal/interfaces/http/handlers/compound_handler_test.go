package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

func TestCompoundDetail(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/compounds/rotenone", "")
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Compound  map[string]interface{} `json:"compound"`
		Aggregate *float64               `json:"aggregate_margin"`
		Class     string                 `json:"class"`
		Curves    []etypes.CurveSeries   `json:"curves"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "rotenone", detail.Compound["name"])
	require.NotNil(t, detail.Aggregate)
	assert.Equal(t, 0.5, *detail.Aggregate)
	assert.Equal(t, "ALERT", detail.Class)
	require.Len(t, detail.Curves, 1)
	assert.Equal(t, []float64{100, 40, 5}, detail.Curves[0].Mean)
}

func TestCompoundDetailNotFound(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/compounds/ghost", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Code)
}

func TestCompoundCurves(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/compounds/aspirin/curves", "")
	require.Equal(t, http.StatusOK, w.Code)

	var curves []etypes.CurveSeries
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &curves))
	require.Len(t, curves, 1)
	assert.Equal(t, []float64{0.1, 1, 10}, curves[0].Doses)
	require.NotNil(t, curves[0].LD50)
	assert.Equal(t, 500.0, *curves[0].LD50)
}

func TestCompoundStructureServesSVG(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/compounds/aspirin/structure", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")
}

// A compound without any structure notation still gets a body: the
// placeholder depiction.
func TestCompoundStructurePlaceholderWithoutNotation(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/compounds/rotenone/structure", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "structure unavailable")
}

func TestCompoundStructureNotFound(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/compounds/ghost/structure", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
