package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toxscope/toxscope/pkg/errors"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n": 1}`, w.Body.String())
}

func TestWriteErrorMapsCode(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, errors.NotFound("compound missing"))

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeNotFound.String(), resp.Code)
	assert.Contains(t, resp.Message, "compound missing")
}

func TestWriteErrorMasksInternals(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, errors.Internal("pgx: connection to 10.0.0.3 failed"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Message)
	assert.Equal(t, errors.ErrCodeInternal.String(), resp.Code)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"dose": 1, "nope": 2}`))
	var body struct {
		Dose float64 `json:"dose"`
	}
	err := decodeJSON(httptest.NewRecorder(), req, &body)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestDecodeJSONRejectsMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	var body struct{}
	err := decodeJSON(httptest.NewRecorder(), req, &body)
	assert.Error(t, err)
}
