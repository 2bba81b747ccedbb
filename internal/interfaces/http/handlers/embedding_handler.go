package handlers

import (
	"net/http"
	"strconv"

	"github.com/toxscope/toxscope/internal/application/explore"
	"github.com/toxscope/toxscope/pkg/errors"
)

// EmbeddingHandler serves the embedding scatter endpoints: the weight
// enumeration and the decorated point set per weight.
type EmbeddingHandler struct {
	svc *explore.Service
}

// NewEmbeddingHandler creates an EmbeddingHandler over the exploration
// service.
func NewEmbeddingHandler(svc *explore.Service) *EmbeddingHandler {
	return &EmbeddingHandler{svc: svc}
}

// Weights handles GET /embedding/weights, the static weight enumeration.
func (h *EmbeddingHandler) Weights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.WeightOptions())
}

// Points handles GET /embedding. The optional index query parameter selects
// a weight and makes it current; without it the current weight is served. The
// optional viewport parameter is the client's square plot side in pixels.
// A failed load yields an empty point set with a warning, never an error.
func (h *EmbeddingHandler) Points(w http.ResponseWriter, r *http.Request) {
	index := h.svc.Session().WeightIndex()
	if raw := r.URL.Query().Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, errors.Validation("index must be an integer"))
			return
		}
		index = n
	}
	var viewport float64
	if raw := r.URL.Query().Get("viewport"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, errors.Validation("viewport must be a number"))
			return
		}
		viewport = v
	}

	resp, err := h.svc.Embedding(r.Context(), index, viewport)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
