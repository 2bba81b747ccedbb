package handlers

import (
	"net/http"

	"github.com/toxscope/toxscope/internal/application/explore"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// ExploreHandler serves the exploration-state endpoints: the derived state
// snapshot plus every parameter and filter mutation.
type ExploreHandler struct {
	svc *explore.Service
}

// NewExploreHandler creates an ExploreHandler over the exploration service.
func NewExploreHandler(svc *explore.Service) *ExploreHandler {
	return &ExploreHandler{svc: svc}
}

// RangeRequest sets the bounds for one descriptor range filter.
type RangeRequest struct {
	Key string  `json:"key"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DiscreteRequest sets the selected option of one discrete filter.
type DiscreteRequest struct {
	FilterID string `json:"filter_id"`
	OptionID string `json:"option_id"`
}

// PendingResponse acknowledges a debounced parameter change that has not yet
// been committed to the derived state.
type PendingResponse struct {
	PendingDose float64 `json:"pending_dose"`
}

// GetState handles GET /state.
func (h *ExploreHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State())
}

// SetDose handles POST /dose. The dose is debounced: the response is 202 and
// the derived state recomputes once the quiet interval elapses.
func (h *ExploreHandler) SetDose(w http.ResponseWriter, r *http.Request) {
	var req etypes.DoseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.ScheduleDose(req.Dose); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, PendingResponse{PendingDose: h.svc.PendingDose()})
}

// SetRange handles POST /filters/range. Range bounds are debounced like the
// dose.
func (h *ExploreHandler) SetRange(w http.ResponseWriter, r *http.Request) {
	var req RangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.ScheduleRange(ctypes.DescriptorKey(req.Key), req.Min, req.Max); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SetDiscrete handles POST /filters/discrete. Discrete filters commit
// immediately.
func (h *ExploreHandler) SetDiscrete(w http.ResponseWriter, r *http.Request) {
	var req DiscreteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.SetDiscrete(req.FilterID, req.OptionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.State())
}

// Reset handles POST /reset: all filters back to population defaults. Dose,
// weight index, and selection are user parameters and stay as they are.
func (h *ExploreHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.svc.Reset()
	writeJSON(w, http.StatusOK, h.svc.State())
}

// SetSelection handles PUT /selection, replacing the selection set.
func (h *ExploreHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req etypes.SelectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.svc.SetSelection(req.IDs)
	writeJSON(w, http.StatusOK, h.svc.State())
}

// Lasso handles POST /lasso, evaluating a recorded gesture path against the
// current embedding points.
func (h *ExploreHandler) Lasso(w http.ResponseWriter, r *http.Request) {
	var req etypes.LassoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	state, err := h.svc.Lasso(r.Context(), req.Path, req.Viewport)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Descriptors handles GET /descriptors, the descriptor catalog with
// population statistics.
func (h *ExploreHandler) Descriptors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Descriptors())
}
