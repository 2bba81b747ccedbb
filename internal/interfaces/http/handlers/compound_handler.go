package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toxscope/toxscope/internal/application/explore"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
	"github.com/toxscope/toxscope/internal/infrastructure/render"
)

// CompoundHandler serves per-compound endpoints: the detail panel payload,
// the parsed dose-response curves, and the rendered structure depiction.
type CompoundHandler struct {
	svc *explore.Service
	log logging.Logger
}

// NewCompoundHandler creates a CompoundHandler over the exploration service.
func NewCompoundHandler(svc *explore.Service, log logging.Logger) *CompoundHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CompoundHandler{svc: svc, log: log.Named("compound")}
}

// Detail handles GET /compounds/{name}.
func (h *CompoundHandler) Detail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	detail, err := h.svc.Detail(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Curves handles GET /compounds/{name}/curves.
func (h *CompoundHandler) Curves(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	curves, err := h.svc.Curves(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, curves)
}

// Structure handles GET /compounds/{name}/structure. The renderer never
// fails the request: when depiction is impossible a placeholder image is
// served instead, so the detail panel always has something to show.
func (h *CompoundHandler) Structure(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	detail, err := h.svc.Detail(name)
	if err != nil {
		writeError(w, err)
		return
	}

	svg, err := render.Depict(r.Context(), detail.Compound.SMILES, detail.Compound.InChI)
	if err != nil {
		h.log.Warn("structure depiction unavailable",
			logging.String("compound", name),
			logging.Err(err))
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}
