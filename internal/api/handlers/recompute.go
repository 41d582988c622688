package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/portfolio-engine/internal/api/response"
	"github.com/finbase/portfolio-engine/internal/service"
)

// RecomputeHandler exposes on-demand recompute for one user.
type RecomputeHandler struct {
	recomputeService *service.RecomputeService
}

// NewRecomputeHandler creates a new RecomputeHandler
func NewRecomputeHandler(recomputeService *service.RecomputeService) *RecomputeHandler {
	return &RecomputeHandler{recomputeService: recomputeService}
}

// Recompute re-derives all of the user's state from the transaction log
// and latest prices. Safe to call repeatedly; the result only depends on
// the log and the prices.
func (h *RecomputeHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	if err := h.recomputeService.RecomputeUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "recomputed"})
}
