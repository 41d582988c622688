package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/portfolio-engine/internal/api/response"
	"github.com/finbase/portfolio-engine/internal/repository"
	"github.com/finbase/portfolio-engine/internal/service"
)

// PerformanceHandler handles performance HTTP requests
type PerformanceHandler struct {
	performanceService *service.PerformanceService
}

// NewPerformanceHandler creates a new PerformanceHandler
func NewPerformanceHandler(performanceService *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performanceService: performanceService}
}

// GetPerformance returns the snapshot in effect on the requested date
// (today when the date parameter is absent) with its window deltas.
func (h *PerformanceHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()

	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := repository.ParseTime(dateParam)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid date parameter", err.Error())
			return
		}
		date = parsed
	}

	performance, err := h.performanceService.GetPerformance(chi.URLParam(r, "userID"), date)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, performance)
}
