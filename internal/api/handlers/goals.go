package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/portfolio-engine/internal/api/response"
	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/service"
)

// GoalHandler handles goal and allocation HTTP requests
type GoalHandler struct {
	goalService *service.GoalService
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// GetGoalStatus returns the derived progress of one goal.
func (h *GoalHandler) GetGoalStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.goalService.GetGoalStatus(chi.URLParam(r, "goalID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, status)
}

// GetAllocationStatus returns the user's allocation targets with their
// derived deviation status.
func (h *GoalHandler) GetAllocationStatus(w http.ResponseWriter, r *http.Request) {
	targets, err := h.goalService.GetAllocationStatus(chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if targets == nil {
		targets = []model.AllocationTarget{}
	}

	response.RespondJSON(w, http.StatusOK, targets)
}
