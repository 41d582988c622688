package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/portfolio-engine/internal/api/response"
	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/service"
)

// AlertHandler handles alert HTTP requests
type AlertHandler struct {
	alertService *service.AlertService
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// EvaluateAlerts runs an evaluation pass over the user's active alerts
// and returns their updated state. This endpoint is side-effecting: a
// satisfied condition flips the alert's trigger state.
func (h *AlertHandler) EvaluateAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alertService.EvaluateAlerts(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if alerts == nil {
		alerts = []model.Alert{}
	}

	response.RespondJSON(w, http.StatusOK, alerts)
}

// ResetAlert acknowledges a triggered alert, clearing its trigger state.
func (h *AlertHandler) ResetAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.alertService.ResetAlert(chi.URLParam(r, "alertID")); err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
