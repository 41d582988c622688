package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/portfolio-engine/internal/api/response"
	"github.com/finbase/portfolio-engine/internal/service"
)

// PortfolioHandler handles portfolio summary HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// GetPortfolioSummary returns the user's asset-type summary rows and
// total, as last derived by the recompute pipeline.
func (h *PortfolioHandler) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.GetPortfolioSummary(chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
