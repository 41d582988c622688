package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/portfolio-engine/internal/api/response"
	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/service"
)

// HoldingHandler handles holding-related HTTP requests
type HoldingHandler struct {
	portfolioService *service.PortfolioService
}

// NewHoldingHandler creates a new HoldingHandler
func NewHoldingHandler(portfolioService *service.PortfolioService) *HoldingHandler {
	return &HoldingHandler{portfolioService: portfolioService}
}

// GetHolding returns the replayed position for one (user, account, security).
func (h *HoldingHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	key := model.HoldingKey{
		UserID:     chi.URLParam(r, "userID"),
		AccountID:  chi.URLParam(r, "accountID"),
		SecurityID: chi.URLParam(r, "securityID"),
	}

	holding, err := h.portfolioService.GetHolding(key)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, holding)
}

// GetHoldings returns all of a user's holdings.
func (h *HoldingHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolioService.GetHoldings(chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if holdings == nil {
		holdings = []model.Holding{}
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}
