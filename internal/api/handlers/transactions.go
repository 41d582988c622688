package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/portfolio-engine/internal/api/response"
	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/repository"
	"github.com/finbase/portfolio-engine/internal/service"
)

// TransactionHandler handles the collaborator-facing append endpoint.
// The ledger is append-only: there is no update or delete; corrections
// are posted as new reversing transactions.
type TransactionHandler struct {
	recomputeService *service.RecomputeService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(recomputeService *service.RecomputeService) *TransactionHandler {
	return &TransactionHandler{recomputeService: recomputeService}
}

// AppendTransactionRequest is the append request body.
type AppendTransactionRequest struct {
	AccountID  string  `json:"accountId"`
	SecurityID string  `json:"securityId"`
	Type       string  `json:"type"`
	Date       string  `json:"date"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Fees       float64 `json:"fees"`
}

// AppendTransaction validates and appends one ledger entry. A sell
// exceeding the held quantity or a non-positive split ratio is rejected
// with 400 and leaves the ledger untouched.
func (h *TransactionHandler) AppendTransaction(w http.ResponseWriter, r *http.Request) {
	var req AppendTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	date, err := repository.ParseTime(req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	transaction, err := h.recomputeService.AppendTransaction(model.Transaction{
		UserID:     chi.URLParam(r, "userID"),
		AccountID:  req.AccountID,
		SecurityID: req.SecurityID,
		Type:       req.Type,
		Date:       date,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Fees:       req.Fees,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}
