package handlers

import (
	"errors"
	"net/http"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/api/response"
)

// respondServiceError maps service-layer errors onto HTTP statuses:
// missing entities are 404, rejected business rules 400, upstream
// outages 502, everything else 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrHoldingNotFound),
		errors.Is(err, apperrors.ErrGoalNotFound),
		errors.Is(err, apperrors.ErrSnapshotNotFound),
		errors.Is(err, apperrors.ErrAlertNotFound),
		errors.Is(err, apperrors.ErrDepositNotFound),
		errors.Is(err, apperrors.ErrSummaryNotFound):
		response.RespondError(w, http.StatusNotFound, "not found", err.Error())

	case errors.Is(err, apperrors.ErrInsufficientQuantity),
		errors.Is(err, apperrors.ErrInvalidRatio),
		errors.Is(err, apperrors.ErrUnknownTransactionType),
		errors.Is(err, apperrors.ErrInvalidGoalTarget),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrEmptyID):
		response.RespondError(w, http.StatusBadRequest, "request rejected", err.Error())

	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		response.RespondError(w, http.StatusBadGateway, "upstream unavailable", err.Error())

	default:
		response.RespondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
