package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/repository"
)

// AlertService compares live metrics against per-alert thresholds and
// flips trigger state. Triggering is monotonic: once an alert fires it
// stays triggered until an external actor resets it; the evaluator never
// auto-clears.
type AlertService struct {
	alertRepo      *repository.AlertRepository
	priceRepo      *repository.PriceRepository
	depositRepo    *repository.DepositRepository
	goalService    *GoalService
	allocationRepo *repository.AllocationRepository
	performance    *PerformanceService
	log            zerolog.Logger
}

// NewAlertService creates a new AlertService with the provided dependencies.
func NewAlertService(
	alertRepo *repository.AlertRepository,
	priceRepo *repository.PriceRepository,
	depositRepo *repository.DepositRepository,
	goalService *GoalService,
	allocationRepo *repository.AllocationRepository,
	performance *PerformanceService,
	log zerolog.Logger,
) *AlertService {
	return &AlertService{
		alertRepo:      alertRepo,
		priceRepo:      priceRepo,
		depositRepo:    depositRepo,
		goalService:    goalService,
		allocationRepo: allocationRepo,
		performance:    performance,
		log:            log.With().Str("component", "alerts").Logger(),
	}
}

// EvaluateAlerts runs one evaluation pass over a user's active alerts and
// returns them with updated state. last_checked advances on every alert
// touched, whether or not its metric was available or its condition met;
// is_triggered and triggered_at are written on the first satisfaction
// only.
func (s *AlertService) EvaluateAlerts(userID string, now time.Time) ([]model.Alert, error) {
	alerts, err := s.alertRepo.GetActiveByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	now = now.UTC()

	for i, alert := range alerts {
		metric, ok := s.resolveMetric(alert, now)

		if ok && !alert.IsTriggered && conditionMet(alert.Condition, metric, alert.Threshold) {
			triggeredAt := now
			alert.IsTriggered = true
			alert.TriggeredAt = &triggeredAt

			s.log.Info().
				Str("alert", alert.ID).
				Str("type", alert.AlertType).
				Float64("metric", metric).
				Float64("threshold", alert.Threshold).
				Msg("Alert triggered")
		}

		alert.LastChecked = &now

		if err := s.alertRepo.UpdateEvaluation(alert); err != nil {
			return nil, fmt.Errorf("failed to persist alert %s: %w", alert.ID, err)
		}

		alerts[i] = alert
	}

	return alerts, nil
}

// ResetAlert clears an alert's trigger state on behalf of an external
// actor acknowledging it.
func (s *AlertService) ResetAlert(alertID string) error {
	return s.alertRepo.Reset(alertID)
}

// resolveMetric reads the live value an alert compares against. A metric
// that cannot be resolved (no price observation yet, subject deleted, no
// snapshot history) leaves the alert untriggered for this pass; the reason
// is logged at debug level.
func (s *AlertService) resolveMetric(alert model.Alert, now time.Time) (float64, bool) {
	switch alert.AlertType {
	case model.AlertPrice:
		prices, err := s.priceRepo.GetLatest([]string{alert.SubjectID})
		if err != nil {
			s.log.Debug().Err(err).Str("alert", alert.ID).Msg("Price lookup failed")
			return 0, false
		}
		price, ok := prices[alert.SubjectID]
		if !ok {
			return 0, false
		}
		return price.Price, true

	case model.AlertAllocationDrift:
		targets, err := s.allocationRepo.GetByUser(alert.UserID)
		if err != nil {
			s.log.Debug().Err(err).Str("alert", alert.ID).Msg("Allocation lookup failed")
			return 0, false
		}
		for _, target := range targets {
			if target.AssetType == alert.SubjectID {
				return target.DeviationPct, true
			}
		}
		return 0, false

	case model.AlertMaturity:
		deposit, err := s.depositRepo.Get(alert.SubjectID)
		if err != nil {
			s.log.Debug().Err(err).Str("alert", alert.ID).Msg("Deposit lookup failed")
			return 0, false
		}
		daysToMaturity := deposit.MaturityDate.Sub(truncateToDay(now)).Hours() / 24
		return daysToMaturity, true

	case model.AlertGoalProgress:
		status, err := s.goalService.GetGoalStatus(alert.SubjectID)
		if err != nil || status.InvalidTarget {
			s.log.Debug().Err(err).Str("alert", alert.ID).Msg("Goal lookup failed")
			return 0, false
		}
		return status.ProgressPct, true

	case model.AlertPerformance:
		performance, err := s.performance.GetPerformance(alert.UserID, now)
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			return 0, false
		}
		if err != nil {
			s.log.Debug().Err(err).Str("alert", alert.ID).Msg("Performance lookup failed")
			return 0, false
		}
		return performance.Day.ChangePct, true

	default:
		s.log.Warn().Str("alert", alert.ID).Str("type", alert.AlertType).Msg("Unknown alert type")
		return 0, false
	}
}

// conditionMet applies the alert's stored comparison direction. The
// direction is configured per alert rather than implied by its type.
func conditionMet(condition string, metric, threshold float64) bool {
	if condition == model.ConditionBelow {
		return metric <= threshold
	}
	return metric >= threshold
}
