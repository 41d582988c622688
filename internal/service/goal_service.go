package service

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/repository"
)

// GoalService computes goal progress and allocation deviation status.
type GoalService struct {
	goalRepo       *repository.GoalRepository
	allocationRepo *repository.AllocationRepository
	log            zerolog.Logger
}

// NewGoalService creates a new GoalService with the provided repository dependencies.
func NewGoalService(
	goalRepo *repository.GoalRepository,
	allocationRepo *repository.AllocationRepository,
	log zerolog.Logger,
) *GoalService {
	return &GoalService{
		goalRepo:       goalRepo,
		allocationRepo: allocationRepo,
		log:            log.With().Str("component", "goals").Logger(),
	}
}

// Status derives the progress view of a goal.
//
// A non-positive target marks the status invalid instead of failing:
// progress reports 0 and the flag lets callers surface the bad goal.
// Progress is capped at 100 and remaining never goes below zero.
func (s *GoalService) Status(goal model.Goal) model.GoalStatus {
	status := model.GoalStatus{
		GoalID:       goal.ID,
		IsAchieved:   goal.IsAchieved,
		AchievedDate: goal.AchievedDate,
	}

	if goal.TargetAmount <= 0 {
		status.InvalidTarget = true
		return status
	}

	status.ProgressPct = round(math.Min(100, goal.CurrentAmount/goal.TargetAmount*100))
	status.RemainingAmount = round(math.Max(0, goal.TargetAmount-goal.CurrentAmount))

	return status
}

// GetGoalStatus retrieves one goal and derives its status.
func (s *GoalService) GetGoalStatus(goalID string) (model.GoalStatus, error) {
	goal, err := s.goalRepo.Get(goalID)
	if err != nil {
		return model.GoalStatus{}, err
	}

	return s.Status(goal), nil
}

// RefreshGoals updates every goal of a user after a recompute.
// Portfolio-tracked goals take the new portfolio total as their current
// amount; manual goals keep whatever collaborators last wrote.
//
// Achievement is monotonic: the flag flips false to true the first time
// the current amount reaches the target, the achieved date is stamped on
// that transition only, and a later drop below target never clears either.
func (s *GoalService) RefreshGoals(userID string, portfolioTotal float64, date time.Time) error {
	goals, err := s.goalRepo.GetByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load goals: %w", err)
	}

	for _, goal := range goals {
		if goal.TrackingMode == model.GoalTrackPortfolio {
			goal.CurrentAmount = portfolioTotal
		}

		if goal.TargetAmount <= 0 {
			s.log.Warn().
				Str("goal", goal.ID).
				Float64("target", goal.TargetAmount).
				Msg("Goal has non-positive target, skipping achievement check")
		} else if !goal.IsAchieved && goal.CurrentAmount >= goal.TargetAmount {
			achieved := date.UTC()
			goal.IsAchieved = true
			goal.AchievedDate = &achieved
		}

		if err := s.goalRepo.UpdateProgress(goal); err != nil {
			return fmt.Errorf("failed to persist goal %s: %w", goal.ID, err)
		}
	}

	return nil
}

// RefreshAllocations recomputes every allocation target's deviation from
// the freshly aggregated summaries. An asset type with no summary row
// counts as a zero current percentage.
func (s *GoalService) RefreshAllocations(userID string, summaries []model.AssetTypeSummary) error {
	targets, err := s.allocationRepo.GetByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load allocation targets: %w", err)
	}

	currentByType := make(map[string]float64, len(summaries))
	for _, row := range summaries {
		currentByType[row.AssetType] = row.PercentageOfPortfolio
	}

	for _, target := range targets {
		target.CurrentPercentage = currentByType[target.AssetType]
		target.DeviationPct = round(target.CurrentPercentage - target.TargetPercentage)
		target.Status = allocationStatus(target.DeviationPct, target.ToleranceBand)

		if err := s.allocationRepo.UpdateDerived(target); err != nil {
			return fmt.Errorf("failed to persist allocation target %s: %w", target.ID, err)
		}
	}

	return nil
}

// GetAllocationStatus retrieves the user's allocation targets with their
// derived status.
func (s *GoalService) GetAllocationStatus(userID string) ([]model.AllocationTarget, error) {
	return s.allocationRepo.GetByUser(userID)
}

// allocationStatus classifies a deviation against the tolerance band.
func allocationStatus(deviation, toleranceBand float64) string {
	switch {
	case math.Abs(deviation) <= toleranceBand:
		return model.AllocationWithinTolerance
	case deviation > 0:
		return model.AllocationOverweight
	default:
		return model.AllocationUnderweight
	}
}
