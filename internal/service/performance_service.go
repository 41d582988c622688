package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/repository"
)

// PerformanceService persists daily portfolio-value snapshots and derives
// calendar-relative change windows from the snapshot history.
type PerformanceService struct {
	snapshotRepo *repository.SnapshotRepository
}

// NewPerformanceService creates a new PerformanceService with the provided repository dependency.
func NewPerformanceService(snapshotRepo *repository.SnapshotRepository) *PerformanceService {
	return &PerformanceService{snapshotRepo: snapshotRepo}
}

// Snapshot writes (or overwrites) the snapshot for the given calendar date
// from the aggregated portfolio total. Re-running the pass for the same
// date replaces the row, which is what makes the daily job idempotent.
func (s *PerformanceService) Snapshot(total model.PortfolioSummary, date time.Time) error {
	return s.snapshotRepo.Upsert(model.PerformanceSnapshot{
		ID:              uuid.NewString(),
		UserID:          total.UserID,
		Date:            truncateToDay(date),
		TotalValue:      total.TotalValue,
		TotalInvestment: total.TotalInvestment,
		TotalPnL:        total.TotalPnL,
	})
}

// GetPerformance returns the snapshot in effect on the given date together
// with its day/week/month/year deltas.
//
// Each window's reference is the most recent snapshot on or before the
// window start (one day, seven days, one calendar month, one calendar year
// back). A window with no reference snapshot, or a reference with zero
// total value, yields zero change and zero percentage rather than an
// error.
func (s *PerformanceService) GetPerformance(userID string, date time.Time) (model.Performance, error) {
	date = truncateToDay(date)

	snapshot, err := s.snapshotRepo.GetOnOrBefore(userID, date)
	if err != nil {
		return model.Performance{}, err
	}

	return model.Performance{
		Snapshot: snapshot,
		Day:      s.windowChange(snapshot, date.AddDate(0, 0, -1)),
		Week:     s.windowChange(snapshot, date.AddDate(0, 0, -7)),
		Month:    s.windowChange(snapshot, date.AddDate(0, -1, 0)),
		Year:     s.windowChange(snapshot, date.AddDate(-1, 0, 0)),
	}, nil
}

// windowChange computes the delta between the current snapshot and the
// nearest reference snapshot on or before the window start date.
func (s *PerformanceService) windowChange(current model.PerformanceSnapshot, windowStart time.Time) model.WindowChange {
	reference, err := s.snapshotRepo.GetOnOrBefore(current.UserID, windowStart)
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return model.WindowChange{}
	}
	if err != nil {
		// Lookup failures degrade to a zero window rather than failing the
		// whole performance read; the snapshot itself was already found.
		return model.WindowChange{}
	}

	change := current.TotalValue - reference.TotalValue

	changePct := 0.0
	if reference.TotalValue > 0 {
		changePct = change / reference.TotalValue * 100
	}

	return model.WindowChange{
		Change:    round(change),
		ChangePct: round(changePct),
	}
}

// truncateToDay normalizes a timestamp to midnight UTC, the engine's
// snapshot date identity.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
