package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finbase/portfolio-engine/internal/repository"
	"github.com/finbase/portfolio-engine/internal/service"
)

// Logger returns a silenced logger for test service construction.
func Logger() zerolog.Logger {
	return zerolog.Nop()
}

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewHoldingRepository(db),
		repository.NewSummaryRepository(db),
	)
}

func NewTestPerformanceService(t *testing.T, db *sql.DB) *service.PerformanceService {
	t.Helper()

	return service.NewPerformanceService(repository.NewSnapshotRepository(db))
}

func NewTestGoalService(t *testing.T, db *sql.DB) *service.GoalService {
	t.Helper()

	return service.NewGoalService(
		repository.NewGoalRepository(db),
		repository.NewAllocationRepository(db),
		Logger(),
	)
}

func NewTestAlertService(t *testing.T, db *sql.DB) *service.AlertService {
	t.Helper()

	return service.NewAlertService(
		repository.NewAlertRepository(db),
		repository.NewPriceRepository(db),
		repository.NewDepositRepository(db),
		NewTestGoalService(t, db),
		repository.NewAllocationRepository(db),
		NewTestPerformanceService(t, db),
		Logger(),
	)
}

func NewTestRecomputeService(t *testing.T, db *sql.DB) *service.RecomputeService {
	t.Helper()

	return service.NewRecomputeService(
		repository.NewTransactionRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewPriceRepository(db),
		repository.NewDepositRepository(db),
		repository.NewAssetRepository(db),
		repository.NewSummaryRepository(db),
		service.NewLedgerService(Logger()),
		service.NewValuationService(),
		service.NewAggregationService(),
		NewTestPerformanceService(t, db),
		NewTestGoalService(t, db),
		NewTestAlertService(t, db),
		2,
		Logger(),
	)
}

// MakeID generates a UUID string for use in tests.
func MakeID() string {
	return uuid.New().String()
}

// Ptr returns a pointer to the given value. Handy for optional fields
// like Holding.LastPrice.
func Ptr[T any](v T) *T {
	return &v
}
