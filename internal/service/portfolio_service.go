package service

import (
	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/repository"
)

// PortfolioService is the read-only query surface over derived state.
// It never computes anything itself; all rows it returns were produced by
// the recompute pipeline.
type PortfolioService struct {
	holdingRepo *repository.HoldingRepository
	summaryRepo *repository.SummaryRepository
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependencies.
func NewPortfolioService(
	holdingRepo *repository.HoldingRepository,
	summaryRepo *repository.SummaryRepository,
) *PortfolioService {
	return &PortfolioService{
		holdingRepo: holdingRepo,
		summaryRepo: summaryRepo,
	}
}

// GetHolding retrieves the replayed position for one ledger key.
func (s *PortfolioService) GetHolding(key model.HoldingKey) (model.Holding, error) {
	return s.holdingRepo.Get(key)
}

// GetHoldings retrieves all of a user's holdings.
func (s *PortfolioService) GetHoldings(userID string) ([]model.Holding, error) {
	return s.holdingRepo.GetByUser(userID)
}

// GetPortfolioSummary retrieves the user's asset-type summary rows and
// their rollup. Returns apperrors.ErrSummaryNotFound when the user has
// never been recomputed.
func (s *PortfolioService) GetPortfolioSummary(userID string) (model.PortfolioSummary, error) {
	summaries, err := s.summaryRepo.GetByUser(userID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	if len(summaries) == 0 {
		return model.PortfolioSummary{}, apperrors.ErrSummaryNotFound
	}

	total := model.PortfolioSummary{UserID: userID, AssetTypes: summaries}
	for _, row := range summaries {
		total.TotalInvestment += row.TotalInvestment
		total.TotalValue += row.CurrentValue
		total.TotalPnL += row.TotalPnL
	}

	total.TotalInvestment = round(total.TotalInvestment)
	total.TotalValue = round(total.TotalValue)
	total.TotalPnL = round(total.TotalPnL)

	return total, nil
}
