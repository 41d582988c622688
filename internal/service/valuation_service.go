package service

import "github.com/finbase/portfolio-engine/internal/model"

// Valuation is the derived market view of a position.
type Valuation struct {
	CurrentValue  float64 // Quantity * latest price (or cost basis fallback)
	UnrealizedPnL float64 // CurrentValue - cost basis
	ReturnPct     float64 // UnrealizedPnL relative to cost basis, in percent
}

// ValuationService derives current value, unrealized P&L and return
// percentage from a position and the latest known price. These are pure
// functions of their inputs: valuation never feeds back into replay.
type ValuationService struct{}

// NewValuationService creates a new ValuationService.
func NewValuationService() *ValuationService {
	return &ValuationService{}
}

// Value computes the valuation of a position. A nil lastPrice degrades to
// cost-basis valuation, so the result is never null or NaN: a position
// without a price observation has zero unrealized P&L by definition.
func (s *ValuationService) Value(pos model.Position, lastPrice *float64) Valuation {
	price := pos.AverageCost
	if lastPrice != nil {
		price = *lastPrice
	}

	investment := pos.Investment()
	currentValue := pos.Quantity * price
	unrealized := currentValue - investment

	returnPct := 0.0
	if investment > 0 {
		returnPct = unrealized / investment * 100
	}

	return Valuation{
		CurrentValue:  currentValue,
		UnrealizedPnL: unrealized,
		ReturnPct:     returnPct,
	}
}

// Revalue applies a valuation onto a holding, rounding the derived fields
// for persistence.
func (s *ValuationService) Revalue(holding model.Holding, lastPrice *float64) model.Holding {
	valuation := s.Value(holding.Position, lastPrice)

	holding.LastPrice = lastPrice
	holding.CurrentValue = round(valuation.CurrentValue)
	holding.UnrealizedPnL = round(valuation.UnrealizedPnL)
	holding.ReturnPct = round(valuation.ReturnPct)

	return holding
}
