package service

import (
	"time"

	"github.com/finbase/portfolio-engine/internal/model"
)

// AggregationService rolls holdings, deposits and physical assets up into
// per-user, per-asset-type summary rows. All six asset types are always
// emitted, zero-valued when the user holds nothing of that type, so the
// row set per user is stable across recomputes.
type AggregationService struct{}

// NewAggregationService creates a new AggregationService.
func NewAggregationService() *AggregationService {
	return &AggregationService{}
}

// bucket accumulates one asset type during aggregation.
type bucket struct {
	investment float64
	value      float64
	realized   float64
}

// Aggregate computes the user's asset-type summaries and portfolio total
// as of the given date.
//
// Valuation sources per type:
//   - securities: the holdings' derived current_value/unrealized fields
//   - fixed/recurring deposits: principal plus interest accrued to date,
//     or the maturity value once matured
//   - gold, real estate, other: externally appraised current_value
//
// percentage_of_portfolio is each type's share of the summed current
// value; the shares add up to 100 whenever the total is positive and are
// all zero when it is zero.
func (s *AggregationService) Aggregate(
	userID string,
	holdings []model.Holding,
	deposits []model.Deposit,
	assets []model.PhysicalAsset,
	date time.Time,
) ([]model.AssetTypeSummary, model.PortfolioSummary) {

	buckets := make(map[string]*bucket, len(model.AssetTypes))
	for _, assetType := range model.AssetTypes {
		buckets[assetType] = &bucket{}
	}

	for _, h := range holdings {
		b := buckets[model.AssetTypeSecurities]
		b.investment += h.Investment()
		b.value += h.CurrentValue
		b.realized += h.RealizedPnL + h.DividendIncome
	}

	for _, d := range deposits {
		assetType := model.AssetTypeFixedDeposit
		if d.Kind == model.DepositRecurring {
			assetType = model.AssetTypeRecurringDeposit
		}
		investment, value := s.valueDeposit(d, date)
		b := buckets[assetType]
		b.investment += investment
		b.value += value
	}

	for _, a := range assets {
		b, ok := buckets[a.AssetType]
		if !ok {
			b = buckets[model.AssetTypeOther]
		}
		b.investment += a.PurchaseCost
		b.value += a.CurrentValue
	}

	var totalValue, totalInvestment, totalPnL float64
	for _, b := range buckets {
		totalValue += b.value
		totalInvestment += b.investment
	}

	summaries := make([]model.AssetTypeSummary, 0, len(model.AssetTypes))
	for _, assetType := range model.AssetTypes {
		b := buckets[assetType]

		percentage := 0.0
		if totalValue > 0 {
			percentage = b.value / totalValue * 100
		}

		pnl := b.value - b.investment + b.realized
		totalPnL += pnl

		summaries = append(summaries, model.AssetTypeSummary{
			UserID:                userID,
			AssetType:             assetType,
			TotalInvestment:       round(b.investment),
			CurrentValue:          round(b.value),
			UnrealizedPnL:         round(b.value - b.investment),
			RealizedPnL:           round(b.realized),
			TotalPnL:              round(pnl),
			PercentageOfPortfolio: round(percentage),
		})
	}

	total := model.PortfolioSummary{
		UserID:          userID,
		TotalInvestment: round(totalInvestment),
		TotalValue:      round(totalValue),
		TotalPnL:        round(totalPnL),
		AssetTypes:      summaries,
	}

	return summaries, total
}

// valueDeposit returns the invested amount and current value of a deposit
// as of the given date.
func (s *AggregationService) valueDeposit(d model.Deposit, date time.Time) (investment, value float64) {
	if d.Kind == model.DepositRecurring {
		return s.valueRecurringDeposit(d, date)
	}
	return s.valueFixedDeposit(d, date)
}

// valueFixedDeposit values a fixed deposit with simple annual interest
// pro-rated by days held. Once matured, the stored maturity amount wins
// when present; otherwise interest accrues for the full term and stops.
func (s *AggregationService) valueFixedDeposit(d model.Deposit, date time.Time) (investment, value float64) {
	investment = d.Principal

	if date.Before(d.StartDate) {
		return investment, d.Principal
	}

	accrualEnd := date
	if d.Matured(date) {
		if d.MaturityAmount != nil {
			return investment, *d.MaturityAmount
		}
		accrualEnd = d.MaturityDate
	}

	days := accrualEnd.Sub(d.StartDate).Hours() / 24
	value = d.Principal * (1 + d.AnnualRatePct/100*days/365)

	return investment, value
}

// valueRecurringDeposit values a recurring deposit. An installment is paid
// on the start date and on each monthly anniversary before maturity; each
// installment earns simple interest for the months it has been held.
func (s *AggregationService) valueRecurringDeposit(d model.Deposit, date time.Time) (investment, value float64) {
	if date.Before(d.StartDate) {
		return 0, 0
	}

	accrualEnd := date
	if d.Matured(date) {
		if d.MaturityAmount != nil {
			totalInstallments := monthsBetween(d.StartDate, d.MaturityDate)
			return float64(totalInstallments) * d.MonthlyInstallment, *d.MaturityAmount
		}
		accrualEnd = d.MaturityDate
	}

	paid := monthsBetween(d.StartDate, accrualEnd) + 1
	if total := monthsBetween(d.StartDate, d.MaturityDate); paid > total && total > 0 {
		paid = total
	}

	for i := 0; i < paid; i++ {
		paymentDate := d.StartDate.AddDate(0, i, 0)
		heldMonths := monthsBetween(paymentDate, accrualEnd)
		value += d.MonthlyInstallment * (1 + d.AnnualRatePct/100*float64(heldMonths)/12)
	}

	investment = float64(paid) * d.MonthlyInstallment

	return investment, value
}

// monthsBetween counts whole calendar months from a to b, zero when b is
// before a.
func monthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}

	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}

	return months
}
