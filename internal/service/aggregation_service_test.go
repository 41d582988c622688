package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/service"
)

func summariesByType(rows []model.AssetTypeSummary) map[string]model.AssetTypeSummary {
	byType := make(map[string]model.AssetTypeSummary, len(rows))
	for _, row := range rows {
		byType[row.AssetType] = row
	}
	return byType
}

// TestAggregationService_Aggregate tests the cross-asset rollup.
//
// WHY: The summaries are the user's portfolio overview, and their
// percentage column carries a hard invariant: the shares either sum to
// 100 (within rounding) or are all zero. Every consumer (allocation
// tracking, drift alerts) depends on it.
func TestAggregationService_Aggregate(t *testing.T) {
	svc := service.NewAggregationService()
	asOf := date("2026-06-01")

	t.Run("mixed portfolio percentages sum to 100", func(t *testing.T) {
		holdings := []model.Holding{{
			Position:     model.Position{Quantity: 10, AverageCost: 150},
			CurrentValue: 2000,
		}}
		deposits := []model.Deposit{{
			Kind:         model.DepositFixed,
			Principal:    3000,
			StartDate:    date("2026-01-01"),
			MaturityDate: date("2027-01-01"),
		}}
		assets := []model.PhysicalAsset{{
			AssetType:    model.AssetTypeGold,
			PurchaseCost: 800,
			CurrentValue: 1000,
		}}

		rows, total := svc.Aggregate("user-1", holdings, deposits, assets, asOf)

		byType := summariesByType(rows)
		assert.Equal(t, 33.33, byType[model.AssetTypeSecurities].PercentageOfPortfolio)
		assert.Equal(t, 50.0, byType[model.AssetTypeFixedDeposit].PercentageOfPortfolio)
		assert.Equal(t, 16.67, byType[model.AssetTypeGold].PercentageOfPortfolio)

		var sum float64
		for _, row := range rows {
			sum += row.PercentageOfPortfolio
		}
		assert.InDelta(t, 100.0, sum, 0.01)

		assert.Equal(t, 6000.0, total.TotalValue)
	})

	t.Run("always emits all six asset types in stable order", func(t *testing.T) {
		rows, _ := svc.Aggregate("user-1", nil, nil, nil, asOf)

		require.Len(t, rows, len(model.AssetTypes))
		for i, assetType := range model.AssetTypes {
			assert.Equal(t, assetType, rows[i].AssetType)
		}
	})

	t.Run("empty portfolio has all-zero percentages, not NaN", func(t *testing.T) {
		rows, total := svc.Aggregate("user-1", nil, nil, nil, asOf)

		for _, row := range rows {
			assert.Equal(t, 0.0, row.PercentageOfPortfolio)
			assert.Equal(t, 0.0, row.CurrentValue)
		}
		assert.Equal(t, 0.0, total.TotalValue)
		assert.Equal(t, 0.0, total.TotalPnL)
	})

	t.Run("securities realized includes dividends", func(t *testing.T) {
		holdings := []model.Holding{{
			Position: model.Position{
				Quantity:       10,
				AverageCost:    100,
				RealizedPnL:    200,
				DividendIncome: 50,
			},
			CurrentValue: 1200,
		}}

		rows, _ := svc.Aggregate("user-1", holdings, nil, nil, asOf)

		securities := summariesByType(rows)[model.AssetTypeSecurities]
		assert.Equal(t, 250.0, securities.RealizedPnL)
		assert.Equal(t, 200.0, securities.UnrealizedPnL)
		assert.Equal(t, 450.0, securities.TotalPnL)
	})

	t.Run("physical assets use appraised value", func(t *testing.T) {
		assets := []model.PhysicalAsset{
			{AssetType: model.AssetTypeRealEstate, PurchaseCost: 200000, CurrentValue: 250000},
			{AssetType: model.AssetTypeOther, PurchaseCost: 5000, CurrentValue: 4000},
		}

		rows, _ := svc.Aggregate("user-1", nil, nil, assets, asOf)

		byType := summariesByType(rows)
		assert.Equal(t, 250000.0, byType[model.AssetTypeRealEstate].CurrentValue)
		assert.Equal(t, 50000.0, byType[model.AssetTypeRealEstate].UnrealizedPnL)
		assert.Equal(t, -1000.0, byType[model.AssetTypeOther].UnrealizedPnL)
	})
}

// TestAggregationService_FixedDeposit tests fixed deposit accrual.
//
// WHY: Deposits have no market price; their value is entirely the
// accrual formula, so the day-count arithmetic and the maturity handling
// are the whole feature.
func TestAggregationService_FixedDeposit(t *testing.T) {
	svc := service.NewAggregationService()

	deposit := func() model.Deposit {
		return model.Deposit{
			Kind:          model.DepositFixed,
			Principal:     10000,
			AnnualRatePct: 7.3,
			StartDate:     date("2026-01-01"),
			MaturityDate:  date("2027-01-01"),
		}
	}

	t.Run("accrues simple interest pro-rated by days", func(t *testing.T) {
		// 100 days at 7.3% is exactly 2% of principal.
		rows, _ := svc.Aggregate("user-1", nil, []model.Deposit{deposit()}, nil, date("2026-04-11"))

		fixed := summariesByType(rows)[model.AssetTypeFixedDeposit]
		assert.Equal(t, 10200.0, fixed.CurrentValue)
		assert.Equal(t, 10000.0, fixed.TotalInvestment)
	})

	t.Run("accrual stops at maturity", func(t *testing.T) {
		rows, _ := svc.Aggregate("user-1", nil, []model.Deposit{deposit()}, nil, date("2028-06-01"))

		fixed := summariesByType(rows)[model.AssetTypeFixedDeposit]
		// Full-term accrual, not accrual to the query date.
		assert.Equal(t, 10730.0, fixed.CurrentValue)
	})

	t.Run("maturity amount overrides the formula once matured", func(t *testing.T) {
		d := deposit()
		d.MaturityAmount = ptr(10850)

		rows, _ := svc.Aggregate("user-1", nil, []model.Deposit{d}, nil, date("2027-06-01"))

		fixed := summariesByType(rows)[model.AssetTypeFixedDeposit]
		assert.Equal(t, 10850.0, fixed.CurrentValue)
	})

	t.Run("values at principal before the start date", func(t *testing.T) {
		rows, _ := svc.Aggregate("user-1", nil, []model.Deposit{deposit()}, nil, date("2025-06-01"))

		fixed := summariesByType(rows)[model.AssetTypeFixedDeposit]
		assert.Equal(t, 10000.0, fixed.CurrentValue)
	})
}

// TestAggregationService_RecurringDeposit tests recurring deposit accrual.
//
// WHY: Each installment earns interest only for the months it has been
// held, so both the installment count and the per-installment holding
// period must be right for the value to be right.
func TestAggregationService_RecurringDeposit(t *testing.T) {
	svc := service.NewAggregationService()

	deposit := model.Deposit{
		Kind:               model.DepositRecurring,
		MonthlyInstallment: 1000,
		AnnualRatePct:      12,
		StartDate:          date("2026-01-01"),
		MaturityDate:       date("2027-01-01"),
	}

	t.Run("per-installment interest by months held", func(t *testing.T) {
		// Three installments in by mid-March: January held 2 months,
		// February 1, March 0. At 12% that is 1% per month held.
		rows, _ := svc.Aggregate("user-1", nil, []model.Deposit{deposit}, nil, date("2026-03-15"))

		recurring := summariesByType(rows)[model.AssetTypeRecurringDeposit]
		assert.Equal(t, 3000.0, recurring.TotalInvestment)
		assert.Equal(t, 3030.0, recurring.CurrentValue)
	})

	t.Run("installments are capped at the term", func(t *testing.T) {
		rows, _ := svc.Aggregate("user-1", nil, []model.Deposit{deposit}, nil, date("2028-06-01"))

		recurring := summariesByType(rows)[model.AssetTypeRecurringDeposit]
		assert.Equal(t, 12000.0, recurring.TotalInvestment)
	})

	t.Run("worth nothing before the start date", func(t *testing.T) {
		rows, _ := svc.Aggregate("user-1", nil, []model.Deposit{deposit}, nil, date("2025-06-01"))

		recurring := summariesByType(rows)[model.AssetTypeRecurringDeposit]
		assert.Equal(t, 0.0, recurring.CurrentValue)
		assert.Equal(t, 0.0, recurring.TotalInvestment)
	})
}
