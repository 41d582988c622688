package model

import "time"

// Asset types aggregated into per-user portfolio summaries.
const (
	AssetTypeSecurities       = "securities"
	AssetTypeFixedDeposit     = "fixed_deposit"
	AssetTypeRecurringDeposit = "recurring_deposit"
	AssetTypeGold             = "gold"
	AssetTypeRealEstate       = "real_estate"
	AssetTypeOther            = "other"
)

// AssetTypes lists every aggregated asset type in stable order. The
// aggregator emits one summary row per entry even when the user holds
// nothing of that type.
var AssetTypes = []string{
	AssetTypeSecurities,
	AssetTypeFixedDeposit,
	AssetTypeRecurringDeposit,
	AssetTypeGold,
	AssetTypeRealEstate,
	AssetTypeOther,
}

// AssetTypeSummary is the aggregated state of one asset type for one user.
// PercentageOfPortfolio is the type's share of the user's total current
// value; the shares across all types sum to 100 whenever the total is
// positive, and are all zero otherwise.
type AssetTypeSummary struct {
	UserID                string    `json:"userId"`
	AssetType             string    `json:"assetType"`
	TotalInvestment       float64   `json:"totalInvestment"`
	CurrentValue          float64   `json:"currentValue"`
	UnrealizedPnL         float64   `json:"unrealizedPnl"`
	RealizedPnL           float64   `json:"realizedPnl"`
	TotalPnL              float64   `json:"totalPnl"`
	PercentageOfPortfolio float64   `json:"percentageOfPortfolio"`
	CalculatedAt          time.Time `json:"calculatedAt,omitempty"`
}

// PortfolioSummary is the user-level rollup returned alongside the
// per-type rows.
type PortfolioSummary struct {
	UserID          string             `json:"userId"`
	TotalInvestment float64            `json:"totalInvestment"`
	TotalValue      float64            `json:"totalValue"`
	TotalPnL        float64            `json:"totalPnl"`
	AssetTypes      []AssetTypeSummary `json:"assetTypes"`
}
