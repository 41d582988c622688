package model

// Allocation deviation statuses.
const (
	AllocationWithinTolerance = "within_tolerance"
	AllocationOverweight      = "overweight"
	AllocationUnderweight     = "underweight"
)

// AllocationTarget is a desired portfolio weight for one asset type.
// CurrentPercentage, DeviationPct and Status are derived from the user's
// asset-type summaries on every recompute.
type AllocationTarget struct {
	ID                string  `json:"id"`
	UserID            string  `json:"userId"`
	AssetType         string  `json:"assetType"`
	TargetPercentage  float64 `json:"targetPercentage"`
	ToleranceBand     float64 `json:"toleranceBand"`
	CurrentPercentage float64 `json:"currentPercentage"`
	DeviationPct      float64 `json:"deviationPercentage"`
	Status            string  `json:"status"`
}
