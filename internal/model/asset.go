package model

// PhysicalAsset is a non-ledger asset (gold, real estate, other) whose
// current value is appraised by an external collaborator and stored as an
// opaque figure. The engine only buckets it into the aggregation.
type PhysicalAsset struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	Name         string  `json:"name"`
	AssetType    string  `json:"assetType"`
	PurchaseCost float64 `json:"purchaseCost"`
	CurrentValue float64 `json:"currentValue"`
}
