package model

import "time"

// Position is the replayed state of one security ledger: quantity held,
// weighted-average cost, and cumulative realized figures. It is owned by
// the ledger replayer; valuation fields derived from it live on Holding.
type Position struct {
	Quantity        float64 `json:"quantity"`
	AverageCost     float64 `json:"averageCost"`
	RealizedPnL     float64 `json:"realizedPnl"`
	DividendIncome  float64 `json:"dividendIncome"`
	TotalFees       float64 `json:"totalFees"`
	LastReplayedSeq int64   `json:"lastReplayedSeq"`
}

// Investment returns the current cost basis of the position.
func (p Position) Investment() float64 {
	return p.Quantity * p.AverageCost
}

// Holding represents a persisted position for one (user, account, security)
// key, together with the latest price observation and the valuation fields
// derived from it. LastPrice is nil until a price has been observed; the
// valuator falls back to cost basis in that case.
type Holding struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	AccountID  string `json:"accountId"`
	SecurityID string `json:"securityId"`

	Position

	LastPrice     *float64  `json:"lastPrice"`
	CurrentValue  float64   `json:"currentValue"`
	UnrealizedPnL float64   `json:"unrealizedPnl"`
	ReturnPct     float64   `json:"returnPercentage"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// HoldingKey identifies one ledger. Replay for a key is strictly
// sequential; different keys are independent units of work.
type HoldingKey struct {
	UserID     string
	AccountID  string
	SecurityID string
}

// Key returns the holding's ledger key.
func (h Holding) Key() HoldingKey {
	return HoldingKey{UserID: h.UserID, AccountID: h.AccountID, SecurityID: h.SecurityID}
}
