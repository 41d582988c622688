package model

import "time"

// Transaction types understood by the ledger replayer.
const (
	TransactionBuy      = "buy"
	TransactionSell     = "sell"
	TransactionBonus    = "bonus"
	TransactionSplit    = "split"
	TransactionDividend = "dividend"
)

// Transaction represents a single immutable entry in a security's ledger.
// Transactions are append-only: corrections arrive as new reversing entries,
// never as edits. Ordering is by Date, tie-broken by Seq (insertion order).
type Transaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	AccountID  string    `json:"accountId"`
	SecurityID string    `json:"securityId"`
	Type       string    `json:"type"`
	Date       time.Time `json:"date"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Fees       float64   `json:"fees"`
	Seq        int64     `json:"seq"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// SplitRatio returns the split multiplier carried by a split transaction.
// The ratio rides in the Quantity column (e.g. 2 for a 1:2 split).
func (t Transaction) SplitRatio() float64 {
	return t.Quantity
}

// DividendAmount returns the cash amount of a dividend transaction.
// Dividends store the per-unit amount in Price and the unit count in
// Quantity; a zero quantity means Price already holds the full cash amount.
func (t Transaction) DividendAmount() float64 {
	if t.Quantity == 0 {
		return t.Price
	}
	return t.Quantity * t.Price
}
