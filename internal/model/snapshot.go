package model

import "time"

// PerformanceSnapshot is a persisted daily record of a user's total
// portfolio value. At most one row exists per (user, date); recomputing
// the same date overwrites the row.
type PerformanceSnapshot struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Date            time.Time `json:"date"`
	TotalValue      float64   `json:"totalValue"`
	TotalInvestment float64   `json:"totalInvestment"`
	TotalPnL        float64   `json:"totalPnl"`
	CalculatedAt    time.Time `json:"calculatedAt,omitempty"`
}

// WindowChange is the value delta between a snapshot and the reference
// snapshot one window earlier (nearest on or before the reference date).
// Both fields are zero when no reference snapshot exists.
type WindowChange struct {
	Change    float64 `json:"change"`
	ChangePct float64 `json:"changePercentage"`
}

// Performance combines a snapshot with its calendar-relative deltas.
type Performance struct {
	Snapshot PerformanceSnapshot `json:"snapshot"`
	Day      WindowChange        `json:"day"`
	Week     WindowChange        `json:"week"`
	Month    WindowChange        `json:"month"`
	Year     WindowChange        `json:"year"`
}
