package model

import "time"

// Deposit kinds.
const (
	DepositFixed     = "fixed"
	DepositRecurring = "recurring"
)

// Deposit is a fixed or recurring deposit. Fixed deposits carry a lump
// Principal; recurring deposits accumulate MonthlyInstallment every month
// from StartDate until MaturityDate. MaturityAmount, when set, overrides
// the accrual formula once the deposit has matured.
type Deposit struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Name               string    `json:"name"`
	Kind               string    `json:"kind"`
	Principal          float64   `json:"principal"`
	MonthlyInstallment float64   `json:"monthlyInstallment"`
	AnnualRatePct      float64   `json:"annualRatePercentage"`
	StartDate          time.Time `json:"startDate"`
	MaturityDate       time.Time `json:"maturityDate"`
	MaturityAmount     *float64  `json:"maturityAmount"`
}

// Matured reports whether the deposit's maturity date is on or before
// the given date.
func (d Deposit) Matured(on time.Time) bool {
	return !d.MaturityDate.After(on)
}
