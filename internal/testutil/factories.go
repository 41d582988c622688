package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/repository"
)

// TransactionBuilder provides a fluent interface for creating ledger
// transactions in tests.
//
// Example usage:
//
//	// Simple buy with defaults
//	tx := testutil.NewTransaction("user-1").Build(t, db)
//
//	// Customized transaction
//	tx := testutil.NewTransaction("user-1").
//	    Sell(5, 150).
//	    OnDate("2026-01-15").
//	    Build(t, db)
type TransactionBuilder struct {
	ID         string
	UserID     string
	AccountID  string
	SecurityID string
	Type       string
	Date       time.Time
	Quantity   float64
	Price      float64
	Fees       float64
	Seq        int64
}

// NewTransaction creates a TransactionBuilder defaulting to a buy of
// 10 units at 100.
func NewTransaction(userID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:         MakeID(),
		UserID:     userID,
		AccountID:  "account-1",
		SecurityID: "security-1",
		Type:       model.TransactionBuy,
		Date:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Quantity:   10,
		Price:      100,
	}
}

// ForSecurity sets the account and security the transaction belongs to.
func (b *TransactionBuilder) ForSecurity(accountID, securityID string) *TransactionBuilder {
	b.AccountID = accountID
	b.SecurityID = securityID
	return b
}

// Buy makes the transaction a buy of the given quantity at the given price.
func (b *TransactionBuilder) Buy(quantity, price float64) *TransactionBuilder {
	b.Type = model.TransactionBuy
	b.Quantity = quantity
	b.Price = price
	return b
}

// Sell makes the transaction a sell of the given quantity at the given price.
func (b *TransactionBuilder) Sell(quantity, price float64) *TransactionBuilder {
	b.Type = model.TransactionSell
	b.Quantity = quantity
	b.Price = price
	return b
}

// Bonus makes the transaction a zero-cost bonus issue of the given quantity.
func (b *TransactionBuilder) Bonus(quantity float64) *TransactionBuilder {
	b.Type = model.TransactionBonus
	b.Quantity = quantity
	b.Price = 0
	return b
}

// Split makes the transaction a split with the given ratio.
func (b *TransactionBuilder) Split(ratio float64) *TransactionBuilder {
	b.Type = model.TransactionSplit
	b.Quantity = ratio
	b.Price = 0
	return b
}

// Dividend makes the transaction a cash dividend of quantity units at
// perUnit each.
func (b *TransactionBuilder) Dividend(quantity, perUnit float64) *TransactionBuilder {
	b.Type = model.TransactionDividend
	b.Quantity = quantity
	b.Price = perUnit
	return b
}

// WithFees sets the transaction fees.
func (b *TransactionBuilder) WithFees(fees float64) *TransactionBuilder {
	b.Fees = fees
	return b
}

// OnDate sets the transaction date from a "2006-01-02" string.
func (b *TransactionBuilder) OnDate(date string) *TransactionBuilder {
	parsed, err := time.Parse(repository.DateFormat, date)
	if err != nil {
		panic("testutil: bad date " + date)
	}
	b.Date = parsed
	return b
}

// WithSeq sets an explicit sequence number instead of the next free one.
func (b *TransactionBuilder) WithSeq(seq int64) *TransactionBuilder {
	b.Seq = seq
	return b
}

// Build inserts the transaction and returns it. When no explicit Seq was
// set the next free sequence number for the ledger key is assigned, so
// repeated Build calls produce a well-formed ledger.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	seq := b.Seq
	if seq == 0 {
		err := db.QueryRow(`
			SELECT COALESCE(MAX(seq), 0) + 1 FROM "transaction"
			WHERE user_id = ? AND account_id = ? AND security_id = ?
		`, b.UserID, b.AccountID, b.SecurityID).Scan(&seq)
		if err != nil {
			t.Fatalf("Failed to assign test transaction seq: %v", err)
		}
	}

	createdAt := time.Now().UTC()

	_, err := db.Exec(`
		INSERT INTO "transaction" (id, user_id, account_id, security_id, type, date, quantity, price, fees, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.UserID, b.AccountID, b.SecurityID, b.Type,
		b.Date.Format(repository.DateFormat), b.Quantity, b.Price, b.Fees,
		seq, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:         b.ID,
		UserID:     b.UserID,
		AccountID:  b.AccountID,
		SecurityID: b.SecurityID,
		Type:       b.Type,
		Date:       b.Date,
		Quantity:   b.Quantity,
		Price:      b.Price,
		Fees:       b.Fees,
		Seq:        seq,
		CreatedAt:  createdAt,
	}
}

// DepositBuilder provides a fluent interface for creating test deposits.
type DepositBuilder struct {
	ID                 string
	UserID             string
	Name               string
	Kind               string
	Principal          float64
	MonthlyInstallment float64
	AnnualRatePct      float64
	StartDate          time.Time
	MaturityDate       time.Time
	MaturityAmount     *float64
}

// NewFixedDeposit creates a builder for a one-year fixed deposit.
func NewFixedDeposit(userID string, principal, ratePct float64) *DepositBuilder {
	return &DepositBuilder{
		ID:            MakeID(),
		UserID:        userID,
		Name:          "Test Fixed Deposit",
		Kind:          model.DepositFixed,
		Principal:     principal,
		AnnualRatePct: ratePct,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MaturityDate:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewRecurringDeposit creates a builder for a one-year recurring deposit.
func NewRecurringDeposit(userID string, installment, ratePct float64) *DepositBuilder {
	return &DepositBuilder{
		ID:                 MakeID(),
		UserID:             userID,
		Name:               "Test Recurring Deposit",
		Kind:               model.DepositRecurring,
		MonthlyInstallment: installment,
		AnnualRatePct:      ratePct,
		StartDate:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MaturityDate:       time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithDates sets the start and maturity dates from "2006-01-02" strings.
func (b *DepositBuilder) WithDates(start, maturity string) *DepositBuilder {
	var err error
	if b.StartDate, err = time.Parse(repository.DateFormat, start); err != nil {
		panic("testutil: bad date " + start)
	}
	if b.MaturityDate, err = time.Parse(repository.DateFormat, maturity); err != nil {
		panic("testutil: bad date " + maturity)
	}
	return b
}

// WithMaturityAmount sets the contract-guaranteed maturity payout.
func (b *DepositBuilder) WithMaturityAmount(amount float64) *DepositBuilder {
	b.MaturityAmount = &amount
	return b
}

// Build inserts the deposit and returns it.
func (b *DepositBuilder) Build(t *testing.T, db *sql.DB) model.Deposit {
	t.Helper()

	var maturityAmount sql.NullFloat64
	if b.MaturityAmount != nil {
		maturityAmount = sql.NullFloat64{Float64: *b.MaturityAmount, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO deposit (id, user_id, name, kind, principal, monthly_installment, annual_rate_pct, start_date, maturity_date, maturity_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.UserID, b.Name, b.Kind, b.Principal, b.MonthlyInstallment,
		b.AnnualRatePct, b.StartDate.Format(repository.DateFormat),
		b.MaturityDate.Format(repository.DateFormat), maturityAmount,
	)
	if err != nil {
		t.Fatalf("Failed to create test deposit: %v", err)
	}

	return model.Deposit{
		ID:                 b.ID,
		UserID:             b.UserID,
		Name:               b.Name,
		Kind:               b.Kind,
		Principal:          b.Principal,
		MonthlyInstallment: b.MonthlyInstallment,
		AnnualRatePct:      b.AnnualRatePct,
		StartDate:          b.StartDate,
		MaturityDate:       b.MaturityDate,
		MaturityAmount:     b.MaturityAmount,
	}
}

// GoalBuilder provides a fluent interface for creating test goals.
type GoalBuilder struct {
	ID            string
	UserID        string
	Name          string
	TrackingMode  string
	TargetAmount  float64
	CurrentAmount float64
	TargetDate    time.Time
	IsAchieved    bool
	AchievedDate  *time.Time
}

// NewGoal creates a builder for a manual goal with the given target.
func NewGoal(userID string, target float64) *GoalBuilder {
	return &GoalBuilder{
		ID:           MakeID(),
		UserID:       userID,
		Name:         "Test Goal",
		TrackingMode: model.GoalTrackManual,
		TargetAmount: target,
		TargetDate:   time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

// TrackingPortfolio makes the goal refresh from the portfolio total.
func (b *GoalBuilder) TrackingPortfolio() *GoalBuilder {
	b.TrackingMode = model.GoalTrackPortfolio
	return b
}

// WithCurrentAmount sets the goal's current amount.
func (b *GoalBuilder) WithCurrentAmount(amount float64) *GoalBuilder {
	b.CurrentAmount = amount
	return b
}

// Achieved marks the goal already achieved on the given date.
func (b *GoalBuilder) Achieved(on time.Time) *GoalBuilder {
	b.IsAchieved = true
	b.AchievedDate = &on
	return b
}

// Build inserts the goal and returns it.
func (b *GoalBuilder) Build(t *testing.T, db *sql.DB) model.Goal {
	t.Helper()

	var achievedDate sql.NullString
	if b.AchievedDate != nil {
		achievedDate = sql.NullString{String: b.AchievedDate.Format(repository.DateFormat), Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO goal (id, user_id, name, tracking_mode, target_amount, current_amount, target_date, is_achieved, achieved_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.UserID, b.Name, b.TrackingMode, b.TargetAmount, b.CurrentAmount,
		b.TargetDate.Format(repository.DateFormat), b.IsAchieved, achievedDate,
	)
	if err != nil {
		t.Fatalf("Failed to create test goal: %v", err)
	}

	return model.Goal{
		ID:            b.ID,
		UserID:        b.UserID,
		Name:          b.Name,
		TrackingMode:  b.TrackingMode,
		TargetAmount:  b.TargetAmount,
		CurrentAmount: b.CurrentAmount,
		TargetDate:    b.TargetDate,
		IsAchieved:    b.IsAchieved,
		AchievedDate:  b.AchievedDate,
	}
}

// AlertBuilder provides a fluent interface for creating test alerts.
type AlertBuilder struct {
	ID          string
	UserID      string
	AlertType   string
	SubjectID   string
	Condition   string
	Threshold   float64
	IsActive    bool
	IsTriggered bool
}

// NewAlert creates a builder for an active, untriggered alert.
func NewAlert(userID, alertType string) *AlertBuilder {
	return &AlertBuilder{
		ID:        MakeID(),
		UserID:    userID,
		AlertType: alertType,
		Condition: model.ConditionAbove,
		IsActive:  true,
	}
}

// WithSubject sets the entity the alert reads its metric from.
func (b *AlertBuilder) WithSubject(subjectID string) *AlertBuilder {
	b.SubjectID = subjectID
	return b
}

// Above sets an "at or above threshold" condition.
func (b *AlertBuilder) Above(threshold float64) *AlertBuilder {
	b.Condition = model.ConditionAbove
	b.Threshold = threshold
	return b
}

// Below sets an "at or below threshold" condition.
func (b *AlertBuilder) Below(threshold float64) *AlertBuilder {
	b.Condition = model.ConditionBelow
	b.Threshold = threshold
	return b
}

// Inactive marks the alert inactive so evaluation passes skip it.
func (b *AlertBuilder) Inactive() *AlertBuilder {
	b.IsActive = false
	return b
}

// Triggered marks the alert already triggered.
func (b *AlertBuilder) Triggered() *AlertBuilder {
	b.IsTriggered = true
	return b
}

// Build inserts the alert and returns it.
func (b *AlertBuilder) Build(t *testing.T, db *sql.DB) model.Alert {
	t.Helper()

	var subjectID sql.NullString
	if b.SubjectID != "" {
		subjectID = sql.NullString{String: b.SubjectID, Valid: true}
	}
	var triggeredAt sql.NullString
	if b.IsTriggered {
		triggeredAt = sql.NullString{String: time.Now().UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO alert (id, user_id, alert_type, subject_id, condition, threshold, is_active, is_triggered, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.UserID, b.AlertType, subjectID, b.Condition, b.Threshold,
		b.IsActive, b.IsTriggered, triggeredAt,
	)
	if err != nil {
		t.Fatalf("Failed to create test alert: %v", err)
	}

	return model.Alert{
		ID:          b.ID,
		UserID:      b.UserID,
		AlertType:   b.AlertType,
		SubjectID:   b.SubjectID,
		Condition:   b.Condition,
		Threshold:   b.Threshold,
		IsActive:    b.IsActive,
		IsTriggered: b.IsTriggered,
	}
}

// Convenience functions

// CreatePrice stores the latest price observation for a security.
func CreatePrice(t *testing.T, db *sql.DB, securityID string, price float64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO security_price (security_id, price, as_of)
		VALUES (?, ?, ?)
		ON CONFLICT (security_id) DO UPDATE SET price = excluded.price, as_of = excluded.as_of
	`, securityID, price, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}
}

// CreatePhysicalAsset stores an appraised physical asset.
func CreatePhysicalAsset(t *testing.T, db *sql.DB, userID, assetType string, cost, value float64) model.PhysicalAsset {
	t.Helper()

	asset := model.PhysicalAsset{
		ID:           MakeID(),
		UserID:       userID,
		Name:         "Test Asset",
		AssetType:    assetType,
		PurchaseCost: cost,
		CurrentValue: value,
	}

	_, err := db.Exec(`
		INSERT INTO physical_asset (id, user_id, name, asset_type, purchase_cost, current_value)
		VALUES (?, ?, ?, ?, ?, ?)
	`, asset.ID, asset.UserID, asset.Name, asset.AssetType, asset.PurchaseCost, asset.CurrentValue)
	if err != nil {
		t.Fatalf("Failed to create test physical asset: %v", err)
	}

	return asset
}

// CreateAllocationTarget stores a desired weight for one asset type.
func CreateAllocationTarget(t *testing.T, db *sql.DB, userID, assetType string, targetPct, tolerance float64) model.AllocationTarget {
	t.Helper()

	target := model.AllocationTarget{
		ID:               MakeID(),
		UserID:           userID,
		AssetType:        assetType,
		TargetPercentage: targetPct,
		ToleranceBand:    tolerance,
		Status:           model.AllocationWithinTolerance,
	}

	_, err := db.Exec(`
		INSERT INTO allocation_target (id, user_id, asset_type, target_percentage, tolerance_band)
		VALUES (?, ?, ?, ?, ?)
	`, target.ID, target.UserID, target.AssetType, target.TargetPercentage, target.ToleranceBand)
	if err != nil {
		t.Fatalf("Failed to create test allocation target: %v", err)
	}

	return target
}

// CreateSnapshot stores a performance snapshot for a user on a date.
func CreateSnapshot(t *testing.T, db *sql.DB, userID, date string, totalValue, totalInvestment float64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO performance_snapshot (id, user_id, date, total_value, total_investment, total_pnl, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, MakeID(), userID, date, totalValue, totalInvestment, totalValue-totalInvestment,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}
}
