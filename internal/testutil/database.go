package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migration.
//
//nolint:funlen // Database schema DDL
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Append-only security transaction ledger
		CREATE TABLE "transaction" (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			account_id VARCHAR(36) NOT NULL,
			security_id VARCHAR(36) NOT NULL,
			type VARCHAR(10) NOT NULL CHECK (type IN ('buy', 'sell', 'bonus', 'split', 'dividend')),
			date DATE NOT NULL,
			quantity FLOAT NOT NULL DEFAULT 0,
			price FLOAT NOT NULL DEFAULT 0,
			fees FLOAT NOT NULL DEFAULT 0,
			seq INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (user_id, account_id, security_id, seq)
		);

		CREATE INDEX idx_transaction_ledger ON "transaction" (user_id, account_id, security_id, date, seq);

		-- Derived positions
		CREATE TABLE holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			account_id VARCHAR(36) NOT NULL,
			security_id VARCHAR(36) NOT NULL,
			quantity FLOAT NOT NULL DEFAULT 0,
			average_cost FLOAT NOT NULL DEFAULT 0,
			realized_pnl FLOAT NOT NULL DEFAULT 0,
			dividend_income FLOAT NOT NULL DEFAULT 0,
			total_fees FLOAT NOT NULL DEFAULT 0,
			last_replayed_seq INTEGER NOT NULL DEFAULT 0,
			last_price FLOAT,
			current_value FLOAT NOT NULL DEFAULT 0,
			unrealized_pnl FLOAT NOT NULL DEFAULT 0,
			return_pct FLOAT NOT NULL DEFAULT 0,
			updated_at DATETIME,
			UNIQUE (user_id, account_id, security_id)
		);

		-- Latest price observation per security
		CREATE TABLE security_price (
			security_id VARCHAR(36) NOT NULL PRIMARY KEY,
			price FLOAT NOT NULL,
			as_of DATETIME NOT NULL
		);

		CREATE TABLE deposit (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			kind VARCHAR(10) NOT NULL CHECK (kind IN ('fixed', 'recurring')),
			principal FLOAT NOT NULL DEFAULT 0,
			monthly_installment FLOAT NOT NULL DEFAULT 0,
			annual_rate_pct FLOAT NOT NULL DEFAULT 0,
			start_date DATE NOT NULL,
			maturity_date DATE NOT NULL,
			maturity_amount FLOAT
		);

		CREATE INDEX idx_deposit_user ON deposit (user_id);

		CREATE TABLE physical_asset (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			asset_type VARCHAR(20) NOT NULL CHECK (asset_type IN ('gold', 'real_estate', 'other')),
			purchase_cost FLOAT NOT NULL DEFAULT 0,
			current_value FLOAT NOT NULL DEFAULT 0
		);

		CREATE INDEX idx_physical_asset_user ON physical_asset (user_id);

		-- Aggregated per-type summaries
		CREATE TABLE asset_type_summary (
			user_id VARCHAR(36) NOT NULL,
			asset_type VARCHAR(20) NOT NULL,
			total_investment FLOAT NOT NULL DEFAULT 0,
			current_value FLOAT NOT NULL DEFAULT 0,
			unrealized_pnl FLOAT NOT NULL DEFAULT 0,
			realized_pnl FLOAT NOT NULL DEFAULT 0,
			total_pnl FLOAT NOT NULL DEFAULT 0,
			percentage_of_portfolio FLOAT NOT NULL DEFAULT 0,
			calculated_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, asset_type)
		);

		CREATE TABLE performance_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			total_value FLOAT NOT NULL DEFAULT 0,
			total_investment FLOAT NOT NULL DEFAULT 0,
			total_pnl FLOAT NOT NULL DEFAULT 0,
			calculated_at DATETIME NOT NULL,
			UNIQUE (user_id, date)
		);

		CREATE INDEX idx_snapshot_user_date ON performance_snapshot (user_id, date);

		CREATE TABLE goal (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			tracking_mode VARCHAR(10) NOT NULL DEFAULT 'manual' CHECK (tracking_mode IN ('portfolio', 'manual')),
			target_amount FLOAT NOT NULL DEFAULT 0,
			current_amount FLOAT NOT NULL DEFAULT 0,
			target_date DATE NOT NULL,
			is_achieved BOOLEAN NOT NULL DEFAULT FALSE,
			achieved_date DATE
		);

		CREATE INDEX idx_goal_user ON goal (user_id);

		CREATE TABLE allocation_target (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			asset_type VARCHAR(20) NOT NULL,
			target_percentage FLOAT NOT NULL DEFAULT 0,
			tolerance_band FLOAT NOT NULL DEFAULT 0,
			current_percentage FLOAT NOT NULL DEFAULT 0,
			deviation_pct FLOAT NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'within_tolerance',
			UNIQUE (user_id, asset_type)
		);

		CREATE TABLE alert (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			alert_type VARCHAR(20) NOT NULL CHECK (alert_type IN ('price', 'allocation_drift', 'maturity', 'goal_progress', 'performance')),
			subject_id VARCHAR(36),
			condition VARCHAR(10) NOT NULL CHECK (condition IN ('above', 'below')),
			threshold FLOAT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_triggered BOOLEAN NOT NULL DEFAULT FALSE,
			triggered_at DATETIME,
			last_checked DATETIME
		);

		CREATE INDEX idx_alert_user ON alert (user_id);

		CREATE TABLE engine_setting (
			key VARCHAR(50) NOT NULL PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables. Useful for reusing the same
// database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	tables := []string{
		"transaction",
		"holding",
		"security_price",
		"deposit",
		"physical_asset",
		"asset_type_summary",
		"performance_snapshot",
		"goal",
		"allocation_target",
		"alert",
		"engine_setting",
	}

	for _, table := range tables {
		//nolint:gosec // Table names are from hardcoded slice, no SQL injection risk
		query := `DELETE FROM "` + table + `"`
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
//
// Example usage:
//
//	count := testutil.CountRows(t, db, "holding")
//	assert.Equal(t, 2, count)
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := `SELECT COUNT(*) FROM "` + table + `"`
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}
