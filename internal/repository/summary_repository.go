package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/finbase/portfolio-engine/internal/model"
)

// SummaryRepository provides data access methods for the asset_type_summary
// table. Summaries are fully derived: each recompute replaces the user's
// complete row set in one transaction so readers never observe a partial
// aggregation.
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository creates a new SummaryRepository with the provided database connection.
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Replace atomically swaps the user's summary rows for the given set.
func (s *SummaryRepository) Replace(userID string, summaries []model.AssetTypeSummary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin summary transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM asset_type_summary WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear summaries: %w", err)
	}

	insert := `
		INSERT INTO asset_type_summary
			(user_id, asset_type, total_investment, current_value, unrealized_pnl,
			 realized_pnl, total_pnl, percentage_of_portfolio, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	calculatedAt := time.Now().UTC().Format(time.RFC3339)
	for _, row := range summaries {
		_, err := tx.Exec(insert,
			userID,
			row.AssetType,
			row.TotalInvestment,
			row.CurrentValue,
			row.UnrealizedPnL,
			row.RealizedPnL,
			row.TotalPnL,
			row.PercentageOfPortfolio,
			calculatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert summary row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit summaries: %w", err)
	}

	return nil
}

// GetByUser retrieves the user's summary rows in the engine's stable
// asset-type order.
func (s *SummaryRepository) GetByUser(userID string) ([]model.AssetTypeSummary, error) {
	query := `
		SELECT user_id, asset_type, total_investment, current_value, unrealized_pnl,
			realized_pnl, total_pnl, percentage_of_portfolio, calculated_at
		FROM asset_type_summary
		WHERE user_id = ?
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_type_summary table: %w", err)
	}
	defer rows.Close()

	byType := make(map[string]model.AssetTypeSummary)
	for rows.Next() {
		var row model.AssetTypeSummary
		var calculatedAtStr string

		err := rows.Scan(
			&row.UserID,
			&row.AssetType,
			&row.TotalInvestment,
			&row.CurrentValue,
			&row.UnrealizedPnL,
			&row.RealizedPnL,
			&row.TotalPnL,
			&row.PercentageOfPortfolio,
			&calculatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset_type_summary table results: %w", err)
		}

		row.CalculatedAt, err = ParseTime(calculatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		byType[row.AssetType] = row
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_type_summary table: %w", err)
	}

	if len(byType) == 0 {
		return nil, nil
	}

	// Emit in the engine's canonical order regardless of scan order.
	summaries := make([]model.AssetTypeSummary, 0, len(model.AssetTypes))
	for _, assetType := range model.AssetTypes {
		if row, ok := byType[assetType]; ok {
			summaries = append(summaries, row)
		}
	}

	return summaries, nil
}
