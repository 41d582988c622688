package repository

import (
	"database/sql"
	"fmt"

	"github.com/finbase/portfolio-engine/internal/model"
)

// AllocationRepository provides data access methods for the
// allocation_target table. Target percentage and tolerance band are
// collaborator-owned; the derived fields are written by recompute.
type AllocationRepository struct {
	db *sql.DB
}

// NewAllocationRepository creates a new AllocationRepository with the provided database connection.
func NewAllocationRepository(db *sql.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// GetByUser retrieves all allocation targets for a user.
func (s *AllocationRepository) GetByUser(userID string) ([]model.AllocationTarget, error) {
	query := `
		SELECT id, user_id, asset_type, target_percentage, tolerance_band,
			current_percentage, deviation_pct, status
		FROM allocation_target
		WHERE user_id = ?
		ORDER BY asset_type
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation_target table: %w", err)
	}
	defer rows.Close()

	var targets []model.AllocationTarget
	for rows.Next() {
		var t model.AllocationTarget
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.AssetType,
			&t.TargetPercentage,
			&t.ToleranceBand,
			&t.CurrentPercentage,
			&t.DeviationPct,
			&t.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation_target table results: %w", err)
		}
		targets = append(targets, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation_target table: %w", err)
	}

	return targets, nil
}

// UpdateDerived persists the derived allocation fields for one target.
func (s *AllocationRepository) UpdateDerived(t model.AllocationTarget) error {
	query := `
		UPDATE allocation_target
		SET current_percentage = ?, deviation_pct = ?, status = ?
		WHERE id = ?
	`

	_, err := s.db.Exec(query, t.CurrentPercentage, t.DeviationPct, t.Status, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update allocation target: %w", err)
	}

	return nil
}
