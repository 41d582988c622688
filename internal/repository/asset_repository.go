package repository

import (
	"database/sql"
	"fmt"

	"github.com/finbase/portfolio-engine/internal/model"
)

// AssetRepository provides data access methods for the physical_asset
// table (gold, real estate, other). Current values are appraised by
// external collaborators; the engine only reads them.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new AssetRepository with the provided database connection.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// GetByUser retrieves all physical assets for a user.
func (s *AssetRepository) GetByUser(userID string) ([]model.PhysicalAsset, error) {
	query := `
		SELECT id, user_id, name, asset_type, purchase_cost, current_value
		FROM physical_asset
		WHERE user_id = ?
		ORDER BY asset_type, id
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query physical_asset table: %w", err)
	}
	defer rows.Close()

	var assets []model.PhysicalAsset
	for rows.Next() {
		var a model.PhysicalAsset
		err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.AssetType, &a.PurchaseCost, &a.CurrentValue)
		if err != nil {
			return nil, fmt.Errorf("failed to scan physical_asset table results: %w", err)
		}
		assets = append(assets, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating physical_asset table: %w", err)
	}

	return assets, nil
}
