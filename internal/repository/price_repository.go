package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/finbase/portfolio-engine/internal/model"
)

// PriceRepository provides data access methods for the security_price
// table, which keeps only the latest observation per security.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetLatest retrieves the latest prices for the given securities, keyed by
// security ID. Securities with no observation are simply absent from the
// returned map; callers fall back to cost-basis valuation for those.
func (s *PriceRepository) GetLatest(securityIDs []string) (map[string]model.SecurityPrice, error) {
	prices := make(map[string]model.SecurityPrice)
	if len(securityIDs) == 0 {
		return prices, nil
	}

	placeholders := make([]string, len(securityIDs))
	args := make([]any, len(securityIDs))
	for i, id := range securityIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `
		SELECT security_id, price, as_of
		FROM security_price
		WHERE security_id IN (` + strings.Join(placeholders, ",") + `)
	`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query security_price table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.SecurityPrice
		var asOfStr string

		if err := rows.Scan(&p.SecurityID, &p.Price, &asOfStr); err != nil {
			return nil, fmt.Errorf("failed to scan security_price table results: %w", err)
		}

		p.AsOf, err = ParseTime(asOfStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		prices[p.SecurityID] = p
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security_price table: %w", err)
	}

	return prices, nil
}

// Upsert stores a price observation, replacing any previous one for the
// security.
func (s *PriceRepository) Upsert(p model.SecurityPrice) error {
	query := `
		INSERT INTO security_price (security_id, price, as_of)
		VALUES (?, ?, ?)
		ON CONFLICT (security_id) DO UPDATE SET
			price = excluded.price,
			as_of = excluded.as_of
	`

	_, err := s.db.Exec(query, p.SecurityID, p.Price, p.AsOf.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert security price: %w", err)
	}

	return nil
}
