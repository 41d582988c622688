package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SettingRepository provides data access methods for the engine_setting
// key/value table. Its main tenant is the encrypted price-feed API token.
type SettingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new SettingRepository with the provided database connection.
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get retrieves a setting value. Returns ("", false, nil) when the key has
// never been set.
func (s *SettingRepository) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM engine_setting WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query engine_setting table: %w", err)
	}

	return value, true, nil
}

// Set stores a setting value, replacing any existing one.
func (s *SettingRepository) Set(key, value string) error {
	query := `
		INSERT INTO engine_setting (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	return nil
}
