package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/model"
)

// SnapshotRepository provides data access methods for the
// performance_snapshot table. There is at most one snapshot per
// (user, calendar date); writing the same date again overwrites the row.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotColumns = `id, user_id, date, total_value, total_investment, total_pnl, calculated_at`

// Upsert writes the snapshot for its (user, date), replacing any existing
// row. This is what makes the daily snapshot pass safe to re-run.
func (s *SnapshotRepository) Upsert(snapshot model.PerformanceSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	snapshot.CalculatedAt = time.Now().UTC()

	query := `
		INSERT INTO performance_snapshot (` + snapshotColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			total_value = excluded.total_value,
			total_investment = excluded.total_investment,
			total_pnl = excluded.total_pnl,
			calculated_at = excluded.calculated_at
	`

	_, err := s.db.Exec(query,
		snapshot.ID,
		snapshot.UserID,
		snapshot.Date.Format(DateFormat),
		snapshot.TotalValue,
		snapshot.TotalInvestment,
		snapshot.TotalPnL,
		snapshot.CalculatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert performance snapshot: %w", err)
	}

	return nil
}

// GetOnOrBefore retrieves the most recent snapshot with date <= the target
// date. This is the nearest-on-or-before reference lookup used for window
// deltas. Returns apperrors.ErrSnapshotNotFound when no snapshot qualifies.
func (s *SnapshotRepository) GetOnOrBefore(userID string, date time.Time) (model.PerformanceSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM performance_snapshot
		WHERE user_id = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`

	snapshot, err := scanSnapshot(s.db.QueryRow(query, userID, date.Format(DateFormat)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.PerformanceSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return model.PerformanceSnapshot{}, err
	}

	return snapshot, nil
}

func scanSnapshot(row scanner) (model.PerformanceSnapshot, error) {
	var snapshot model.PerformanceSnapshot
	var dateStr, calculatedAtStr string

	err := row.Scan(
		&snapshot.ID,
		&snapshot.UserID,
		&dateStr,
		&snapshot.TotalValue,
		&snapshot.TotalInvestment,
		&snapshot.TotalPnL,
		&calculatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PerformanceSnapshot{}, err
	}
	if err != nil {
		return model.PerformanceSnapshot{}, fmt.Errorf("failed to scan performance_snapshot table results: %w", err)
	}

	snapshot.Date, err = ParseTime(dateStr)
	if err != nil {
		return model.PerformanceSnapshot{}, fmt.Errorf("failed to parse date: %w", err)
	}

	snapshot.CalculatedAt, err = ParseTime(calculatedAtStr)
	if err != nil {
		return model.PerformanceSnapshot{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return snapshot, nil
}
