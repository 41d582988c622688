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

// HoldingRepository provides data access methods for the holding table.
// Holdings are derived rows: the recompute pipeline replaces them from the
// transaction log, so every write here is an upsert keyed by
// (user, account, security).
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

const holdingColumns = `id, user_id, account_id, security_id, quantity, average_cost, realized_pnl,
	dividend_income, total_fees, last_replayed_seq, last_price, current_value, unrealized_pnl, return_pct, updated_at`

// Get retrieves the holding for one ledger key.
// Returns apperrors.ErrHoldingNotFound if no row exists for the key.
func (s *HoldingRepository) Get(key model.HoldingKey) (model.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holding
		WHERE user_id = ? AND account_id = ? AND security_id = ?
	`

	row := s.db.QueryRow(query, key.UserID, key.AccountID, key.SecurityID)
	holding, err := scanHolding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, err
	}

	return holding, nil
}

// GetByUser retrieves all holdings for a user, ordered by account and security.
func (s *HoldingRepository) GetByUser(userID string) ([]model.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holding
		WHERE user_id = ?
		ORDER BY account_id, security_id
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	var holdings []model.Holding
	for rows.Next() {
		holding, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, holding)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// Upsert writes a holding row, replacing any existing row for its key.
func (s *HoldingRepository) Upsert(h model.Holding) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO holding (` + holdingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, account_id, security_id) DO UPDATE SET
			quantity = excluded.quantity,
			average_cost = excluded.average_cost,
			realized_pnl = excluded.realized_pnl,
			dividend_income = excluded.dividend_income,
			total_fees = excluded.total_fees,
			last_replayed_seq = excluded.last_replayed_seq,
			last_price = excluded.last_price,
			current_value = excluded.current_value,
			unrealized_pnl = excluded.unrealized_pnl,
			return_pct = excluded.return_pct,
			updated_at = excluded.updated_at
	`

	var lastPrice sql.NullFloat64
	if h.LastPrice != nil {
		lastPrice = sql.NullFloat64{Float64: *h.LastPrice, Valid: true}
	}

	_, err := s.db.Exec(query,
		h.ID,
		h.UserID,
		h.AccountID,
		h.SecurityID,
		h.Quantity,
		h.AverageCost,
		h.RealizedPnL,
		h.DividendIncome,
		h.TotalFees,
		h.LastReplayedSeq,
		lastPrice,
		h.CurrentValue,
		h.UnrealizedPnL,
		h.ReturnPct,
		h.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert holding: %w", err)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanHolding(row scanner) (model.Holding, error) {
	var h model.Holding
	var lastPrice sql.NullFloat64
	var updatedAt sql.NullString

	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.AccountID,
		&h.SecurityID,
		&h.Quantity,
		&h.AverageCost,
		&h.RealizedPnL,
		&h.DividendIncome,
		&h.TotalFees,
		&h.LastReplayedSeq,
		&lastPrice,
		&h.CurrentValue,
		&h.UnrealizedPnL,
		&h.ReturnPct,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, err
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to scan holding table results: %w", err)
	}

	if lastPrice.Valid {
		h.LastPrice = &lastPrice.Float64
	}
	if updatedAt.Valid {
		h.UpdatedAt, err = ParseTime(updatedAt.String)
		if err != nil {
			return model.Holding{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}

	return h, nil
}
