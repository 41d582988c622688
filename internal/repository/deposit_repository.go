package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/model"
)

// DepositRepository provides data access methods for the deposit table.
type DepositRepository struct {
	db *sql.DB
}

// NewDepositRepository creates a new DepositRepository with the provided database connection.
func NewDepositRepository(db *sql.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

const depositColumns = `id, user_id, name, kind, principal, monthly_installment, annual_rate_pct,
	start_date, maturity_date, maturity_amount`

// GetByUser retrieves all deposits for a user.
func (s *DepositRepository) GetByUser(userID string) ([]model.Deposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM deposit
		WHERE user_id = ?
		ORDER BY start_date, id
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposit table: %w", err)
	}
	defer rows.Close()

	var deposits []model.Deposit
	for rows.Next() {
		deposit, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, deposit)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposit table: %w", err)
	}

	return deposits, nil
}

// Get retrieves one deposit by ID.
// Returns apperrors.ErrDepositNotFound if no row exists.
func (s *DepositRepository) Get(depositID string) (model.Deposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM deposit
		WHERE id = ?
	`

	deposit, err := scanDeposit(s.db.QueryRow(query, depositID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Deposit{}, apperrors.ErrDepositNotFound
	}
	if err != nil {
		return model.Deposit{}, err
	}

	return deposit, nil
}

func scanDeposit(row scanner) (model.Deposit, error) {
	var d model.Deposit
	var startStr, maturityStr string
	var maturityAmount sql.NullFloat64

	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Kind,
		&d.Principal,
		&d.MonthlyInstallment,
		&d.AnnualRatePct,
		&startStr,
		&maturityStr,
		&maturityAmount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Deposit{}, err
	}
	if err != nil {
		return model.Deposit{}, fmt.Errorf("failed to scan deposit table results: %w", err)
	}

	d.StartDate, err = ParseTime(startStr)
	if err != nil {
		return model.Deposit{}, fmt.Errorf("failed to parse date: %w", err)
	}

	d.MaturityDate, err = ParseTime(maturityStr)
	if err != nil {
		return model.Deposit{}, fmt.Errorf("failed to parse date: %w", err)
	}

	if maturityAmount.Valid {
		d.MaturityAmount = &maturityAmount.Float64
	}

	return d, nil
}
