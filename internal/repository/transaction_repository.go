package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finbase/portfolio-engine/internal/model"
)

// TransactionRepository provides data access methods for the transaction
// table. The table is append-only: rows are inserted with a per-ledger
// monotonic sequence number and never updated or deleted.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, account_id, security_id, type, date, quantity, price, fees, seq, created_at`

// GetLedger retrieves the full transaction stream for one
// (user, account, security) key, ordered by (date, seq) ascending.
// This ordering is the replay contract: the ledger replayer applies the
// returned slice front to back.
func (s *TransactionRepository) GetLedger(key model.HoldingKey) ([]model.Transaction, error) {
	return s.getLedgerSince(key, 0)
}

// GetLedgerSince retrieves the transactions for a key with seq strictly
// greater than afterSeq, ordered by (date, seq). Used for incremental
// replay from a holding's last processed point.
func (s *TransactionRepository) GetLedgerSince(key model.HoldingKey, afterSeq int64) ([]model.Transaction, error) {
	return s.getLedgerSince(key, afterSeq)
}

func (s *TransactionRepository) getLedgerSince(key model.HoldingKey, afterSeq int64) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE user_id = ? AND account_id = ? AND security_id = ? AND seq > ?
		ORDER BY date ASC, seq ASC
	`

	rows, err := s.db.Query(query, key.UserID, key.AccountID, key.SecurityID, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetUserLedgers retrieves every transaction for a user, grouped by ledger
// key, each group ordered by (date, seq). The map allows callers to replay
// each (account, security) ledger independently.
func (s *TransactionRepository) GetUserLedgers(userID string) (map[model.HoldingKey][]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE user_id = ?
		ORDER BY account_id, security_id, date ASC, seq ASC
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	ledgers := make(map[model.HoldingKey][]model.Transaction)
	for _, t := range transactions {
		key := model.HoldingKey{UserID: t.UserID, AccountID: t.AccountID, SecurityID: t.SecurityID}
		ledgers[key] = append(ledgers[key], t)
	}

	return ledgers, nil
}

// GetUserIDs returns the distinct user IDs present in the transaction table.
// The recompute pipeline shards its work across this set.
func (s *TransactionRepository) GetUserIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT user_id FROM "transaction" ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ids: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return userIDs, nil
}

// SecurityIDs returns the distinct security IDs present in the
// transaction table. The price refresher pulls quotes for this set.
func (s *TransactionRepository) SecurityIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT security_id FROM "transaction" ORDER BY security_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query security ids: %w", err)
	}
	defer rows.Close()

	var securityIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan security id: %w", err)
		}
		securityIDs = append(securityIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security ids: %w", err)
	}

	return securityIDs, nil
}

// Append inserts a new transaction with the next sequence number for its
// ledger and returns the stored row. The MAX(seq)+1 subquery and the
// UNIQUE (user, account, security, seq) constraint together guarantee a
// gap-free per-ledger ordering even under concurrent appends; callers
// serialize appends per key above this layer.
func (s *TransactionRepository) Append(t model.Transaction) (model.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO "transaction" (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT MAX(seq) FROM "transaction"
				WHERE user_id = ? AND account_id = ? AND security_id = ?), 0) + 1,
			?)
		RETURNING seq
	`

	err := s.db.QueryRow(query,
		t.ID,
		t.UserID,
		t.AccountID,
		t.SecurityID,
		t.Type,
		t.Date.Format(DateFormat),
		t.Quantity,
		t.Price,
		t.Fees,
		t.UserID,
		t.AccountID,
		t.SecurityID,
		t.CreatedAt.Format(time.RFC3339),
	).Scan(&t.Seq)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return t, nil
}

// scanTransactions drains a transaction result set into a slice.
func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction

	for rows.Next() {
		var dateStr, createdAtStr string
		var t model.Transaction

		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.AccountID,
			&t.SecurityID,
			&t.Type,
			&dateStr,
			&t.Quantity,
			&t.Price,
			&t.Fees,
			&t.Seq,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}

		t.Date, err = ParseTime(dateStr)
		if err != nil || t.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		t.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil || t.CreatedAt.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}
