package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/model"
)

// AlertRepository provides data access methods for the alert table.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new AlertRepository with the provided database connection.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, user_id, alert_type, subject_id, condition, threshold, is_active, is_triggered, triggered_at, last_checked`

// GetActiveByUser retrieves the user's active alerts.
func (s *AlertRepository) GetActiveByUser(userID string) ([]model.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alert
		WHERE user_id = ? AND is_active = TRUE
		ORDER BY alert_type, id
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert table: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert table: %w", err)
	}

	return alerts, nil
}

// GetUserIDs returns the distinct user IDs that have active alerts. The
// scheduled alert pass shards over this set.
func (s *AlertRepository) GetUserIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT user_id FROM alert WHERE is_active = TRUE ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert user ids: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan alert user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert user ids: %w", err)
	}

	return userIDs, nil
}

// UpdateEvaluation persists the outcome of one evaluation pass for an
// alert: last_checked always, trigger state when it flipped.
func (s *AlertRepository) UpdateEvaluation(alert model.Alert) error {
	query := `
		UPDATE alert
		SET is_triggered = ?, triggered_at = ?, last_checked = ?
		WHERE id = ?
	`

	var triggeredAt, lastChecked sql.NullString
	if alert.TriggeredAt != nil {
		triggeredAt = sql.NullString{String: alert.TriggeredAt.UTC().Format(time.RFC3339), Valid: true}
	}
	if alert.LastChecked != nil {
		lastChecked = sql.NullString{String: alert.LastChecked.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.Exec(query, alert.IsTriggered, triggeredAt, lastChecked, alert.ID)
	if err != nil {
		return fmt.Errorf("failed to update alert evaluation: %w", err)
	}

	return nil
}

// Reset clears an alert's trigger state. This is the external acknowledge
// operation; the evaluator itself never un-triggers an alert.
func (s *AlertRepository) Reset(alertID string) error {
	result, err := s.db.Exec(`UPDATE alert SET is_triggered = FALSE, triggered_at = NULL WHERE id = ?`, alertID)
	if err != nil {
		return fmt.Errorf("failed to reset alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read reset result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAlertNotFound
	}

	return nil
}

func scanAlert(row scanner) (model.Alert, error) {
	var alert model.Alert
	var subjectID, triggeredAtStr, lastCheckedStr sql.NullString

	err := row.Scan(
		&alert.ID,
		&alert.UserID,
		&alert.AlertType,
		&subjectID,
		&alert.Condition,
		&alert.Threshold,
		&alert.IsActive,
		&alert.IsTriggered,
		&triggeredAtStr,
		&lastCheckedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Alert{}, err
	}
	if err != nil {
		return model.Alert{}, fmt.Errorf("failed to scan alert table results: %w", err)
	}

	alert.SubjectID = subjectID.String

	if triggeredAtStr.Valid {
		triggeredAt, err := ParseTime(triggeredAtStr.String)
		if err != nil {
			return model.Alert{}, fmt.Errorf("failed to parse date: %w", err)
		}
		alert.TriggeredAt = &triggeredAt
	}

	if lastCheckedStr.Valid {
		lastChecked, err := ParseTime(lastCheckedStr.String)
		if err != nil {
			return model.Alert{}, fmt.Errorf("failed to parse date: %w", err)
		}
		alert.LastChecked = &lastChecked
	}

	return alert, nil
}
