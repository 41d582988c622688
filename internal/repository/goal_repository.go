package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/model"
)

// GoalRepository provides data access methods for the goal table.
// The engine only updates derived progress fields; goal creation and
// reopening belong to external collaborators.
type GoalRepository struct {
	db *sql.DB
}

// NewGoalRepository creates a new GoalRepository with the provided database connection.
func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, user_id, name, tracking_mode, target_amount, current_amount, target_date, is_achieved, achieved_date`

// GetByUser retrieves all goals for a user.
func (s *GoalRepository) GetByUser(userID string) ([]model.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goal
		WHERE user_id = ?
		ORDER BY target_date, id
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal table: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal table: %w", err)
	}

	return goals, nil
}

// Get retrieves one goal by ID.
// Returns apperrors.ErrGoalNotFound if no row exists.
func (s *GoalRepository) Get(goalID string) (model.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goal
		WHERE id = ?
	`

	goal, err := scanGoal(s.db.QueryRow(query, goalID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Goal{}, apperrors.ErrGoalNotFound
	}
	if err != nil {
		return model.Goal{}, err
	}

	return goal, nil
}

// UpdateProgress persists the derived progress fields of a goal. The
// achievement flag only moves false to true here; clearing it is an
// explicit external operation, never part of recompute.
func (s *GoalRepository) UpdateProgress(goal model.Goal) error {
	query := `
		UPDATE goal
		SET current_amount = ?, is_achieved = ?, achieved_date = ?
		WHERE id = ?
	`

	var achievedDate sql.NullString
	if goal.AchievedDate != nil {
		achievedDate = sql.NullString{String: goal.AchievedDate.Format(DateFormat), Valid: true}
	}

	_, err := s.db.Exec(query, goal.CurrentAmount, goal.IsAchieved, achievedDate, goal.ID)
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}

	return nil
}

func scanGoal(row scanner) (model.Goal, error) {
	var goal model.Goal
	var targetDateStr string
	var achievedDateStr sql.NullString

	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Name,
		&goal.TrackingMode,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&targetDateStr,
		&goal.IsAchieved,
		&achievedDateStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Goal{}, err
	}
	if err != nil {
		return model.Goal{}, fmt.Errorf("failed to scan goal table results: %w", err)
	}

	goal.TargetDate, err = ParseTime(targetDateStr)
	if err != nil {
		return model.Goal{}, fmt.Errorf("failed to parse date: %w", err)
	}

	if achievedDateStr.Valid {
		achievedDate, err := ParseTime(achievedDateStr.String)
		if err != nil {
			return model.Goal{}, fmt.Errorf("failed to parse date: %w", err)
		}
		goal.AchievedDate = &achievedDate
	}

	return goal, nil
}
