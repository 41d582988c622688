package model

import "time"

// Goal tracking modes. A portfolio-tracked goal refreshes CurrentAmount
// from the user's total portfolio value on every recompute; a manual goal
// keeps whatever amount collaborators last wrote.
const (
	GoalTrackPortfolio = "portfolio"
	GoalTrackManual    = "manual"
)

// Goal is a savings target. IsAchieved is monotonic: once the current
// amount crosses the target it stays achieved even if the amount later
// drops, until an external actor explicitly reopens the goal.
type Goal struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	TrackingMode  string     `json:"trackingMode"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	TargetDate    time.Time  `json:"targetDate"`
	IsAchieved    bool       `json:"isAchieved"`
	AchievedDate  *time.Time `json:"achievedDate"`
}

// GoalStatus is the derived progress view of a goal. InvalidTarget is set
// when TargetAmount is not positive; the goal is flagged rather than
// failing the batch.
type GoalStatus struct {
	GoalID          string     `json:"goalId"`
	ProgressPct     float64    `json:"progressPercentage"`
	RemainingAmount float64    `json:"remainingAmount"`
	IsAchieved      bool       `json:"isAchieved"`
	AchievedDate    *time.Time `json:"achievedDate,omitempty"`
	InvalidTarget   bool       `json:"invalidTarget,omitempty"`
}
