package model

import "time"

// Alert types. SubjectID points at the entity the metric is read from:
// a security for price alerts, an asset type for allocation alerts, a
// deposit for maturity alerts, a goal for goal-progress alerts. The
// performance alert reads the user's day-change percentage and needs no
// subject.
const (
	AlertPrice           = "price"
	AlertAllocationDrift = "allocation_drift"
	AlertMaturity        = "maturity"
	AlertGoalProgress    = "goal_progress"
	AlertPerformance     = "performance"
)

// Alert comparison directions. The direction is stored per alert rather
// than implied by the alert type.
const (
	ConditionAbove = "above"
	ConditionBelow = "below"
)

// Alert compares a live metric against a threshold. IsTriggered is
// monotonic: the evaluator sets it on first satisfaction and never clears
// it; only an external acknowledge/reset does. LastChecked advances on
// every evaluation pass regardless of outcome.
type Alert struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	AlertType   string     `json:"alertType"`
	SubjectID   string     `json:"subjectId,omitempty"`
	Condition   string     `json:"condition"`
	Threshold   float64    `json:"threshold"`
	IsActive    bool       `json:"isActive"`
	IsTriggered bool       `json:"isTriggered"`
	TriggeredAt *time.Time `json:"triggeredAt"`
	LastChecked *time.Time `json:"lastChecked"`
}
