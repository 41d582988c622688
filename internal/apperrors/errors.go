package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrHoldingNotFound indicates that no holding exists for the given
	// (user, account, security) key.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrGoalNotFound indicates that a goal with the given ID does not exist.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrSnapshotNotFound indicates that no performance snapshot exists on or
	// before the requested date.
	ErrSnapshotNotFound = errors.New("performance snapshot not found")

	// ErrAlertNotFound indicates that an alert with the given ID does not exist.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrDepositNotFound indicates that a deposit with the given ID does not exist.
	ErrDepositNotFound = errors.New("deposit not found")

	// ErrSummaryNotFound indicates that no asset-type summaries have been
	// computed for the user yet.
	ErrSummaryNotFound = errors.New("portfolio summary not found")
)

// Business rule errors represent ledger or calculation rules being violated.
// They reject the single offending entity and never abort a multi-user batch.
var (
	// ErrInsufficientQuantity indicates that a sell transaction exceeds the
	// quantity currently held. The transaction is rejected and the position
	// left unchanged.
	ErrInsufficientQuantity = errors.New("insufficient quantity for sale")

	// ErrInvalidRatio indicates a split transaction with a ratio that is not
	// strictly positive.
	ErrInvalidRatio = errors.New("split ratio must be greater than zero")

	// ErrUnknownTransactionType indicates a transaction type the replayer
	// does not understand.
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	// ErrInvalidGoalTarget indicates a goal whose target amount is not
	// positive. The goal is flagged in its status, not treated as fatal.
	ErrInvalidGoalTarget = errors.New("goal target amount must be positive")

	// ErrNegativeQuantity indicates a replayed position ended with a negative
	// quantity. This is a programming-invariant violation, not a data error.
	ErrNegativeQuantity = errors.New("negative quantity after replay")

	// ErrInvalidDateRange indicates that the provided date range is invalid.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")
)

// Upstream errors represent collaborator failures. A user's recompute that
// hits one is skipped for the cycle and retried on the next pass.
var (
	// ErrUpstreamUnavailable indicates the price feed or transaction source
	// could not be reached.
	ErrUpstreamUnavailable = errors.New("upstream source unavailable")

	// ErrFeedTokenNotConfigured indicates no price-feed API token has been
	// stored for the feed client to use.
	ErrFeedTokenNotConfigured = errors.New("price feed token not configured")
)
