package services

import "errors"

// Sentinel errors for the outcome classes the HTTP boundary must tell apart.
// Ineligibility is deliberately absent: it is a business outcome carried in
// the session (isValid=false + reason), not an error.
var (
	// ErrEventNotFound - the event does not exist or is not active.
	ErrEventNotFound = errors.New("event not found or not active")
	// ErrSessionNotFound - unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionInvalid - the session failed eligibility; it has no spins.
	ErrSessionInvalid = errors.New("session is not valid for spinning")
	// ErrTurnsExhausted - every turn of the session has been used.
	ErrTurnsExhausted = errors.New("all turns have been used")
	// ErrTurnOutOfOrder - turns must be claimed strictly in order.
	ErrTurnOutOfOrder = errors.New("turn index is out of order")
	// ErrDuplicateTurn - this turn index already has an outcome.
	ErrDuplicateTurn = errors.New("turn has already been spun")
	// ErrNoPrizesAvailable - every finite prize is exhausted and the wheel has
	// no fallback slot. User-facing "try another purchase" condition.
	ErrNoPrizesAvailable = errors.New("no prizes available at this branch")
	// ErrSpinConflict - lost a race against a concurrent spin; safe to retry.
	ErrSpinConflict = errors.New("spin conflicted with a concurrent request, please retry")
	// ErrWheelMisconfigured - zero total weight or similarly broken wheel
	// configuration. Operator error, not retryable.
	ErrWheelMisconfigured = errors.New("wheel configuration error")
	// ErrPurchaseUnavailable - the invoice provider could not serve the
	// purchase record. Temporary; no session state is created.
	ErrPurchaseUnavailable = errors.New("purchase record temporarily unavailable")
	// ErrPurchaseNotFound - the provider has no invoice for this code.
	ErrPurchaseNotFound = errors.New("purchase code not found")
)
