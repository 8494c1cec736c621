package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Wager errors
var (
	// ErrBetNotFound is returned when no wager matches the given criteria.
	ErrBetNotFound = errors.New("bet not found")

	// ErrBetPending is returned when a profit value is requested for a wager
	// whose outcome is not known yet.
	ErrBetPending = errors.New("bet is still pending; profit is undefined")

	// ErrBetAlreadySettled is returned when a terminal status is applied to a
	// wager that already has one.
	ErrBetAlreadySettled = errors.New("bet is already settled")

	// ErrBetProcessed is returned when a settled wager that has already been
	// folded into a daily record is reverted or re-settled.
	ErrBetProcessed = errors.New("bet is already processed in the daily ledger")

	// ErrInvalidStatus is returned when a wager status string is not one of
	// the known values.
	ErrInvalidStatus = errors.New("invalid bet status")
)

// Distribution errors — caller-contract violations; the engine mutates nothing.
var (
	// ErrNothingToResolve is returned when a resolution is requested for a date
	// with no settled, unprocessed wagers. Callers that poll simply skip the date.
	ErrNothingToResolve = errors.New("no settled bets to resolve for date")

	// ErrNoInvestors is returned when the investor collection is empty at
	// resolution time.
	ErrNoInvestors = errors.New("investor list is empty")

	// ErrDateMismatch is returned when a wager in the resolution input carries
	// a different accounting date than the one requested.
	ErrDateMismatch = errors.New("bet date does not match resolution date")

	// ErrPendingInInput is returned when the resolution input contains a wager
	// that is still pending.
	ErrPendingInInput = errors.New("resolution input contains a pending bet")

	// ErrAlreadyProcessed is returned when the resolution input contains a
	// wager already folded into a prior daily record.
	ErrAlreadyProcessed = errors.New("resolution input contains an already-processed bet")

	// ErrDayAlreadyResolved is returned when a daily record already exists for
	// the requested date.
	ErrDayAlreadyResolved = errors.New("daily record already exists for date")
)

// Investor / funding errors
var (
	// ErrUserNotFound is returned when no user matches the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvestorNotFound is returned when no investor account exists for the
	// requested user.
	ErrInvestorNotFound = errors.New("investor account not found")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrUsernameTaken is returned on registration when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a suspended user attempts an action.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrRequestNotFound is returned when no funding request matches the id.
	ErrRequestNotFound = errors.New("funding request not found")

	// ErrRequestNotPending is returned when an approve/reject targets a request
	// that was already reviewed. This is the idempotency guard: a second
	// approval of the same request id is a conflict, never a double credit.
	ErrRequestNotPending = errors.New("funding request is not pending")

	// ErrInvalidAmount is returned when a funding amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrGoalNotFound is returned when no profit goal matches the id.
	ErrGoalNotFound = errors.New("profit goal not found")
)

// Auth errors
var (
	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrTokenExpired is returned when a JWT or refresh token has passed its TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or its signature
	// does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrBetNotFound,
	ErrUserNotFound,
	ErrInvestorNotFound,
	ErrRequestNotFound,
	ErrGoalNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Use this instead of comparing error values directly
// when you need to translate domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a state conflict (e.g.
// double settlement or re-reviewing a funding request).
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrEmailTaken,
		ErrUsernameTaken,
		ErrBetAlreadySettled,
		ErrBetProcessed,
		ErrAlreadyProcessed,
		ErrDayAlreadyResolved,
		ErrRequestNotPending,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsPrecondition returns true for resolution caller-contract violations. These
// map to HTTP 422: the request was well-formed but the ledger input is not.
func IsPrecondition(err error) bool {
	preconditionErrors := []error{
		ErrNoInvestors,
		ErrDateMismatch,
		ErrPendingInInput,
		ErrAlreadyProcessed,
	}
	for _, target := range preconditionErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthError returns true for authentication/authorisation errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrForbidden,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
