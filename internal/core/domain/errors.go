// internal/core/domain/errors.go
package domain

import "errors"

// Capacity errors: expected business conditions, surfaced verbatim to
// the caller and never retried automatically.
var (
	ErrNoCopyAvailable   = errors.New("no copy available")
	ErrCopiesOutstanding = errors.New("copies outstanding")
)

// State errors: a stale or duplicate request hit a record that already
// moved on. Idempotent confirm paths treat these as no-ops.
var (
	ErrBorrowClosed     = errors.New("borrow already closed")
	ErrAlreadyPaid      = errors.New("payment already settled")
	ErrNotPending       = errors.New("payment is not pending")
	ErrCopyNotBorrowed  = errors.New("copy is not borrowed")
	ErrCopyNotAvailable = errors.New("copy is not available")
)

// Policy errors: the request violates a circulation rule.
var (
	ErrOverdue           = errors.New("loan is overdue")
	ErrRenewalLimit      = errors.New("renewal limit exceeded")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrBookDeleted       = errors.New("book is deleted")
)

// Conflict errors: anomalies that need manual reconciliation.
var (
	ErrUnknownTransaction  = errors.New("unknown transaction")
	ErrConflictingCallback = errors.New("conflicting gateway callback")
)

// Not-found errors
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrCopyNotFound   = errors.New("copy not found")
	ErrBorrowNotFound = errors.New("borrow not found")
)

// ErrCounterDrift marks an internal invariant violation. It must abort
// the enclosing transaction, never be repaired in place.
var ErrCounterDrift = errors.New("inventory counter drift")

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrCopyNotFound) ||
		errors.Is(err, ErrBorrowNotFound)
}

// IsConflict reports whether err requires manual reconciliation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflictingCallback) || errors.Is(err, ErrUnknownTransaction)
}
