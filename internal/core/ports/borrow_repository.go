// internal/core/ports/borrow_repository.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfirmReturnParams carries everything the confirm transaction needs.
// TransactionID is empty for cash settlements; for gateway callbacks it
// is the idempotency key recorded durably before side effects.
type ConfirmReturnParams struct {
	BorrowID      uuid.UUID
	TransactionID string
	Outcome       domain.PaymentOutcome
	ReturnedAt    time.Time
	Fine          decimal.Decimal
}

// BorrowRepository is the borrow ledger: it owns loan records, their
// open/closed state machine and the payment sub-record.
type BorrowRepository interface {
	Create(ctx context.Context, borrow *domain.Borrow) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Borrow, error)
	FindOpenByCopy(ctx context.Context, copyID uuid.UUID) (*domain.Borrow, error)

	// FindByTransactionID resolves the borrow a gateway callback refers
	// to. Fails with domain.ErrUnknownTransaction when no payment was
	// ever armed with that id.
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Borrow, error)
	List(ctx context.Context, q BorrowQuery) ([]*domain.Borrow, int64, error)

	// Renew applies the renewal under the policy checks inside one
	// transaction, returning the updated record.
	Renew(ctx context.Context, id uuid.UUID, extension time.Duration, maxRenewals int, now time.Time) (*domain.Borrow, error)

	// ArmPayment moves unpaid/failed to pending, fixing amount and
	// method and recording the gateway transaction id. Fails with
	// domain.ErrAlreadyPaid once settled and domain.ErrBorrowClosed
	// on a closed loan.
	ArmPayment(ctx context.Context, id uuid.UUID, method domain.PaymentMethod, amount decimal.Decimal, transactionID string, now time.Time) error

	// ConfirmReturn settles a pending payment, closes the loan,
	// releases the copy and bumps the book counters in a single
	// transaction. The callback record keyed by TransactionID is
	// written in the same transaction, making retries no-ops: applied
	// is false when the call was a replay that changed nothing. A
	// replayed transaction id with a different outcome fails with
	// domain.ErrConflictingCallback.
	ConfirmReturn(ctx context.Context, p ConfirmReturnParams) (applied bool, err error)

	// RevertExpiredPayments flips pending payments armed before the
	// cutoff back to unpaid so abandoned gateway flows don't wedge
	// their loans. Returns the number of reverted payments.
	RevertExpiredPayments(ctx context.Context, cutoff time.Time) (int64, error)

	// FindOverdue lists open, unnotified loans past due as of the
	// given instant.
	FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]*domain.Borrow, error)
	MarkNotified(ctx context.Context, id uuid.UUID) error
}

// BorrowQuery holds filters for listing borrows
type BorrowQuery struct {
	UserID    uuid.UUID
	BookID    uuid.UUID
	Open      *bool
	Overdue   *bool
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}
