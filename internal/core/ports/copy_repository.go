// internal/core/ports/copy_repository.go
package ports

import (
	"context"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/google/uuid"
)

// CopyRepository is the copy registry: it owns physical copies and their
// status transitions. Every transition runs in one transaction together
// with the owning book's counter update, so counters can never drift
// from the copy-level truth.
type CopyRepository interface {
	// AddCopies registers n new available copies and bumps both
	// quantity and total_copies in the same transaction.
	AddCopies(ctx context.Context, bookID uuid.UUID, n int) ([]domain.BookCopy, error)

	// Claim atomically selects the oldest available copy of the book,
	// marks it borrowed and decrements quantity. Concurrent claimants
	// never receive the same copy; when none is left the caller gets
	// domain.ErrNoCopyAvailable. A soft-deleted book fails with
	// domain.ErrBookDeleted.
	Claim(ctx context.Context, bookID uuid.UUID) (*domain.BookCopy, error)

	// Release transitions borrowed back to available and increments
	// quantity. Releasing an already-available copy fails with
	// domain.ErrCopyNotBorrowed instead of double-incrementing.
	Release(ctx context.Context, copyID uuid.UUID) error

	// MarkLost and Retire are terminal transitions, permitted only
	// from available; both decrement quantity and total_copies.
	MarkLost(ctx context.Context, copyID uuid.UUID) error
	Retire(ctx context.Context, copyID uuid.UUID) error

	// Remove permanently deletes an available copy.
	Remove(ctx context.Context, copyID uuid.UUID) error

	FindByID(ctx context.Context, copyID uuid.UUID) (*domain.BookCopy, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]domain.BookCopy, error)
}
