// internal/core/ports/book_repository.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/google/uuid"
)

// BookRepository defines the persistence port for books and their
// aggregate inventory counters. Counter columns are written only by the
// copy/borrow transition transactions in the database adapter, never
// through Update.
type BookRepository interface {
	Save(ctx context.Context, book *domain.Book) error
	Update(ctx context.Context, book *domain.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	List(ctx context.Context, q BookQuery) ([]*domain.Book, int64, error)

	// SoftDelete marks the book deleted, gated atomically on
	// quantity == total_copies. Fails with domain.ErrCopiesOutstanding
	// while any copy is on loan.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	Restore(ctx context.Context, id uuid.UUID) error

	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// BookQuery holds filters for listing books
type BookQuery struct {
	Search         string
	Category       string
	Author         string
	Available      *bool
	IncludeDeleted bool
	SortBy         string
	SortOrder      string
	Page           int
	PageSize       int
}
