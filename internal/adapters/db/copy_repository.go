// internal/adapters/db/copy_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

// copyRepository implements ports.CopyRepository. Every status
// transition and its counter side effect commit in one transaction, so
// the book counters are always derivable from the copy rows.
type copyRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewCopyRepository creates a new copy repository
func NewCopyRepository(db *Database, logger *slog.Logger) ports.CopyRepository {
	return &copyRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "copies")),
	}
}

// AddCopies registers n new available copies and bumps both counters
func (r *copyRepository) AddCopies(ctx context.Context, bookID uuid.UUID, n int) ([]domain.BookCopy, error) {
	var copies []domain.BookCopy

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var totalCopies int
		var isDeleted bool
		err := tx.QueryRow(ctx,
			`SELECT total_copies, is_deleted FROM books WHERE id = $1 FOR UPDATE`,
			bookID).Scan(&totalCopies, &isDeleted)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrBookNotFound
			}
			return fmt.Errorf("failed to lock book: %w", err)
		}
		if isDeleted {
			return domain.ErrBookDeleted
		}

		now := time.Now()
		copies = make([]domain.BookCopy, 0, n)
		for i := 1; i <= n; i++ {
			c := domain.BookCopy{
				ID:        uuid.New(),
				BookID:    bookID,
				Code:      domain.CopyCode(bookID, totalCopies+i),
				Status:    domain.CopyAvailable,
				CreatedAt: now,
				UpdatedAt: now,
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO book_copies (id, book_id, code, status, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				c.ID, c.BookID, c.Code, c.Status, c.CreatedAt, c.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert copy %s: %w", c.Code, err)
			}
			copies = append(copies, c)
		}

		return bumpCounters(ctx, tx, bookID, n, n, now)
	})
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "copies added",
		slog.String("book_id", bookID.String()),
		slog.Int("count", n))

	return copies, nil
}

// Claim atomically hands out the oldest available copy of the book.
// Claimants serialize on the book row; SKIP LOCKED keeps a claimant from
// waiting on a copy row another transaction still holds. A claimant that
// finds no row lost the race for the last copy.
func (r *copyRepository) Claim(ctx context.Context, bookID uuid.UUID) (*domain.BookCopy, error) {
	var claimed *domain.BookCopy

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		// Locking the book row here orders Claim against SoftDelete:
		// the deletion flag cannot flip between this check and the
		// counter decrement below.
		var isDeleted bool
		err := tx.QueryRow(ctx,
			`SELECT is_deleted FROM books WHERE id = $1 FOR UPDATE`, bookID).Scan(&isDeleted)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrBookNotFound
			}
			return fmt.Errorf("failed to check book: %w", err)
		}
		if isDeleted {
			return domain.ErrBookDeleted
		}

		c := domain.BookCopy{BookID: bookID}
		err = tx.QueryRow(ctx,
			`SELECT id, code, created_at FROM book_copies
			 WHERE book_id = $1 AND status = $2
			 ORDER BY created_at, id
			 LIMIT 1
			 FOR UPDATE SKIP LOCKED`,
			bookID, domain.CopyAvailable).Scan(&c.ID, &c.Code, &c.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNoCopyAvailable
			}
			return fmt.Errorf("failed to select copy: %w", err)
		}

		now := time.Now()
		c.Status = domain.CopyBorrowed
		c.UpdatedAt = now
		_, err = tx.Exec(ctx,
			`UPDATE book_copies SET status = $2, updated_at = $3 WHERE id = $1`,
			c.ID, c.Status, now)
		if err != nil {
			return fmt.Errorf("failed to mark copy borrowed: %w", err)
		}

		if err := bumpCounters(ctx, tx, bookID, -1, 0, now); err != nil {
			return err
		}

		claimed = &c
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "copy claimed",
		slog.String("book_id", bookID.String()),
		slog.String("copy_code", claimed.Code))

	return claimed, nil
}

// Release transitions borrowed back to available
func (r *copyRepository) Release(ctx context.Context, copyID uuid.UUID) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		return releaseCopyInTx(ctx, tx, copyID)
	})
	if err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "copy released", slog.String("copy_id", copyID.String()))
	return nil
}

// MarkLost records an available copy as lost
func (r *copyRepository) MarkLost(ctx context.Context, copyID uuid.UUID) error {
	return r.retireWithStatus(ctx, copyID, domain.CopyLost)
}

// Retire removes an available copy from circulation
func (r *copyRepository) Retire(ctx context.Context, copyID uuid.UUID) error {
	return r.retireWithStatus(ctx, copyID, domain.CopyRetired)
}

// Remove permanently deletes an available copy
func (r *copyRepository) Remove(ctx context.Context, copyID uuid.UUID) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		bookID, err := lockAvailableCopy(ctx, tx, copyID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM book_copies WHERE id = $1`, copyID); err != nil {
			return fmt.Errorf("failed to delete copy: %w", err)
		}

		return bumpCounters(ctx, tx, bookID, -1, -1, time.Now())
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "copy removed", slog.String("copy_id", copyID.String()))
	return nil
}

// FindByID retrieves a copy by ID
func (r *copyRepository) FindByID(ctx context.Context, copyID uuid.UUID) (*domain.BookCopy, error) {
	c := domain.BookCopy{}
	err := r.db.QueryRow(ctx,
		`SELECT id, book_id, code, status, created_at, updated_at
		 FROM book_copies WHERE id = $1`, copyID).
		Scan(&c.ID, &c.BookID, &c.Code, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCopyNotFound
		}
		return nil, fmt.Errorf("failed to find copy: %w", err)
	}
	return &c, nil
}

// ListByBook retrieves all copies of a book, oldest first
func (r *copyRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]domain.BookCopy, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, book_id, code, status, created_at, updated_at
		 FROM book_copies WHERE book_id = $1
		 ORDER BY created_at, id`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query copies: %w", err)
	}
	defer rows.Close()

	var copies []domain.BookCopy
	for rows.Next() {
		c := domain.BookCopy{}
		if err := rows.Scan(&c.ID, &c.BookID, &c.Code, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan copy: %w", err)
		}
		copies = append(copies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating copies: %w", err)
	}

	return copies, nil
}

func (r *copyRepository) retireWithStatus(ctx context.Context, copyID uuid.UUID, status domain.CopyStatus) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		bookID, err := lockAvailableCopy(ctx, tx, copyID)
		if err != nil {
			return err
		}

		now := time.Now()
		if _, err := tx.Exec(ctx,
			`UPDATE book_copies SET status = $2, updated_at = $3 WHERE id = $1`,
			copyID, status, now); err != nil {
			return fmt.Errorf("failed to update copy status: %w", err)
		}

		return bumpCounters(ctx, tx, bookID, -1, -1, now)
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "copy taken out of circulation",
		slog.String("copy_id", copyID.String()),
		slog.String("status", string(status)))

	return nil
}

// lockAvailableCopy locks a copy row and verifies it is available,
// returning the owning book id.
func lockAvailableCopy(ctx context.Context, tx pgx.Tx, copyID uuid.UUID) (uuid.UUID, error) {
	var bookID uuid.UUID
	var status domain.CopyStatus
	err := tx.QueryRow(ctx,
		`SELECT book_id, status FROM book_copies WHERE id = $1 FOR UPDATE`,
		copyID).Scan(&bookID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, domain.ErrCopyNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to lock copy: %w", err)
	}
	if status != domain.CopyAvailable {
		return uuid.Nil, fmt.Errorf("%w: copy is %s", domain.ErrCopyNotAvailable, status)
	}
	return bookID, nil
}

// releaseCopyInTx flips a borrowed copy back to available and increments
// the book's quantity. Shared with the borrow repository so a confirmed
// return releases the copy inside the same transaction that closes the
// loan.
func releaseCopyInTx(ctx context.Context, tx pgx.Tx, copyID uuid.UUID) error {
	var bookID uuid.UUID
	var status domain.CopyStatus
	err := tx.QueryRow(ctx,
		`SELECT book_id, status FROM book_copies WHERE id = $1 FOR UPDATE`,
		copyID).Scan(&bookID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCopyNotFound
		}
		return fmt.Errorf("failed to lock copy: %w", err)
	}
	if status != domain.CopyBorrowed {
		return fmt.Errorf("%w: copy is %s", domain.ErrCopyNotBorrowed, status)
	}

	now := time.Now()
	if _, err := tx.Exec(ctx,
		`UPDATE book_copies SET status = $2, updated_at = $3 WHERE id = $1`,
		copyID, domain.CopyAvailable, now); err != nil {
		return fmt.Errorf("failed to mark copy available: %w", err)
	}

	return bumpCounters(ctx, tx, bookID, 1, 0, now)
}

// bumpCounters applies a counter delta to the book row and rechecks the
// aggregate invariants. A violation aborts the whole transaction; the
// counters are never "fixed up" in place.
func bumpCounters(ctx context.Context, tx pgx.Tx, bookID uuid.UUID, quantityDelta, totalDelta int, now time.Time) error {
	var quantity, totalCopies int
	err := tx.QueryRow(ctx,
		`UPDATE books
		 SET quantity = quantity + $2,
		     total_copies = total_copies + $3,
		     availability = (quantity + $2) > 0,
		     updated_at = $4
		 WHERE id = $1
		 RETURNING quantity, total_copies`,
		bookID, quantityDelta, totalDelta, now).Scan(&quantity, &totalCopies)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookNotFound
		}
		return fmt.Errorf("failed to update book counters: %w", err)
	}

	if quantity < 0 || quantity > totalCopies {
		return fmt.Errorf("%w: book %s would have quantity=%d total_copies=%d",
			domain.ErrCounterDrift, bookID, quantity, totalCopies)
	}

	return nil
}
