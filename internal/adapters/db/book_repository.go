// internal/adapters/db/book_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const bookColumns = `id, title, author, description, isbn, publisher, publish_year, category,
	cover_image, price, quantity, total_copies, availability, hold_count,
	is_deleted, deleted_at, created_at, updated_at`

// bookRepository implements ports.BookRepository on PostgreSQL
type bookRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *Database, logger *slog.Logger) ports.BookRepository {
	return &bookRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "books")),
	}
}

// Save inserts a new book
func (r *bookRepository) Save(ctx context.Context, book *domain.Book) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO books (id, title, author, description, isbn, publisher, publish_year,
			category, cover_image, price, quantity, total_copies, availability, hold_count,
			is_deleted, deleted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		book.ID, book.Title, book.Author, nullString(book.Description), nullString(book.ISBN),
		nullString(book.Publisher), book.PublishYear, nullString(book.Category),
		nullString(book.CoverImage), book.Price, book.Quantity, book.TotalCopies,
		book.Availability, book.HoldCount, book.IsDeleted, book.DeletedAt,
		book.CreatedAt, book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	r.logger.DebugContext(ctx, "book saved", slog.String("book_id", book.ID.String()))
	return nil
}

// Update rewrites the descriptive columns of a book. The counter columns
// belong to the copy/borrow transitions and are deliberately left out.
func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE books
		 SET title = $2, author = $3, description = $4, isbn = $5, publisher = $6,
		     publish_year = $7, category = $8, cover_image = $9, price = $10,
		     updated_at = $11
		 WHERE id = $1 AND is_deleted = false`,
		book.ID, book.Title, book.Author, nullString(book.Description), nullString(book.ISBN),
		nullString(book.Publisher), book.PublishYear, nullString(book.Category),
		nullString(book.CoverImage), book.Price, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}

	return nil
}

// FindByID retrieves a book by ID, deleted or not
func (r *bookRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	return book, nil
}

// FindByISBN retrieves a live book by its ISBN
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = $1 AND is_deleted = false`, isbn)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book by isbn: %w", err)
	}
	return book, nil
}

// List retrieves books matching the query along with the total count
func (r *bookRepository) List(ctx context.Context, q ports.BookQuery) ([]*domain.Book, int64, error) {
	base := psql.Select().From("books")
	if !q.IncludeDeleted {
		base = base.Where(sq.Eq{"is_deleted": false})
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		base = base.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"author": pattern},
			sq.ILike{"isbn": pattern},
		})
	}
	if q.Category != "" {
		base = base.Where(sq.Eq{"category": q.Category})
	}
	if q.Author != "" {
		base = base.Where(sq.ILike{"author": "%" + q.Author + "%"})
	}
	if q.Available != nil {
		base = base.Where(sq.Eq{"availability": *q.Available})
	}

	countSQL, countArgs, err := base.Column("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	listSQL, listArgs, err := base.Column(bookColumns).
		OrderBy(orderClause(q.SortBy, q.SortOrder, map[string]string{
			"title":      "title",
			"author":     "author",
			"created_at": "created_at",
			"price":      "price",
			"quantity":   "quantity",
		}, "created_at DESC")).
		Limit(uint64(q.PageSize)).
		Offset(uint64((q.Page - 1) * q.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating books: %w", err)
	}

	return books, total, nil
}

// SoftDelete marks the book deleted. The quantity = total_copies guard
// sits in the UPDATE itself so the check and the flag flip are one
// atomic statement; a concurrent borrow either lands before the delete
// and blocks it, or after and fails on is_deleted.
func (r *bookRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE books
		 SET is_deleted = true, deleted_at = $2, updated_at = $2
		 WHERE id = $1 AND is_deleted = false AND quantity = total_copies`,
		id, at)
	if err != nil {
		return fmt.Errorf("failed to soft delete book: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The guard rejected the update; find out which condition failed.
	var isDeleted bool
	var quantity, totalCopies int
	err = r.db.QueryRow(ctx,
		`SELECT is_deleted, quantity, total_copies FROM books WHERE id = $1`, id).
		Scan(&isDeleted, &quantity, &totalCopies)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookNotFound
		}
		return fmt.Errorf("failed to inspect book: %w", err)
	}
	if isDeleted {
		// Repeated deletes are harmless.
		return nil
	}
	return fmt.Errorf("%w: %d of %d copies out", domain.ErrCopiesOutstanding,
		totalCopies-quantity, totalCopies)
}

// Restore clears the deletion flag
func (r *bookRepository) Restore(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE books SET is_deleted = false, deleted_at = NULL, updated_at = $2 WHERE id = $1`,
		id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to restore book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// Exists checks whether a live book with the given id exists
func (r *bookRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.db.Exists(ctx,
		`SELECT 1 FROM books WHERE id = $1 AND is_deleted = false`, id)
}

// Count returns the number of live books
func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM books WHERE is_deleted = false`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

// scanBook scans a book row in bookColumns order
func scanBook(row pgx.Row) (*domain.Book, error) {
	var b domain.Book
	var description, isbn, publisher, category, coverImage *string
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &description, &isbn, &publisher, &b.PublishYear,
		&category, &coverImage, &b.Price, &b.Quantity, &b.TotalCopies, &b.Availability,
		&b.HoldCount, &b.IsDeleted, &b.DeletedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Description = deref(description)
	b.ISBN = deref(isbn)
	b.Publisher = deref(publisher)
	b.Category = deref(category)
	b.CoverImage = deref(coverImage)
	return &b, nil
}

// orderClause maps a requested sort column through a whitelist so user
// input never reaches the ORDER BY verbatim.
func orderClause(sortBy, sortOrder string, allowed map[string]string, fallback string) string {
	col, ok := allowed[sortBy]
	if !ok {
		return fallback
	}
	dir := "ASC"
	if sortOrder == "desc" || sortOrder == "DESC" {
		dir = "DESC"
	}
	return col + " " + dir
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
