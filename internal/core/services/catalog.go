// internal/core/services/catalog.go
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

const (
	bookListCacheTTL    = 2 * time.Minute
	bookListCachePrefix = "books:list"
	coverPresignExpiry  = 15 * time.Minute
)

// CatalogService handles admin book CRUD and copy registration
type CatalogService struct {
	books  ports.BookRepository
	copies ports.CopyRepository
	cache  ports.CacheRepository
	covers ports.CoverStorage
	logger *slog.Logger
}

// Statically assert that *CatalogService implements the CatalogService interface.
var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service
func NewCatalogService(books ports.BookRepository, copies ports.CopyRepository,
	cache ports.CacheRepository, covers ports.CoverStorage, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		books:  books,
		copies: copies,
		cache:  cache,
		covers: covers,
		logger: logger.With(slog.String("service", "catalog")),
	}
}

// CreateBook validates and stores a new book with zero copies
func (s *CatalogService) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := book.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// New books start with no copies; counters grow through AddCopies.
	book.Quantity = 0
	book.TotalCopies = 0
	book.PrepareForStorage()

	if err := s.books.Save(ctx, book); err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}

	s.invalidateListCache(ctx)
	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID.String()),
		slog.String("title", book.Title))

	return nil
}

// UpdateBook updates descriptive fields of an existing book. Inventory
// counters are not writable through this path.
func (s *CatalogService) UpdateBook(ctx context.Context, id uuid.UUID, book *domain.Book) error {
	book.ID = id
	if err := book.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.books.Update(ctx, book); err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	s.invalidateListCache(ctx)
	s.logger.InfoContext(ctx, "book updated", slog.String("book_id", id.String()))

	return nil
}

// GetBook retrieves a book by ID
func (s *CatalogService) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// ListBooks retrieves books with filtering and pagination, served from
// cache when possible.
func (s *CatalogService) ListBooks(ctx context.Context, q ports.BookQuery) (*ports.BookPage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 50
	}

	key := fmt.Sprintf("%s:%s:%s:%s:%d:%d:%s:%s",
		bookListCachePrefix, q.Search, q.Category, q.Author, q.Page, q.PageSize, q.SortBy, q.SortOrder)

	var page ports.BookPage
	err := s.cache.GetOrSet(ctx, key, &page, func() (interface{}, error) {
		books, total, err := s.books.List(ctx, q)
		if err != nil {
			return nil, err
		}
		return &ports.BookPage{
			Books:      books,
			Page:       q.Page,
			PageSize:   q.PageSize,
			TotalCount: total,
			TotalPages: totalPages(total, q.PageSize),
		}, nil
	}, bookListCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return &page, nil
}

// SoftDeleteBook marks a book deleted. The repository enforces the gate:
// deletion is rejected while any copy is out on loan.
func (s *CatalogService) SoftDeleteBook(ctx context.Context, id uuid.UUID) error {
	if err := s.books.SoftDelete(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("failed to soft delete book: %w", err)
	}

	s.invalidateListCache(ctx)
	s.logger.InfoContext(ctx, "book soft deleted", slog.String("book_id", id.String()))

	return nil
}

// RestoreBook clears the deletion flag without touching counters
func (s *CatalogService) RestoreBook(ctx context.Context, id uuid.UUID) error {
	if err := s.books.Restore(ctx, id); err != nil {
		return fmt.Errorf("failed to restore book: %w", err)
	}

	s.invalidateListCache(ctx)
	s.logger.InfoContext(ctx, "book restored", slog.String("book_id", id.String()))

	return nil
}

// UploadCover stores a cover image and records its key on the book
func (s *CatalogService) UploadCover(ctx context.Context, bookID uuid.UUID, contentType string, body io.Reader) (string, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return "", fmt.Errorf("failed to get book: %w", err)
	}

	key := fmt.Sprintf("covers/%s", bookID)
	if _, err := s.covers.Upload(ctx, key, contentType, body); err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}

	book.CoverImage = key
	if err := s.books.Update(ctx, book); err != nil {
		return "", fmt.Errorf("failed to record cover key: %w", err)
	}

	url, err := s.covers.PresignGet(ctx, key, coverPresignExpiry)
	if err != nil {
		// The upload succeeded; a presign failure only degrades the response.
		s.logger.WarnContext(ctx, "failed to presign cover url",
			slog.String("book_id", bookID.String()),
			slog.String("error", err.Error()))
		return key, nil
	}

	return url, nil
}

// AddCopies registers n new physical copies of a book
func (s *CatalogService) AddCopies(ctx context.Context, bookID uuid.UUID, n int) ([]domain.BookCopy, error) {
	if n <= 0 {
		return nil, fmt.Errorf("copy count must be positive")
	}

	copies, err := s.copies.AddCopies(ctx, bookID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to add copies: %w", err)
	}

	s.invalidateListCache(ctx)
	s.logger.InfoContext(ctx, "copies added",
		slog.String("book_id", bookID.String()),
		slog.Int("count", n))

	return copies, nil
}

// RemoveCopy permanently removes an available copy
func (s *CatalogService) RemoveCopy(ctx context.Context, copyID uuid.UUID) error {
	if err := s.copies.Remove(ctx, copyID); err != nil {
		return fmt.Errorf("failed to remove copy: %w", err)
	}

	s.invalidateListCache(ctx)
	s.logger.InfoContext(ctx, "copy removed", slog.String("copy_id", copyID.String()))

	return nil
}

// MarkCopyLost records a copy as lost
func (s *CatalogService) MarkCopyLost(ctx context.Context, copyID uuid.UUID) error {
	if err := s.copies.MarkLost(ctx, copyID); err != nil {
		return fmt.Errorf("failed to mark copy lost: %w", err)
	}

	s.invalidateListCache(ctx)
	s.logger.InfoContext(ctx, "copy marked lost", slog.String("copy_id", copyID.String()))

	return nil
}

// RetireCopy removes a copy from circulation
func (s *CatalogService) RetireCopy(ctx context.Context, copyID uuid.UUID) error {
	if err := s.copies.Retire(ctx, copyID); err != nil {
		return fmt.Errorf("failed to retire copy: %w", err)
	}

	s.invalidateListCache(ctx)
	s.logger.InfoContext(ctx, "copy retired", slog.String("copy_id", copyID.String()))

	return nil
}

// ListCopies lists all copies of a book
func (s *CatalogService) ListCopies(ctx context.Context, bookID uuid.UUID) ([]domain.BookCopy, error) {
	copies, err := s.copies.ListByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list copies: %w", err)
	}
	return copies, nil
}

func (s *CatalogService) invalidateListCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, bookListCachePrefix+":*"); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate book list cache",
			slog.String("error", err.Error()))
	}
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
