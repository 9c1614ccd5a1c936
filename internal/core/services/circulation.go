// internal/core/services/circulation.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

// CirculationConfig holds the loan policy knobs
type CirculationConfig struct {
	LoanDays    int
	RenewalDays int
	MaxRenewals int
}

// CirculationService handles the borrow/renew side of the loan lifecycle
type CirculationService struct {
	books    ports.BookRepository
	copies   ports.CopyRepository
	borrows  ports.BorrowRepository
	notifier ports.Notifier
	cfg      CirculationConfig
	logger   *slog.Logger
}

// Statically assert that *CirculationService implements the CirculationService interface.
var _ ports.CirculationService = (*CirculationService)(nil)

// NewCirculationService creates a new circulation service
func NewCirculationService(books ports.BookRepository, copies ports.CopyRepository,
	borrows ports.BorrowRepository, notifier ports.Notifier, cfg CirculationConfig,
	logger *slog.Logger) *CirculationService {
	return &CirculationService{
		books:    books,
		copies:   copies,
		borrows:  borrows,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With(slog.String("service", "circulation")),
	}
}

// Borrow claims a copy and opens a loan. The claim (copy transition plus
// counter decrement) is atomic in the registry; if the loan record then
// fails to persist, the claimed copy is released again so inventory is
// never stranded.
func (s *CirculationService) Borrow(ctx context.Context, req ports.BorrowRequest) (*domain.Borrow, error) {
	book, err := s.books.FindByID(ctx, req.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if book.IsDeleted {
		return nil, domain.ErrBookDeleted
	}

	bookCopy, err := s.copies.Claim(ctx, req.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim copy: %w", err)
	}

	days := req.Days
	if days <= 0 {
		days = s.cfg.LoanDays
	}

	now := time.Now()
	borrow := &domain.Borrow{
		User:       req.Borrower,
		BookID:     req.BookID,
		CopyID:     bookCopy.ID,
		CopyCode:   bookCopy.Code,
		Price:      book.Price,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, days),
	}
	borrow.PrepareForStorage()

	if err := borrow.Validate(); err == nil {
		err = s.borrows.Create(ctx, borrow)
	}
	if err != nil {
		// Compensating action: put the claimed copy back before
		// surfacing the failure.
		if relErr := s.copies.Release(ctx, bookCopy.ID); relErr != nil {
			s.logger.ErrorContext(ctx, "failed to release copy after loan creation failure",
				slog.String("copy_id", bookCopy.ID.String()),
				slog.String("error", relErr.Error()))
		}
		return nil, fmt.Errorf("failed to open loan: %w", err)
	}

	s.logger.InfoContext(ctx, "loan opened",
		slog.String("borrow_id", borrow.ID.String()),
		slog.String("book_id", req.BookID.String()),
		slog.String("copy_code", bookCopy.Code),
		slog.Time("due_date", borrow.DueDate))

	// Fire-and-forget: a notification failure never unwinds the loan.
	if err := s.notifier.LoanCreated(ctx, borrow); err != nil {
		s.logger.WarnContext(ctx, "failed to notify loan created",
			slog.String("borrow_id", borrow.ID.String()),
			slog.String("error", err.Error()))
	}

	return borrow, nil
}

// Renew extends an open loan's due date under the renewal policy
func (s *CirculationService) Renew(ctx context.Context, borrowID uuid.UUID) (*domain.Borrow, error) {
	extension := time.Duration(s.cfg.RenewalDays) * 24 * time.Hour

	borrow, err := s.borrows.Renew(ctx, borrowID, extension, s.cfg.MaxRenewals, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to renew loan: %w", err)
	}

	s.logger.InfoContext(ctx, "loan renewed",
		slog.String("borrow_id", borrowID.String()),
		slog.Int("renew_count", borrow.RenewCount),
		slog.Time("due_date", borrow.DueDate))

	return borrow, nil
}

// GetBorrow retrieves a borrow record by ID
func (s *CirculationService) GetBorrow(ctx context.Context, borrowID uuid.UUID) (*domain.Borrow, error) {
	borrow, err := s.borrows.FindByID(ctx, borrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get borrow: %w", err)
	}
	return borrow, nil
}

// ListBorrows retrieves borrow records with filtering and pagination
func (s *CirculationService) ListBorrows(ctx context.Context, q ports.BorrowQuery) (*ports.BorrowPage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 50
	}

	borrows, total, err := s.borrows.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrows: %w", err)
	}

	return &ports.BorrowPage{
		Borrows:    borrows,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: total,
		TotalPages: totalPages(total, q.PageSize),
	}, nil
}
