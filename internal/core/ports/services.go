// internal/core/ports/services.go
package ports

import (
	"context"
	"io"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService is the admin-facing application service port: book CRUD
// plus copy registration, with the soft-delete gate on outstanding copies.
type CatalogService interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	UpdateBook(ctx context.Context, id uuid.UUID, book *domain.Book) error
	GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	ListBooks(ctx context.Context, q BookQuery) (*BookPage, error)
	SoftDeleteBook(ctx context.Context, id uuid.UUID) error
	RestoreBook(ctx context.Context, id uuid.UUID) error

	UploadCover(ctx context.Context, bookID uuid.UUID, contentType string, body io.Reader) (string, error)

	AddCopies(ctx context.Context, bookID uuid.UUID, n int) ([]domain.BookCopy, error)
	RemoveCopy(ctx context.Context, copyID uuid.UUID) error
	MarkCopyLost(ctx context.Context, copyID uuid.UUID) error
	RetireCopy(ctx context.Context, copyID uuid.UUID) error
	ListCopies(ctx context.Context, bookID uuid.UUID) ([]domain.BookCopy, error)
}

// BorrowRequest is the input for opening a loan. Borrower comes from the
// auth collaborator and is snapshotted onto the borrow record.
type BorrowRequest struct {
	BookID   uuid.UUID
	Borrower domain.BorrowerSnapshot
	Days     int // loan period; 0 means the configured default
}

// CirculationService is the borrower-facing port for the loan lifecycle
// up to the return, which is owned by PaymentService.
type CirculationService interface {
	Borrow(ctx context.Context, req BorrowRequest) (*domain.Borrow, error)
	Renew(ctx context.Context, borrowID uuid.UUID) (*domain.Borrow, error)
	GetBorrow(ctx context.Context, borrowID uuid.UUID) (*domain.Borrow, error)
	ListBorrows(ctx context.Context, q BorrowQuery) (*BorrowPage, error)
}

// PaymentIntent is returned by PrepareReturn. RedirectURL is set only
// for gateway methods and is presented to the borrower to complete the
// payment externally.
type PaymentIntent struct {
	BorrowID      uuid.UUID            `json:"borrow_id"`
	Method        domain.PaymentMethod `json:"method"`
	Amount        decimal.Decimal      `json:"amount"`
	TransactionID string               `json:"transaction_id,omitempty"`
	RedirectURL   string               `json:"redirect_url,omitempty"`
}

// PaymentService is the two-phase return protocol: prepare computes the
// amount and arms the payment, confirm settles it and closes the loan
// exactly once.
type PaymentService interface {
	PrepareReturn(ctx context.Context, borrowID uuid.UUID, method domain.PaymentMethod) (*PaymentIntent, error)
	ConfirmCashReturn(ctx context.Context, borrowID uuid.UUID) (*domain.Borrow, error)
	ConfirmGatewayReturn(ctx context.Context, borrowID uuid.UUID, transactionID string, outcome domain.PaymentOutcome) error
	ExpirePendingPayments(ctx context.Context) (int64, error)
}

// BookPage represents paginated book list results
type BookPage struct {
	Books      []*domain.Book `json:"books"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

// BorrowPage represents paginated borrow list results
type BorrowPage struct {
	Borrows    []*domain.Borrow `json:"borrows"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int64            `json:"total_count"`
	TotalPages int              `json:"total_pages"`
}
