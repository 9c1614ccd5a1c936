// internal/core/ports/collaborators.go
package ports

import (
	"context"
	"io"
	"time"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notifier informs the borrower about circulation events. Delivery is
// fire-and-forget: failures are logged and must never roll back the
// loan or payment transaction that triggered them.
type Notifier interface {
	LoanCreated(ctx context.Context, borrow *domain.Borrow) error
	LoanOverdue(ctx context.Context, borrow *domain.Borrow) error
	PaymentConfirmed(ctx context.Context, borrow *domain.Borrow) error
}

// PaymentOrder is the request handed to a gateway when a return is
// prepared with a redirect method.
type PaymentOrder struct {
	BorrowID      uuid.UUID
	TransactionID string
	Amount        decimal.Decimal
	Description   string
}

// PaymentGateway creates the payment-initiation reference for one
// payment method. The gateway later reports the outcome through the
// callback endpoint, which feeds PaymentService.ConfirmGatewayReturn.
type PaymentGateway interface {
	Method() domain.PaymentMethod
	CreatePaymentURL(ctx context.Context, order PaymentOrder) (string, error)
}

// CoverStorage stores book cover images. Implemented by the S3 adapter;
// the catalog only ever sees opaque keys and presigned URLs.
type CoverStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
