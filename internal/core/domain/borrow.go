// internal/core/domain/borrow.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a return is settled
type PaymentMethod string

// Supported payment methods
const (
	MethodCash    PaymentMethod = "cash"
	MethodVNPay   PaymentMethod = "vnpay"
	MethodZaloPay PaymentMethod = "zalopay"
)

// Valid reports whether m is one of the supported methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodVNPay, MethodZaloPay:
		return true
	}
	return false
}

// Redirect reports whether m requires an external gateway redirect flow.
func (m PaymentMethod) Redirect() bool {
	return m == MethodVNPay || m == MethodZaloPay
}

// PaymentStatus represents the settlement state of a return payment
type PaymentStatus string

// Payment status constants
const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// PaymentOutcome is the result reported by a gateway callback
type PaymentOutcome string

// Gateway callback outcomes
const (
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeFailure PaymentOutcome = "failure"
)

// Payment is the settlement sub-record of a Borrow. Amount is fixed at
// prepare time as price + fine; TransactionID keys gateway callbacks.
type Payment struct {
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PendingAt     *time.Time      `json:"pending_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// BorrowerSnapshot captures the borrower's identity at loan creation.
// It is deliberately denormalized for read efficiency and may go stale
// relative to the live user record.
type BorrowerSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Borrow is one loan transaction linking a borrower, a copy and a book.
// A borrow is open while ReturnDate is nil and immutable once closed,
// except for the payment bookkeeping finalized at close time.
type Borrow struct {
	ID       uuid.UUID        `json:"id"`
	User     BorrowerSnapshot `json:"user"`
	BookID   uuid.UUID        `json:"book_id"`
	CopyID   uuid.UUID        `json:"copy_id"`
	CopyCode string           `json:"copy_code,omitempty"`

	Price      decimal.Decimal `json:"price"`
	BorrowDate time.Time       `json:"borrow_date"`
	DueDate    time.Time       `json:"due_date"`
	ReturnDate *time.Time      `json:"return_date,omitempty"`

	RenewCount    int        `json:"renew_count"`
	LastRenewedAt *time.Time `json:"last_renewed_at,omitempty"`

	Fine     decimal.Decimal `json:"fine"`
	Notified bool            `json:"notified"`
	Payment  Payment         `json:"payment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate performs domain validation on a new borrow
func (b *Borrow) Validate() error {
	if b.User.ID == uuid.Nil {
		return fmt.Errorf("borrower id is required")
	}
	if b.User.Name == "" || b.User.Email == "" {
		return fmt.Errorf("borrower name and email are required")
	}
	if b.BookID == uuid.Nil {
		return fmt.Errorf("book id is required")
	}
	if b.CopyID == uuid.Nil {
		return fmt.Errorf("copy id is required")
	}
	if b.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if !b.DueDate.After(b.BorrowDate) {
		return fmt.Errorf("due date must be after borrow date")
	}
	return nil
}

// IsOpen reports whether the loan has not been returned yet.
func (b *Borrow) IsOpen() bool {
	return b.ReturnDate == nil
}

// IsOverdue reports whether an open loan has passed its due date.
func (b *Borrow) IsOverdue(now time.Time) bool {
	return b.IsOpen() && b.DueDate.Before(now)
}

// CanRenew checks the renewal policy: the loan must be open, not overdue,
// and under the configured renewal limit.
func (b *Borrow) CanRenew(now time.Time, maxRenewals int) error {
	if !b.IsOpen() {
		return ErrBorrowClosed
	}
	if b.IsOverdue(now) {
		return ErrOverdue
	}
	if b.RenewCount >= maxRenewals {
		return fmt.Errorf("%w: %d renewals used", ErrRenewalLimit, b.RenewCount)
	}
	return nil
}

// Renew extends the due date and records the renewal. Callers must have
// checked CanRenew inside the same transaction.
func (b *Borrow) Renew(extension time.Duration, now time.Time) {
	b.DueDate = b.DueDate.Add(extension)
	b.RenewCount++
	b.LastRenewedAt = &now
	b.UpdatedAt = now
}

// Close finalizes the loan. This is the only path into the closed state;
// it is driven exclusively by a confirmed payment.
func (b *Borrow) Close(returnDate time.Time, fine decimal.Decimal) error {
	if !b.IsOpen() {
		return ErrBorrowClosed
	}
	b.ReturnDate = &returnDate
	b.Fine = fine
	b.UpdatedAt = returnDate
	return nil
}

// PrepareForStorage prepares the borrow for database storage
func (b *Borrow) PrepareForStorage() {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	now := time.Now()
	if b.BorrowDate.IsZero() {
		b.BorrowDate = now
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	if b.Payment.Method == "" {
		b.Payment.Method = MethodCash
	}
	if b.Payment.Status == "" {
		b.Payment.Status = PaymentUnpaid
	}
}
