// internal/core/domain/book.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book represents a catalogued work. Physical instances are tracked as
// BookCopy records; the Book itself only carries aggregate counters.
type Book struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Description string          `json:"description,omitempty"`
	ISBN        string          `json:"isbn,omitempty"`
	Publisher   string          `json:"publisher,omitempty"`
	PublishYear int             `json:"publish_year,omitempty"`
	Category    string          `json:"category,omitempty"`
	CoverImage  string          `json:"cover_image,omitempty"`
	Price       decimal.Decimal `json:"price"`

	// Inventory counters. Quantity counts copies currently available,
	// TotalCopies counts every copy not permanently removed. Both are
	// mutated only inside the copy/borrow transition transactions.
	Quantity     int  `json:"quantity"`
	TotalCopies  int  `json:"total_copies"`
	Availability bool `json:"availability"`
	HoldCount    int  `json:"hold_count"`

	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate performs domain validation on the book
func (b *Book) Validate() error {
	if b.Title == "" {
		return fmt.Errorf("title is required")
	}
	if b.Author == "" {
		return fmt.Errorf("author is required")
	}
	if b.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if b.PublishYear < 0 {
		return fmt.Errorf("publish_year cannot be negative")
	}
	return nil
}

// CheckCounters verifies the aggregate counter invariants. A violation
// means the stored state has drifted and the enclosing transaction must
// abort rather than repair it.
func (b *Book) CheckCounters() error {
	if b.Quantity < 0 || b.Quantity > b.TotalCopies {
		return fmt.Errorf("%w: book %s has quantity=%d total_copies=%d",
			ErrCounterDrift, b.ID, b.Quantity, b.TotalCopies)
	}
	if b.Availability != (b.Quantity > 0) {
		return fmt.Errorf("%w: book %s availability=%t with quantity=%d",
			ErrCounterDrift, b.ID, b.Availability, b.Quantity)
	}
	return nil
}

// OnLoan returns the number of copies currently out with borrowers.
func (b *Book) OnLoan() int {
	return b.TotalCopies - b.Quantity
}

// CanSoftDelete reports whether the book may be soft deleted. Deletion is
// gated on every copy being back on the shelf.
func (b *Book) CanSoftDelete() bool {
	return b.Quantity == b.TotalCopies
}

// PrepareForStorage prepares the book for database storage
func (b *Book) PrepareForStorage() {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	// Availability is derived, never set by callers.
	b.Availability = b.Quantity > 0
}
