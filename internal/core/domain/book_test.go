// internal/core/domain/book_test.go
package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/library-be/internal/core/domain"
)

func validBook() *domain.Book {
	return &domain.Book{
		ID:     uuid.New(),
		Title:  "Dune",
		Author: "Frank Herbert",
		Price:  decimal.NewFromFloat(12.50),
	}
}

func TestBook_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*domain.Book)
		errorContains string
	}{
		{
			name:   "valid_book",
			mutate: func(b *domain.Book) {},
		},
		{
			name:          "missing_title",
			mutate:        func(b *domain.Book) { b.Title = "" },
			errorContains: "title is required",
		},
		{
			name:          "missing_author",
			mutate:        func(b *domain.Book) { b.Author = "" },
			errorContains: "author is required",
		},
		{
			name:          "negative_price",
			mutate:        func(b *domain.Book) { b.Price = decimal.NewFromFloat(-1) },
			errorContains: "price cannot be negative",
		},
		{
			name:          "negative_publish_year",
			mutate:        func(b *domain.Book) { b.PublishYear = -1 },
			errorContains: "publish_year cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := validBook()
			tt.mutate(book)

			err := book.Validate()
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBook_CheckCounters(t *testing.T) {
	tests := []struct {
		name         string
		quantity     int
		totalCopies  int
		availability bool
		wantDrift    bool
	}{
		{name: "all_on_shelf", quantity: 3, totalCopies: 3, availability: true},
		{name: "some_on_loan", quantity: 1, totalCopies: 3, availability: true},
		{name: "none_available", quantity: 0, totalCopies: 3, availability: false},
		{name: "empty_book", quantity: 0, totalCopies: 0, availability: false},
		{name: "negative_quantity", quantity: -1, totalCopies: 3, availability: false, wantDrift: true},
		{name: "quantity_exceeds_total", quantity: 4, totalCopies: 3, availability: true, wantDrift: true},
		{name: "availability_stale_true", quantity: 0, totalCopies: 3, availability: true, wantDrift: true},
		{name: "availability_stale_false", quantity: 2, totalCopies: 3, availability: false, wantDrift: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := validBook()
			book.Quantity = tt.quantity
			book.TotalCopies = tt.totalCopies
			book.Availability = tt.availability

			err := book.CheckCounters()
			if tt.wantDrift {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrCounterDrift)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBook_CanSoftDelete(t *testing.T) {
	book := validBook()
	book.Quantity = 3
	book.TotalCopies = 3
	assert.True(t, book.CanSoftDelete())
	assert.Equal(t, 0, book.OnLoan())

	book.Quantity = 2
	assert.False(t, book.CanSoftDelete())
	assert.Equal(t, 1, book.OnLoan())
}

func TestBook_PrepareForStorage(t *testing.T) {
	book := validBook()
	book.ID = uuid.Nil
	book.Quantity = 2
	book.Availability = false

	book.PrepareForStorage()

	assert.NotEqual(t, uuid.Nil, book.ID)
	assert.False(t, book.CreatedAt.IsZero())
	assert.False(t, book.UpdatedAt.IsZero())
	// Availability is derived from quantity, never trusted from input.
	assert.True(t, book.Availability)
}
