// internal/core/domain/borrow_test.go
package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/library-be/internal/core/domain"
)

func openBorrow(now time.Time) *domain.Borrow {
	return &domain.Borrow{
		ID: uuid.New(),
		User: domain.BorrowerSnapshot{
			ID:    uuid.New(),
			Name:  "Pat Reader",
			Email: "pat.reader@example.com",
		},
		BookID:     uuid.New(),
		CopyID:     uuid.New(),
		Price:      decimal.NewFromFloat(15.00),
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, 14),
	}
}

func TestBorrow_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		mutate        func(*domain.Borrow)
		errorContains string
	}{
		{
			name:   "valid_borrow",
			mutate: func(b *domain.Borrow) {},
		},
		{
			name:          "missing_borrower_id",
			mutate:        func(b *domain.Borrow) { b.User.ID = uuid.Nil },
			errorContains: "borrower id is required",
		},
		{
			name:          "missing_borrower_email",
			mutate:        func(b *domain.Borrow) { b.User.Email = "" },
			errorContains: "borrower name and email are required",
		},
		{
			name:          "missing_book_id",
			mutate:        func(b *domain.Borrow) { b.BookID = uuid.Nil },
			errorContains: "book id is required",
		},
		{
			name:          "missing_copy_id",
			mutate:        func(b *domain.Borrow) { b.CopyID = uuid.Nil },
			errorContains: "copy id is required",
		},
		{
			name:          "negative_price",
			mutate:        func(b *domain.Borrow) { b.Price = decimal.NewFromFloat(-1) },
			errorContains: "price cannot be negative",
		},
		{
			name:          "due_date_before_borrow_date",
			mutate:        func(b *domain.Borrow) { b.DueDate = b.BorrowDate.AddDate(0, 0, -1) },
			errorContains: "due date must be after borrow date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := openBorrow(now)
			tt.mutate(b)

			err := b.Validate()
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBorrow_IsOverdue(t *testing.T) {
	now := time.Now()
	b := openBorrow(now)

	assert.True(t, b.IsOpen())
	assert.False(t, b.IsOverdue(now))
	assert.False(t, b.IsOverdue(b.DueDate), "due date itself is not overdue")
	assert.True(t, b.IsOverdue(b.DueDate.Add(time.Minute)))

	// Closed loans are never overdue.
	ret := b.DueDate.AddDate(0, 0, 5)
	require.NoError(t, b.Close(ret, decimal.NewFromFloat(2.50)))
	assert.False(t, b.IsOverdue(ret))
}

func TestBorrow_CanRenew(t *testing.T) {
	now := time.Now()
	maxRenewals := 2

	tests := []struct {
		name    string
		mutate  func(*domain.Borrow)
		wantErr error
	}{
		{
			name:   "fresh_loan_renews",
			mutate: func(b *domain.Borrow) {},
		},
		{
			name: "closed_loan",
			mutate: func(b *domain.Borrow) {
				ret := now
				b.ReturnDate = &ret
			},
			wantErr: domain.ErrBorrowClosed,
		},
		{
			name: "overdue_loan",
			mutate: func(b *domain.Borrow) {
				b.DueDate = now.AddDate(0, 0, -1)
			},
			wantErr: domain.ErrOverdue,
		},
		{
			name: "renewal_limit_reached",
			mutate: func(b *domain.Borrow) {
				b.RenewCount = maxRenewals
			},
			wantErr: domain.ErrRenewalLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := openBorrow(now)
			tt.mutate(b)

			err := b.CanRenew(now, maxRenewals)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBorrow_Renew(t *testing.T) {
	now := time.Now()
	b := openBorrow(now)
	originalDue := b.DueDate

	extension := 7 * 24 * time.Hour
	b.Renew(extension, now)

	assert.Equal(t, originalDue.Add(extension), b.DueDate)
	assert.Equal(t, 1, b.RenewCount)
	require.NotNil(t, b.LastRenewedAt)
	assert.Equal(t, now, *b.LastRenewedAt)
}

func TestBorrow_Close(t *testing.T) {
	now := time.Now()
	b := openBorrow(now)

	ret := b.DueDate.AddDate(0, 0, 3)
	fine := decimal.NewFromFloat(1.50)

	require.NoError(t, b.Close(ret, fine))
	assert.False(t, b.IsOpen())
	require.NotNil(t, b.ReturnDate)
	assert.Equal(t, ret, *b.ReturnDate)
	assert.True(t, b.Fine.Equal(fine))

	// A closed loan cannot be closed again.
	err := b.Close(ret, fine)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBorrowClosed)
}

func TestBorrow_PrepareForStorage(t *testing.T) {
	b := &domain.Borrow{
		User: domain.BorrowerSnapshot{
			ID:    uuid.New(),
			Name:  "Pat Reader",
			Email: "pat.reader@example.com",
		},
		BookID: uuid.New(),
		CopyID: uuid.New(),
	}

	b.PrepareForStorage()

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.False(t, b.BorrowDate.IsZero())
	assert.Equal(t, domain.MethodCash, b.Payment.Method)
	assert.Equal(t, domain.PaymentUnpaid, b.Payment.Status)
}

func TestPaymentMethod(t *testing.T) {
	assert.True(t, domain.MethodCash.Valid())
	assert.True(t, domain.MethodVNPay.Valid())
	assert.True(t, domain.MethodZaloPay.Valid())
	assert.False(t, domain.PaymentMethod("paypal").Valid())

	assert.False(t, domain.MethodCash.Redirect())
	assert.True(t, domain.MethodVNPay.Redirect())
	assert.True(t, domain.MethodZaloPay.Redirect())
}
