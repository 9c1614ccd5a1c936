//go:build integration
// +build integration

package db_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/library-be/internal/adapters/db"
	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
	"github.com/ammerola/library-be/test/helpers"
)

type RepositorySuite struct {
	suite.Suite
	testDB  *helpers.TestDB
	books   ports.BookRepository
	copies  ports.CopyRepository
	borrows ports.BorrowRepository
	ctx     context.Context
}

func (s *RepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	logger := helpers.TestLogger()
	s.books = db.NewBookRepository(s.testDB.Database, logger)
	s.copies = db.NewCopyRepository(s.testDB.Database, logger)
	s.borrows = db.NewBorrowRepository(s.testDB.Database, logger)
	s.ctx = context.Background()
}

func (s *RepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

// createBook saves a book with no copies yet
func (s *RepositorySuite) createBook(overrides ...func(*domain.Book)) *domain.Book {
	book := helpers.CreateTestBook(func(b *domain.Book) {
		b.ISBN = ""
		b.Quantity = 0
		b.TotalCopies = 0
	})
	for _, override := range overrides {
		override(book)
	}
	book.PrepareForStorage()
	s.Require().NoError(s.books.Save(s.ctx, book))
	return book
}

func (s *RepositorySuite) bookCounters(bookID uuid.UUID) (quantity, totalCopies int, availability bool) {
	err := s.testDB.PgxPool.QueryRow(s.ctx,
		`SELECT quantity, total_copies, availability FROM books WHERE id = $1`, bookID).
		Scan(&quantity, &totalCopies, &availability)
	s.Require().NoError(err)
	return
}

func (s *RepositorySuite) TestBookSaveAndFind() {
	book := s.createBook(func(b *domain.Book) {
		b.ISBN = "9780134190440"
	})

	found, err := s.books.FindByID(s.ctx, book.ID)
	s.NoError(err)
	helpers.CompareBooks(s.T(), book, found)

	byISBN, err := s.books.FindByISBN(s.ctx, "9780134190440")
	s.NoError(err)
	s.Equal(book.ID, byISBN.ID)

	_, err = s.books.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, domain.ErrBookNotFound)
}

func (s *RepositorySuite) TestAddCopiesAssignsSequentialCodes() {
	book := s.createBook()

	first, err := s.copies.AddCopies(s.ctx, book.ID, 2)
	s.NoError(err)
	s.Len(first, 2)
	s.Equal(domain.CopyCode(book.ID, 1), first[0].Code)
	s.Equal(domain.CopyCode(book.ID, 2), first[1].Code)

	// A second batch continues the numbering from total_copies
	second, err := s.copies.AddCopies(s.ctx, book.ID, 1)
	s.NoError(err)
	s.Equal(domain.CopyCode(book.ID, 3), second[0].Code)

	quantity, total, available := s.bookCounters(book.ID)
	s.Equal(3, quantity)
	s.Equal(3, total)
	s.True(available)
}

func (s *RepositorySuite) TestClaimAndRelease() {
	book := s.createBook()
	_, err := s.copies.AddCopies(s.ctx, book.ID, 1)
	s.Require().NoError(err)

	claimed, err := s.copies.Claim(s.ctx, book.ID)
	s.NoError(err)
	s.Equal(domain.CopyBorrowed, claimed.Status)

	quantity, _, available := s.bookCounters(book.ID)
	s.Equal(0, quantity)
	s.False(available)

	// The pool is empty now
	_, err = s.copies.Claim(s.ctx, book.ID)
	s.ErrorIs(err, domain.ErrNoCopyAvailable)

	s.NoError(s.copies.Release(s.ctx, claimed.ID))

	quantity, _, available = s.bookCounters(book.ID)
	s.Equal(1, quantity)
	s.True(available)

	// Releasing an available copy must not double-increment
	err = s.copies.Release(s.ctx, claimed.ID)
	s.ErrorIs(err, domain.ErrCopyNotBorrowed)
}

func (s *RepositorySuite) TestConcurrentClaimsHandOutDistinctCopies() {
	book := s.createBook()
	_, err := s.copies.AddCopies(s.ctx, book.ID, 5)
	s.Require().NoError(err)

	const claimants = 10

	var mu sync.Mutex
	claimed := make(map[uuid.UUID]bool)
	var misses int

	var wg sync.WaitGroup
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.copies.Claim(context.Background(), book.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.ErrorIs(err, domain.ErrNoCopyAvailable)
				misses++
				return
			}
			s.False(claimed[c.ID], "copy %s handed out twice", c.Code)
			claimed[c.ID] = true
		}()
	}
	wg.Wait()

	s.Len(claimed, 5)
	s.Equal(5, misses)

	quantity, total, _ := s.bookCounters(book.ID)
	s.Equal(0, quantity)
	s.Equal(5, total)
}

func (s *RepositorySuite) TestTerminalTransitions() {
	book := s.createBook()
	added, err := s.copies.AddCopies(s.ctx, book.ID, 2)
	s.Require().NoError(err)

	s.NoError(s.copies.MarkLost(s.ctx, added[0].ID))

	quantity, total, _ := s.bookCounters(book.ID)
	s.Equal(1, quantity)
	s.Equal(1, total)

	// A borrowed copy cannot be retired
	claimed, err := s.copies.Claim(s.ctx, book.ID)
	s.Require().NoError(err)
	err = s.copies.Retire(s.ctx, claimed.ID)
	s.ErrorIs(err, domain.ErrCopyNotAvailable)
}

func (s *RepositorySuite) TestSoftDeleteGatedOnOutstandingCopies() {
	book := s.createBook()
	_, err := s.copies.AddCopies(s.ctx, book.ID, 1)
	s.Require().NoError(err)

	claimed, err := s.copies.Claim(s.ctx, book.ID)
	s.Require().NoError(err)

	err = s.books.SoftDelete(s.ctx, book.ID, time.Now())
	s.ErrorIs(err, domain.ErrCopiesOutstanding)

	s.Require().NoError(s.copies.Release(s.ctx, claimed.ID))

	s.NoError(s.books.SoftDelete(s.ctx, book.ID, time.Now()))

	// A deleted book refuses new claims and new copies
	_, err = s.copies.Claim(s.ctx, book.ID)
	s.ErrorIs(err, domain.ErrBookDeleted)
	_, err = s.copies.AddCopies(s.ctx, book.ID, 1)
	s.ErrorIs(err, domain.ErrBookDeleted)

	s.NoError(s.books.Restore(s.ctx, book.ID))
	_, err = s.copies.Claim(s.ctx, book.ID)
	s.NoError(err)
}

func (s *RepositorySuite) TestConcurrentClaimAndSoftDeleteNeverBothSucceed() {
	// A delete that races a claim must lose to it or beat it, never
	// commit alongside it. Repeat to give the scheduler chances to
	// interleave the two.
	for round := 0; round < 20; round++ {
		book := s.createBook()
		_, err := s.copies.AddCopies(s.ctx, book.ID, 1)
		s.Require().NoError(err)

		var claimErr, deleteErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, claimErr = s.copies.Claim(context.Background(), book.ID)
		}()
		go func() {
			defer wg.Done()
			deleteErr = s.books.SoftDelete(context.Background(), book.ID, time.Now())
		}()
		wg.Wait()

		s.False(claimErr == nil && deleteErr == nil,
			"round %d: claim and soft delete both committed", round)
		if claimErr == nil {
			s.ErrorIs(deleteErr, domain.ErrCopiesOutstanding)
		} else {
			s.ErrorIs(claimErr, domain.ErrBookDeleted)
			s.NoError(deleteErr)
		}

		var isDeleted bool
		quantity, total, _ := s.bookCounters(book.ID)
		err = s.testDB.PgxPool.QueryRow(s.ctx,
			`SELECT is_deleted FROM books WHERE id = $1`, book.ID).Scan(&isDeleted)
		s.Require().NoError(err)
		if isDeleted {
			s.Equal(total, quantity, "round %d: deleted book has a copy out", round)
		}
	}
}

// openLoan claims a copy and creates the borrow record around it
func (s *RepositorySuite) openLoan(book *domain.Book) *domain.Borrow {
	claimed, err := s.copies.Claim(s.ctx, book.ID)
	s.Require().NoError(err)

	borrow := helpers.CreateTestBorrow(book.ID, claimed.ID, func(b *domain.Borrow) {
		b.CopyCode = claimed.Code
	})
	borrow.PrepareForStorage()
	s.Require().NoError(s.borrows.Create(s.ctx, borrow))
	return borrow
}

func (s *RepositorySuite) TestBorrowLifecycle() {
	book := s.createBook()
	_, err := s.copies.AddCopies(s.ctx, book.ID, 1)
	s.Require().NoError(err)

	borrow := s.openLoan(book)

	found, err := s.borrows.FindByID(s.ctx, borrow.ID)
	s.NoError(err)
	s.True(found.IsOpen())
	s.Equal(domain.PaymentUnpaid, found.Payment.Status)

	open, err := s.borrows.FindOpenByCopy(s.ctx, borrow.CopyID)
	s.NoError(err)
	s.Equal(borrow.ID, open.ID)

	renewed, err := s.borrows.Renew(s.ctx, borrow.ID, 7*24*time.Hour, 2, time.Now())
	s.NoError(err)
	s.Equal(1, renewed.RenewCount)
	s.True(renewed.DueDate.After(found.DueDate))

	// Third renewal breaches the limit of two
	_, err = s.borrows.Renew(s.ctx, borrow.ID, 7*24*time.Hour, 2, time.Now())
	s.NoError(err)
	_, err = s.borrows.Renew(s.ctx, borrow.ID, 7*24*time.Hour, 2, time.Now())
	s.ErrorIs(err, domain.ErrRenewalLimit)
}

func (s *RepositorySuite) TestConfirmReturnIsIdempotent() {
	book := s.createBook()
	_, err := s.copies.AddCopies(s.ctx, book.ID, 1)
	s.Require().NoError(err)

	borrow := s.openLoan(book)
	txnID := uuid.NewString()

	err = s.borrows.ArmPayment(s.ctx, borrow.ID, domain.MethodVNPay,
		decimal.RequireFromString("39.99"), txnID, time.Now())
	s.NoError(err)

	byTxn, err := s.borrows.FindByTransactionID(s.ctx, txnID)
	s.NoError(err)
	s.Equal(borrow.ID, byTxn.ID)

	params := ports.ConfirmReturnParams{
		BorrowID:      borrow.ID,
		TransactionID: txnID,
		Outcome:       domain.OutcomeSuccess,
		ReturnedAt:    time.Now(),
		Fine:          decimal.Zero,
	}

	applied, err := s.borrows.ConfirmReturn(s.ctx, params)
	s.NoError(err)
	s.True(applied)

	// The loan closed and the copy went back into the pool atomically
	closed, err := s.borrows.FindByID(s.ctx, borrow.ID)
	s.NoError(err)
	s.False(closed.IsOpen())
	s.Equal(domain.PaymentPaid, closed.Payment.Status)

	quantity, _, _ := s.bookCounters(book.ID)
	s.Equal(1, quantity)

	// A replay changes nothing and does not double-release the copy
	applied, err = s.borrows.ConfirmReturn(s.ctx, params)
	s.NoError(err)
	s.False(applied)

	quantity, _, _ = s.bookCounters(book.ID)
	s.Equal(1, quantity)

	// The same transaction id with a flipped outcome is a conflict
	params.Outcome = domain.OutcomeFailure
	_, err = s.borrows.ConfirmReturn(s.ctx, params)
	s.ErrorIs(err, domain.ErrConflictingCallback)
}

func (s *RepositorySuite) TestRevertExpiredPayments() {
	book := s.createBook()
	_, err := s.copies.AddCopies(s.ctx, book.ID, 2)
	s.Require().NoError(err)

	stale := s.openLoan(book)
	fresh := s.openLoan(book)

	s.Require().NoError(s.borrows.ArmPayment(s.ctx, stale.ID, domain.MethodVNPay,
		decimal.RequireFromString("39.99"), uuid.NewString(), time.Now().Add(-time.Hour)))
	s.Require().NoError(s.borrows.ArmPayment(s.ctx, fresh.ID, domain.MethodVNPay,
		decimal.RequireFromString("39.99"), uuid.NewString(), time.Now()))

	reverted, err := s.borrows.RevertExpiredPayments(s.ctx, time.Now().Add(-15*time.Minute))
	s.NoError(err)
	s.Equal(int64(1), reverted)

	found, err := s.borrows.FindByID(s.ctx, stale.ID)
	s.NoError(err)
	s.Equal(domain.PaymentUnpaid, found.Payment.Status)

	found, err = s.borrows.FindByID(s.ctx, fresh.ID)
	s.NoError(err)
	s.Equal(domain.PaymentPending, found.Payment.Status)
}

func (s *RepositorySuite) TestFindOverdueAndMarkNotified() {
	book := s.createBook()
	_, err := s.copies.AddCopies(s.ctx, book.ID, 2)
	s.Require().NoError(err)

	late := s.openLoan(book)
	s.openLoan(book)

	_, err = s.testDB.PgxPool.Exec(s.ctx,
		`UPDATE borrows SET due_date = NOW() - INTERVAL '2 days' WHERE id = $1`, late.ID)
	s.Require().NoError(err)

	overdue, err := s.borrows.FindOverdue(s.ctx, time.Now(), 10)
	s.NoError(err)
	s.Require().Len(overdue, 1)
	s.Equal(late.ID, overdue[0].ID)

	s.NoError(s.borrows.MarkNotified(s.ctx, late.ID))

	overdue, err = s.borrows.FindOverdue(s.ctx, time.Now(), 10)
	s.NoError(err)
	s.Empty(overdue)
}

func (s *RepositorySuite) TestBorrowListFilters() {
	book := s.createBook()
	_, err := s.copies.AddCopies(s.ctx, book.ID, 3)
	s.Require().NoError(err)

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		claimed, err := s.copies.Claim(s.ctx, book.ID)
		s.Require().NoError(err)

		borrow := helpers.CreateTestBorrow(book.ID, claimed.ID, func(b *domain.Borrow) {
			b.CopyCode = claimed.Code
			if i == 0 {
				b.User.ID = userID
			}
			b.User.Name = fmt.Sprintf("Reader %d", i)
		})
		borrow.PrepareForStorage()
		s.Require().NoError(s.borrows.Create(s.ctx, borrow))
	}

	results, total, err := s.borrows.List(s.ctx, ports.BorrowQuery{
		UserID:   userID,
		Page:     1,
		PageSize: 10,
	})
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(results, 1)
	s.Equal(userID, results[0].User.ID)

	open := true
	_, total, err = s.borrows.List(s.ctx, ports.BorrowQuery{
		Open:     &open,
		Page:     1,
		PageSize: 10,
	})
	s.NoError(err)
	s.Equal(int64(3), total)
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositorySuite))
}
