package benchmarks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/library-be/internal/adapters/db"
	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
	"github.com/ammerola/library-be/test/helpers"
)

func BenchmarkCatalogOperations(b *testing.B) {
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	books := db.NewBookRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	b.Run("Save", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			book := helpers.CreateTestBook(func(bk *domain.Book) {
				bk.ISBN = fmt.Sprintf("978-bench-%d", i)
				bk.Title = fmt.Sprintf("Benchmark Title %d", i)
			})
			book.PrepareForStorage()
			_ = books.Save(ctx, book)
		}
	})

	// Pre-create books for read benchmarks
	var bookIDs []uuid.UUID
	for i, row := range createCatalogRows(100) {
		book := helpers.CreateTestBook(func(bk *domain.Book) {
			bk.Title = row.Title
			bk.Author = row.Author
			bk.Description = row.Description
			bk.ISBN = fmt.Sprintf("978-read-%d", i)
		})
		book.PrepareForStorage()
		_ = books.Save(ctx, book)
		bookIDs = append(bookIDs, book.ID)
	}

	b.Run("FindByID", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			id := bookIDs[i%len(bookIDs)]
			_, _ = books.FindByID(ctx, id)
		}
	})

	b.Run("List", func(b *testing.B) {
		q := ports.BookQuery{
			Page:     1,
			PageSize: 50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _, _ = books.List(ctx, q)
		}
	})

	b.Run("Search", func(b *testing.B) {
		q := ports.BookQuery{
			Search:   "history",
			Page:     1,
			PageSize: 50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _, _ = books.List(ctx, q)
		}
	})
}

func BenchmarkCopyClaimRelease(b *testing.B) {
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	logger := helpers.TestLogger()
	books := db.NewBookRepository(testDB.Database, logger)
	copies := db.NewCopyRepository(testDB.Database, logger)
	ctx := context.Background()

	book := helpers.CreateTestBook(func(bk *domain.Book) {
		bk.Quantity = 0
		bk.TotalCopies = 0
	})
	book.PrepareForStorage()
	if err := books.Save(ctx, book); err != nil {
		b.Fatalf("save book: %v", err)
	}
	if _, err := copies.AddCopies(ctx, book.ID, 10); err != nil {
		b.Fatalf("add copies: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		claimed, err := copies.Claim(ctx, book.ID)
		if err != nil {
			b.Fatalf("claim: %v", err)
		}
		if err := copies.Release(ctx, claimed.ID); err != nil {
			b.Fatalf("release: %v", err)
		}
	}
}

func BenchmarkClassification(b *testing.B) {
	classifier := newBenchClassifier()
	rows := createCatalogRows(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		row := rows[i%len(rows)]
		classifier.Classify(row.Title, row.Description)
	}
}

func BenchmarkFineCalculation(b *testing.B) {
	calc := domain.NewFineCalculator(decimal.RequireFromString("0.50"))
	due := time.Now().AddDate(0, 0, -3)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = calc.Calculate(due, time.Now())
	}
}

// Memory allocation benchmarks
func BenchmarkMemoryAllocation(b *testing.B) {
	b.Run("Book", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = &domain.Book{
				ID:     uuid.New(),
				Title:  "The Go Programming Language",
				Author: "Alan A. A. Donovan",
				Price:  decimal.NewFromFloat(39.99),
			}
		}
	})

	b.Run("BookPage", func(b *testing.B) {
		stored := make([]*domain.Book, 100)
		for i := range stored {
			stored[i] = helpers.CreateTestBook()
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = &ports.BookPage{
				Books:      stored,
				Page:       1,
				PageSize:   50,
				TotalCount: 100,
				TotalPages: 2,
			}
		}
	})
}
