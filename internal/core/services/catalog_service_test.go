// internal/core/services/catalog_service_test.go
package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
	"github.com/ammerola/library-be/internal/core/services"
	"github.com/ammerola/library-be/test/helpers"
	"github.com/ammerola/library-be/test/mocks"
)

func catalogFixture(t *testing.T) (*services.CatalogService, *mocks.MockBookRepository,
	*mocks.MockCopyRepository, *mocks.MockCacheRepository, *mocks.MockCoverStorage) {
	t.Helper()

	ctrl := gomock.NewController(t)
	books := mocks.NewMockBookRepository(ctrl)
	copies := mocks.NewMockCopyRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)
	covers := mocks.NewMockCoverStorage(ctrl)

	svc := services.NewCatalogService(books, copies, cache, covers, helpers.TestLogger())

	return svc, books, copies, cache, covers
}

func TestCatalogService_CreateBook(t *testing.T) {
	t.Run("zeroes_counters_on_create", func(t *testing.T) {
		svc, books, _, cache, _ := catalogFixture(t)

		book := helpers.CreateTestBook(func(b *domain.Book) {
			// Counters smuggled in by the caller must be ignored.
			b.Quantity = 5
			b.TotalCopies = 5
		})

		books.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, b *domain.Book) error {
				assert.Equal(t, 0, b.Quantity)
				assert.Equal(t, 0, b.TotalCopies)
				assert.False(t, b.Availability)
				return nil
			})
		cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil)

		err := svc.CreateBook(context.Background(), book)

		require.NoError(t, err)
	})

	t.Run("validation_failure_skips_save", func(t *testing.T) {
		svc, _, _, _, _ := catalogFixture(t)

		book := helpers.CreateTestBook(func(b *domain.Book) { b.Title = "" })

		err := svc.CreateBook(context.Background(), book)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("propagates_save_error", func(t *testing.T) {
		svc, books, _, _, _ := catalogFixture(t)

		books.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("unique violation"))

		err := svc.CreateBook(context.Background(), helpers.CreateTestBook())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save book")
	})
}

func TestCatalogService_ListBooks(t *testing.T) {
	t.Run("serves_from_repository_on_cache_miss", func(t *testing.T) {
		svc, books, _, cache, _ := catalogFixture(t)

		stored := []*domain.Book{helpers.CreateTestBook()}

		cache.EXPECT().
			GetOrSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, key string, dest interface{},
				fn func() (interface{}, error), ttl time.Duration) error {
				assert.True(t, strings.HasPrefix(key, "books:list:"))
				v, err := fn()
				if err != nil {
					return err
				}
				*dest.(*ports.BookPage) = *v.(*ports.BookPage)
				return nil
			})
		books.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(stored, int64(1), nil)

		page, err := svc.ListBooks(context.Background(), ports.BookQuery{})

		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 50, page.PageSize)
		assert.Len(t, page.Books, 1)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("propagates_repository_error", func(t *testing.T) {
		svc, books, _, cache, _ := catalogFixture(t)

		cache.EXPECT().
			GetOrSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, key string, dest interface{},
				fn func() (interface{}, error), ttl time.Duration) error {
				_, err := fn()
				return err
			})
		books.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(nil, int64(0), errors.New("connection refused"))

		_, err := svc.ListBooks(context.Background(), ports.BookQuery{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list books")
	})
}

func TestCatalogService_SoftDeleteBook(t *testing.T) {
	bookID := uuid.New()

	t.Run("deletes_and_invalidates_cache", func(t *testing.T) {
		svc, books, _, cache, _ := catalogFixture(t)

		books.EXPECT().SoftDelete(gomock.Any(), bookID, gomock.Any()).Return(nil)
		cache.EXPECT().DeletePattern(gomock.Any(), "books:list:*").Return(nil)

		require.NoError(t, svc.SoftDeleteBook(context.Background(), bookID))
	})

	t.Run("surfaces_outstanding_copies_gate", func(t *testing.T) {
		svc, books, _, _, _ := catalogFixture(t)

		books.EXPECT().
			SoftDelete(gomock.Any(), bookID, gomock.Any()).
			Return(domain.ErrCopiesOutstanding)

		err := svc.SoftDeleteBook(context.Background(), bookID)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCopiesOutstanding)
	})
}

func TestCatalogService_AddCopies(t *testing.T) {
	bookID := uuid.New()

	t.Run("registers_copies", func(t *testing.T) {
		svc, _, copies, cache, _ := catalogFixture(t)

		registered := []domain.BookCopy{
			*helpers.CreateTestCopy(bookID, 1),
			*helpers.CreateTestCopy(bookID, 2),
		}
		copies.EXPECT().AddCopies(gomock.Any(), bookID, 2).Return(registered, nil)
		cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil)

		result, err := svc.AddCopies(context.Background(), bookID, 2)

		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("rejects_non_positive_count", func(t *testing.T) {
		svc, _, _, _, _ := catalogFixture(t)

		_, err := svc.AddCopies(context.Background(), bookID, 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "copy count must be positive")
	})
}

func TestCatalogService_UploadCover(t *testing.T) {
	book := helpers.CreateTestBook()

	t.Run("uploads_and_presigns", func(t *testing.T) {
		svc, books, _, _, covers := catalogFixture(t)

		key := "covers/" + book.ID.String()
		books.EXPECT().FindByID(gomock.Any(), book.ID).Return(book, nil)
		covers.EXPECT().Upload(gomock.Any(), key, "image/jpeg", gomock.Any()).Return(key, nil)
		books.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, b *domain.Book) error {
				assert.Equal(t, key, b.CoverImage)
				return nil
			})
		covers.EXPECT().
			PresignGet(gomock.Any(), key, gomock.Any()).
			Return("https://cdn.example.com/"+key, nil)

		url, err := svc.UploadCover(context.Background(), book.ID, "image/jpeg", strings.NewReader("jpeg-bytes"))

		require.NoError(t, err)
		assert.Contains(t, url, key)
	})

	t.Run("presign_failure_degrades_to_key", func(t *testing.T) {
		svc, books, _, _, covers := catalogFixture(t)

		key := "covers/" + book.ID.String()
		books.EXPECT().FindByID(gomock.Any(), book.ID).Return(book, nil)
		covers.EXPECT().Upload(gomock.Any(), key, "image/png", gomock.Any()).Return(key, nil)
		books.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		covers.EXPECT().
			PresignGet(gomock.Any(), key, gomock.Any()).
			Return("", errors.New("signing error"))

		url, err := svc.UploadCover(context.Background(), book.ID, "image/png", strings.NewReader("png-bytes"))

		require.NoError(t, err)
		assert.Equal(t, key, url)
	})
}

func TestCatalogService_CopyLifecycle(t *testing.T) {
	copyID := uuid.New()

	t.Run("mark_lost", func(t *testing.T) {
		svc, _, copies, cache, _ := catalogFixture(t)
		copies.EXPECT().MarkLost(gomock.Any(), copyID).Return(nil)
		cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil)
		require.NoError(t, svc.MarkCopyLost(context.Background(), copyID))
	})

	t.Run("retire_rejects_borrowed_copy", func(t *testing.T) {
		svc, _, copies, _, _ := catalogFixture(t)
		copies.EXPECT().Retire(gomock.Any(), copyID).Return(domain.ErrCopyNotAvailable)

		err := svc.RetireCopy(context.Background(), copyID)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCopyNotAvailable)
	})

	t.Run("remove_copy", func(t *testing.T) {
		svc, _, copies, cache, _ := catalogFixture(t)
		copies.EXPECT().Remove(gomock.Any(), copyID).Return(nil)
		cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil)
		require.NoError(t, svc.RemoveCopy(context.Background(), copyID))
	})
}
