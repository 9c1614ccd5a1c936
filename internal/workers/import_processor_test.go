// internal/workers/import_processor_test.go
package workers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/workers"
	"github.com/ammerola/library-be/test/helpers"
	"github.com/ammerola/library-be/test/mocks"
)

// buildImportWorkbook writes a spreadsheet with a header row followed by
// the given data rows and returns its path.
func buildImportWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Books")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, col := range []string{"Title", "Author", "ISBN", "Publisher", "Year", "Category", "Price", "Copies"} {
		header.AddCell().SetString(col)
	}
	for _, row := range rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	return helpers.CreateTempFile(t, buf.Bytes(), ".xlsx")
}

func TestImportProcessor_ProcessImport(t *testing.T) {
	tests := []struct {
		name          string
		rows          [][]string
		setupFile     func() string
		setupMocks    func(*mocks.MockCatalogService)
		expectedError bool
		errorContains string
	}{
		{
			name: "imports_valid_rows_and_skips_incomplete_ones",
			rows: [][]string{
				{"The Go Programming Language", "Alan A. A. Donovan", "978-0134190440", "Addison-Wesley", "2015", "technology", "$39.99", "3"},
				{"Dune", "Frank Herbert", "978-0441013593", "Ace", "1965", "fiction", "9.50", "0"},
				{"", "Author Without Title", "", "", "", "", "", "2"},
			},
			setupMocks: func(catalog *mocks.MockCatalogService) {
				var firstID uuid.UUID
				catalog.EXPECT().
					CreateBook(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, book *domain.Book) error {
						assert.Equal(t, "The Go Programming Language", book.Title)
						assert.Equal(t, "978-0134190440", book.ISBN)
						assert.Equal(t, 2015, book.PublishYear)
						assert.Equal(t, "39.99", book.Price.StringFixed(2))
						book.ID = uuid.New()
						firstID = book.ID
						return nil
					})
				catalog.EXPECT().
					AddCopies(gomock.Any(), gomock.Any(), 3).
					DoAndReturn(func(_ context.Context, bookID uuid.UUID, _ int) ([]domain.BookCopy, error) {
						assert.Equal(t, firstID, bookID)
						return make([]domain.BookCopy, 3), nil
					})

				// Second row asks for zero copies, so only the book is created.
				catalog.EXPECT().
					CreateBook(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, book *domain.Book) error {
						assert.Equal(t, "Dune", book.Title)
						assert.Equal(t, "9.50", book.Price.StringFixed(2))
						book.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "continues_past_rows_the_catalog_rejects",
			rows: [][]string{
				{"Duplicate ISBN", "Some Author", "978-dup", "", "2020", "", "5.00", "1"},
				{"Fine Book", "Other Author", "978-ok", "", "2021", "", "6.00", "1"},
			},
			setupMocks: func(catalog *mocks.MockCatalogService) {
				catalog.EXPECT().
					CreateBook(gomock.Any(), gomock.Any()).
					Return(assert.AnError)
				catalog.EXPECT().
					CreateBook(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, book *domain.Book) error {
						assert.Equal(t, "Fine Book", book.Title)
						book.ID = uuid.New()
						return nil
					})
				catalog.EXPECT().
					AddCopies(gomock.Any(), gomock.Any(), 1).
					Return(make([]domain.BookCopy, 1), nil)
			},
		},
		{
			name: "fails_when_spreadsheet_is_missing",
			setupFile: func() string {
				return "/nonexistent/import.xlsx"
			},
			setupMocks:    func(*mocks.MockCatalogService) {},
			expectedError: true,
			errorContains: "failed to open spreadsheet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockCatalog := mocks.NewMockCatalogService(ctrl)
			processor := workers.NewImportProcessor(mockCatalog, helpers.TestLogger())

			payload := workers.BookImportPayload{JobID: uuid.New().String()}
			if tt.setupFile != nil {
				payload.FilePath = tt.setupFile()
			} else {
				payload.FilePath = buildImportWorkbook(t, tt.rows)
			}

			tt.setupMocks(mockCatalog)

			payloadBytes, err := json.Marshal(payload)
			require.NoError(t, err)

			task := asynq.NewTask(workers.TypeBookImport, payloadBytes)
			err = processor.ProcessImport(context.Background(), task)

			if tt.expectedError {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestImportProcessor_RejectsMalformedPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	processor := workers.NewImportProcessor(mocks.NewMockCatalogService(ctrl), helpers.TestLogger())

	task := asynq.NewTask(workers.TypeBookImport, []byte("not-json"))
	err := processor.ProcessImport(context.Background(), task)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal payload")
}
