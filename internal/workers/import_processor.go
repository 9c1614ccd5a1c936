// internal/workers/import_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

// ImportProcessor handles bulk book imports from spreadsheets. Expected
// columns: title, author, isbn, publisher, publish year, category,
// price, initial copies.
type ImportProcessor struct {
	catalog ports.CatalogService
	logger  *slog.Logger
}

// NewImportProcessor creates a new import processor
func NewImportProcessor(catalog ports.CatalogService, logger *slog.Logger) *ImportProcessor {
	return &ImportProcessor{
		catalog: catalog,
		logger:  logger.With(slog.String("processor", "import")),
	}
}

// ProcessImport reads a spreadsheet and registers its books and copies
func (p *ImportProcessor) ProcessImport(ctx context.Context, t *asynq.Task) error {
	var payload BookImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing book import",
		slog.String("job_id", payload.JobID),
		slog.String("file_path", payload.FilePath))

	file, err := xlsx.OpenFile(payload.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	if len(file.Sheets) == 0 {
		return fmt.Errorf("spreadsheet has no sheets")
	}

	var imported, skipped int
	rowIdx := 0
	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		// Skip header row
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		book, copies := p.parseRow(r)
		if book == nil {
			skipped++
			return nil
		}

		if err := p.catalog.CreateBook(ctx, book); err != nil {
			p.logger.WarnContext(ctx, "failed to import book",
				slog.Int("row", rowIdx),
				slog.String("title", book.Title),
				slog.String("error", err.Error()))
			skipped++
			return nil
		}
		if copies > 0 {
			if _, err := p.catalog.AddCopies(ctx, book.ID, copies); err != nil {
				p.logger.WarnContext(ctx, "failed to add imported copies",
					slog.String("book_id", book.ID.String()),
					slog.String("error", err.Error()))
			}
		}

		imported++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to process spreadsheet rows: %w", err)
	}

	// Clean up temp file
	if strings.HasPrefix(payload.FilePath, "/tmp/") {
		os.Remove(payload.FilePath)
	}

	p.logger.InfoContext(ctx, "book import completed",
		slog.String("job_id", payload.JobID),
		slog.Int("imported", imported),
		slog.Int("skipped", skipped))

	return nil
}

func (p *ImportProcessor) parseRow(r *xlsx.Row) (*domain.Book, int) {
	get := func(i int) string {
		c := r.GetCell(i)
		if c == nil {
			return ""
		}
		return strings.TrimSpace(c.String())
	}

	title := get(0)
	author := get(1)
	if title == "" || author == "" {
		return nil, 0
	}

	year, _ := strconv.Atoi(get(4))
	price, _ := decimal.NewFromString(strings.TrimPrefix(get(6), "$"))
	copies, _ := strconv.Atoi(get(7))

	return &domain.Book{
		Title:       title,
		Author:      author,
		ISBN:        get(2),
		Publisher:   get(3),
		PublishYear: year,
		Category:    get(5),
		Price:       price,
	}, copies
}
