package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
)

// BookCategory mirrors the category vocabulary used by the API layer.
type BookCategory string

const (
	CategoryFiction    BookCategory = "fiction"
	CategoryNonFiction BookCategory = "non_fiction"
	CategoryScience    BookCategory = "science"
	CategoryTechnology BookCategory = "technology"
	CategoryHistory    BookCategory = "history"
	CategoryBiography  BookCategory = "biography"
	CategoryChildren   BookCategory = "children"
	CategoryReference  BookCategory = "reference"
	CategoryArts       BookCategory = "arts"
	CategoryBusiness   BookCategory = "business"
	CategoryOther      BookCategory = "other"
)

// CatalogBook is one row of the catalog spreadsheet plus derived fields.
type CatalogBook struct {
	ID          uuid.UUID
	Title       string
	Author      string
	Description string
	ISBN        string
	Publisher   string
	PublishYear int
	Category    BookCategory
	Price       decimal.Decimal
	Copies      int
}

// CategoryClassifier fills in categories for rows that leave the column blank.
type CategoryClassifier struct {
	categoryKeywords map[BookCategory][]string
}

func NewCategoryClassifier() *CategoryClassifier {
	return &CategoryClassifier{
		categoryKeywords: map[BookCategory][]string{
			CategoryFiction: {"novel", "fiction", "stories", "tales", "saga",
				"thriller", "mystery", "fantasy", "romance"},
			CategoryScience: {"physics", "chemistry", "biology", "astronomy",
				"mathematics", "evolution", "genetics", "quantum"},
			CategoryTechnology: {"programming", "software", "computer", "engineering",
				"algorithms", "networks", "database", "machine learning"},
			CategoryHistory: {"history", "war", "empire", "revolution", "ancient",
				"medieval", "century", "civilization"},
			CategoryBiography: {"biography", "memoir", "life of", "autobiography",
				"diaries", "letters"},
			CategoryChildren: {"children", "kids", "picture book", "fairy",
				"bedtime", "young readers"},
			CategoryReference: {"dictionary", "encyclopedia", "atlas", "handbook",
				"manual", "guide", "reference"},
			CategoryArts: {"art", "painting", "music", "photography", "design",
				"architecture", "film", "theatre"},
			CategoryBusiness: {"business", "economics", "management", "marketing",
				"finance", "investing", "leadership"},
		},
	}
}

func (c *CategoryClassifier) Classify(text string) BookCategory {
	textLower := strings.ToLower(text)

	category := CategoryOther
	maxScore := 0
	for cat, keywords := range c.categoryKeywords {
		score := 0
		for _, kw := range keywords {
			if strings.Contains(textLower, kw) {
				score++
			}
		}
		if score > maxScore {
			category = cat
			maxScore = score
		}
	}
	return category
}

// CatalogLoader reads catalog spreadsheets and persists books with their copies.
type CatalogLoader struct {
	classifier *CategoryClassifier
	logger     *slog.Logger
	db         *pgxpool.Pool
}

func NewCatalogLoader(db *pgxpool.Pool, logger *slog.Logger) *CatalogLoader {
	return &CatalogLoader{
		classifier: NewCategoryClassifier(),
		logger:     logger,
		db:         db,
	}
}

// LoadBooks reads one spreadsheet. Expected columns:
// title, author, description, isbn, publisher, publish_year, category, price, copies
func (l *CatalogLoader) LoadBooks(path string) ([]CatalogBook, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in catalog file")
	}
	sheet := file.Sheets[0]

	var books []CatalogBook
	rowIdx := 0
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		// Skip header
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}

		title := get(0)
		author := get(1)
		if title == "" || author == "" {
			return nil
		}

		year, _ := strconv.Atoi(get(5))
		price, err := decimal.NewFromString(get(7))
		if err != nil {
			price = decimal.Zero
		}
		copies, _ := strconv.Atoi(get(8))
		if copies < 0 {
			copies = 0
		}

		category := BookCategory(strings.ToLower(get(6)))
		if category == "" {
			category = l.classifier.Classify(title + " " + get(2))
		}

		books = append(books, CatalogBook{
			ID:          uuid.New(),
			Title:       title,
			Author:      author,
			Description: get(2),
			ISBN:        get(3),
			Publisher:   get(4),
			PublishYear: year,
			Category:    category,
			Price:       price,
			Copies:      copies,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	l.logger.Info("Loaded catalog rows",
		slog.String("file", path),
		slog.Int("count", len(books)))
	return books, nil
}

// SaveBooks persists books and registers their physical copies in one
// transaction per file. Counters are written to match the copy rows so the
// availability invariant holds from the first insert.
func (l *CatalogLoader) SaveBooks(ctx context.Context, books []CatalogBook) error {
	if len(books) == 0 {
		return nil
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, b := range books {
		batch.Queue(`
			INSERT INTO books (
				id, title, author, description, isbn, publisher, publish_year,
				category, price, quantity, total_copies, availability
			) VALUES (
				$1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $10, $10 > 0
			) ON CONFLICT (id) DO NOTHING`,
			b.ID, b.Title, b.Author, b.Description, b.ISBN, b.Publisher,
			b.PublishYear, b.Category, b.Price, b.Copies,
		)
		for n := 1; n <= b.Copies; n++ {
			code := fmt.Sprintf("%s-c%03d", b.ID.String()[:6], n)
			batch.Queue(`
				INSERT INTO book_copies (id, book_id, code, status)
				VALUES ($1, $2, $3, 'available')
				ON CONFLICT (code) DO NOTHING`,
				uuid.New(), b.ID, code,
			)
		}
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	l.logger.Info("Saved books to database", slog.Int("count", len(books)))
	return nil
}

func main() {
	var (
		catalogDir = flag.String("catalogs", "./catalogs", "Directory containing catalog .xlsx files")
		stateFile  = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel   = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun     = flag.Bool("dry-run", false, "Preview changes without modifying database")
		force      = flag.Bool("force", false, "Reprocess all catalog files")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "library"),
		getEnv("DB_PASSWORD", "library_dev_2025"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "library_catalog"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	var db *pgxpool.Pool
	var err error

	if !*dryRun {
		db, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Error("Failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
	}

	loader := NewCatalogLoader(db, logger)

	type SeederState struct {
		ProcessedFiles []string  `json:"processed_files"`
		ProcessedCount int       `json:"processed_count"`
		LastUpdate     time.Time `json:"last_update"`
	}

	var state SeederState
	if !*force {
		if stateData, err := os.ReadFile(*stateFile); err == nil {
			json.Unmarshal(stateData, &state)
		}
	}

	catalogFiles, err := filepath.Glob(filepath.Join(*catalogDir, "*.xlsx"))
	if err != nil {
		logger.Error("Failed to find catalog files", slog.String("error", err.Error()))
		os.Exit(1)
	}

	totalProcessed := 0
	totalBooks := 0
	totalCopies := 0
	failedFiles := []string{}
	successDetails := map[string]int{}

	for i, catalogFile := range catalogFiles {
		fileID := strings.TrimSuffix(filepath.Base(catalogFile), ".xlsx")

		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(catalogFiles), fileID)

		if !*force {
			processed := false
			for _, pid := range state.ProcessedFiles {
				if pid == fileID {
					processed = true
					break
				}
			}
			if processed {
				logger.Info("Skipping already processed file", slog.String("file", fileID))
				continue
			}
		}

		books, err := loader.LoadBooks(catalogFile)
		if err != nil {
			logger.Error("Failed to load catalog",
				slog.String("file", fileID),
				slog.String("error", err.Error()))
			failedFiles = append(failedFiles, fileID)
			fmt.Printf("ERROR: Failed to process file:%s - %v\n", fileID, err)
			continue
		}

		if len(books) == 0 {
			logger.Warn("No books found in catalog",
				slog.String("file", fileID))
			fmt.Printf("WARNING: No books found in file:%s\n", fileID)
			failedFiles = append(failedFiles, fmt.Sprintf("%s (0 books)", fileID))
			continue
		}

		if !*dryRun {
			if err := loader.SaveBooks(ctx, books); err != nil {
				logger.Error("Failed to save books",
					slog.String("file", fileID),
					slog.String("error", err.Error()))
				failedFiles = append(failedFiles, fileID)
				fmt.Printf("ERROR: Failed to save file:%s - %v\n", fileID, err)
				continue
			}
		}

		copies := 0
		for _, b := range books {
			copies += b.Copies
		}

		fmt.Printf("SUCCESS: Processed file:%s - %d books, %d copies\n", fileID, len(books), copies)
		successDetails[fileID] = len(books)

		totalProcessed++
		totalBooks += len(books)
		totalCopies += copies

		state.ProcessedFiles = append(state.ProcessedFiles, fileID)
		state.ProcessedCount = len(state.ProcessedFiles)
		state.LastUpdate = time.Now()

		if !*dryRun && i%10 == 0 {
			stateData, _ := json.MarshalIndent(state, "", "  ")
			os.WriteFile(*stateFile, stateData, 0644)
		}
	}

	if !*dryRun {
		stateData, _ := json.MarshalIndent(state, "", "  ")
		os.WriteFile(*stateFile, stateData, 0644)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("📚 SEEDING OPERATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total Files Processed: %d\n", totalProcessed)
	fmt.Printf("Total Books Created: %d\n", totalBooks)
	fmt.Printf("Total Copies Registered: %d\n", totalCopies)

	if len(successDetails) > 0 {
		fmt.Printf("\n✅ Successfully Processed (%d files):\n", len(successDetails))
		for f, count := range successDetails {
			fmt.Printf("  - %s: %d books\n", f, count)
		}
	}

	if len(failedFiles) > 0 {
		fmt.Printf("\n⚠️  Failed/Empty Files (%d):\n", len(failedFiles))
		for _, f := range failedFiles {
			fmt.Printf("  - %s\n", f)
		}
	}

	logger.Info("Seed operation completed",
		slog.Int("files_processed", totalProcessed),
		slog.Int("books_created", totalBooks),
		slog.Int("copies_registered", totalCopies),
		slog.Int("failed_files", len(failedFiles)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
