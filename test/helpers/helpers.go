// test/helpers/test_helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/library-be/internal/adapters/db"
	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	// Pull PostgreSQL image
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_library",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	// Clean up on test completion
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	// Get connection details
	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_library",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for database to be ready
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	// Run migrations
	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_library",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Circulation: config.CirculationConfig{
			LoanDays:    14,
			RenewalDays: 7,
			MaxRenewals: 2,
			FinePerDay:  "0.50",
		},
		Payment: config.PaymentConfig{
			PendingTTL: 15 * time.Minute,
		},
		FileProcessing: config.FileProcessingConfig{
			ExcelMaxSizeMB: 100,
			CoverMaxSizeMB: 10,
			TempDir:        "/tmp",
		},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret",
			JWTExpiration:     24 * time.Hour,
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestBook creates a test book with sane defaults
func CreateTestBook(overrides ...func(*domain.Book)) *domain.Book {
	book := &domain.Book{
		ID:          uuid.New(),
		Title:       "The Go Programming Language",
		Author:      "Alan A. A. Donovan",
		Description: "The authoritative resource for writing clear and idiomatic Go",
		ISBN:        "9780134190440",
		Publisher:   "Addison-Wesley",
		PublishYear: 2015,
		Category:    "technology",
		Price:       decimal.NewFromFloat(39.99),
		Quantity:    3,
		TotalCopies: 3,
		Availability: true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	for _, override := range overrides {
		override(book)
	}

	return book
}

// CreateTestBooks creates multiple test books
func CreateTestBooks(count int) []domain.Book {
	books := make([]domain.Book, count)

	categories := []string{
		"fiction",
		"science",
		"technology",
		"history",
		"children",
	}

	for i := 0; i < count; i++ {
		books[i] = *CreateTestBook(func(book *domain.Book) {
			book.Title = fmt.Sprintf("Test Book %d", i+1)
			book.ISBN = fmt.Sprintf("978000000%04d", i+1)
			book.Category = categories[i%len(categories)]
			book.Price = decimal.NewFromFloat(float64(10 + i*5))
		})
	}

	return books
}

// CreateTestCopy creates a test copy attached to a book
func CreateTestCopy(bookID uuid.UUID, n int, overrides ...func(*domain.BookCopy)) *domain.BookCopy {
	copy := &domain.BookCopy{
		ID:        uuid.New(),
		BookID:    bookID,
		Code:      domain.CopyCode(bookID, n),
		Status:    domain.CopyAvailable,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, override := range overrides {
		override(copy)
	}

	return copy
}

// CreateTestBorrow creates an open test borrow
func CreateTestBorrow(bookID, copyID uuid.UUID, overrides ...func(*domain.Borrow)) *domain.Borrow {
	now := time.Now()
	borrow := &domain.Borrow{
		ID: uuid.New(),
		User: domain.BorrowerSnapshot{
			ID:    uuid.New(),
			Name:  "Pat Reader",
			Email: "pat.reader@example.com",
		},
		BookID:     bookID,
		CopyID:     copyID,
		CopyCode:   domain.CopyCode(bookID, 1),
		Price:      decimal.NewFromFloat(39.99),
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, 14),
		Fine:       decimal.Zero,
		Payment: domain.Payment{
			Status: domain.PaymentUnpaid,
			Amount: decimal.Zero,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(borrow)
	}

	return borrow
}

// CompareBooks compares two books for testing
func CompareBooks(t *testing.T, expected, actual *domain.Book) {
	t.Helper()

	require.Equal(t, expected.Title, actual.Title)
	require.Equal(t, expected.Author, actual.Author)
	require.Equal(t, expected.Description, actual.Description)
	require.Equal(t, expected.ISBN, actual.ISBN)
	require.Equal(t, expected.Publisher, actual.Publisher)
	require.Equal(t, expected.PublishYear, actual.PublishYear)
	require.Equal(t, expected.Category, actual.Category)
	require.True(t, expected.Price.Equal(actual.Price))
	require.Equal(t, expected.Quantity, actual.Quantity)
	require.Equal(t, expected.TotalCopies, actual.TotalCopies)
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"payment_callbacks",
		"borrows",
		"book_copies",
		"books",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedTestBooks seeds the database with test books and their copies
func SeedTestBooks(t *testing.T, db *pgxpool.Pool, books []domain.Book) {
	t.Helper()

	ctx := context.Background()

	for _, book := range books {
		_, err := db.Exec(ctx, `
			INSERT INTO books (
				id, title, author, description, isbn, publisher, publish_year,
				category, price, quantity, total_copies, availability,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			book.ID, book.Title, book.Author, book.Description, book.ISBN,
			book.Publisher, book.PublishYear, book.Category, book.Price,
			book.Quantity, book.TotalCopies, book.Quantity > 0,
			book.CreatedAt, book.UpdatedAt,
		)
		require.NoError(t, err, "Failed to seed book")

		for n := 1; n <= book.TotalCopies; n++ {
			_, err := db.Exec(ctx, `
				INSERT INTO book_copies (id, book_id, code, status)
				VALUES ($1, $2, $3, $4)`,
				uuid.New(), book.ID, domain.CopyCode(book.ID, n), domain.CopyAvailable,
			)
			require.NoError(t, err, "Failed to seed copy")
		}
	}
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
