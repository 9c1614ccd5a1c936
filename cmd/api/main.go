// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ammerola/library-be/internal/adapters/db"
	"github.com/ammerola/library-be/internal/adapters/gateway"
	"github.com/ammerola/library-be/internal/adapters/notify"
	redis_a "github.com/ammerola/library-be/internal/adapters/redis_adapter"
	"github.com/ammerola/library-be/internal/adapters/storage"
	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
	"github.com/ammerola/library-be/internal/core/services"
	"github.com/ammerola/library-be/internal/handlers"
	"github.com/ammerola/library-be/internal/handlers/middleware"
	"github.com/ammerola/library-be/internal/pkg/config"
	"github.com/ammerola/library-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	// Initialize structured logger
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting library management system",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	// Load configuration
	slogger.Info("loading configuration")
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	// Initialize dependencies
	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	// Run database migrations if enabled
	if cfg.App.Environment != "production" {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			// Don't exit in development, just warn
		}
	}

	// Setup HTTP server
	server := setupHTTPServer(cfg, deps, slogger)

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		if deps.asynqClient != nil {
			if err := deps.asynqClient.Close(); err != nil {
				slogger.Error("failed to close Asynq client", slog.String("error", err.Error()))
			}
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	redisCache     ports.CacheRepository
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	catalogService     *services.CatalogService
	circulationService *services.CirculationService
	paymentService     *services.PaymentService

	catalogHandler   *handlers.CatalogHandler
	borrowHandler    *handlers.BorrowHandler
	healthHandler    *handlers.HealthHandler
	dashboardHandler *handlers.DashboardHandler
	exportHandler    *handlers.ExportHandler
	importHandler    *handlers.ImportHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	// Initialize database connection
	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	// Initialize Redis client
	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		ConnMaxLifetime: cfg.Redis.MaxConnAge,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		ConnMaxIdleTime: cfg.Redis.IdleTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient
	deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

	// Initialize Asynq client
	logger.Info("initializing Asynq client")

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	// Initialize cover storage
	covers, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cover storage: %w", err)
	}

	// Initialize repositories
	bookRepo := db.NewBookRepository(database, logger)
	copyRepo := db.NewCopyRepository(database, logger)
	borrowRepo := db.NewBorrowRepository(database, logger)

	// Initialize notifier and payment gateways
	notifier := notify.NewAsynqNotifier(deps.asynqClient, logger)

	vnpay := gateway.NewVNPay(gateway.VNPayConfig{
		TmnCode:    cfg.Payment.VNPayTmnCode,
		HashSecret: cfg.Payment.VNPayHashSecret,
		PayURL:     cfg.Payment.VNPayPayURL,
		ReturnURL:  cfg.Payment.VNPayReturnURL,
	}, logger)

	zalopay := gateway.NewZaloPay(gateway.ZaloPayConfig{
		AppID:       cfg.Payment.ZaloPayAppID,
		Key1:        cfg.Payment.ZaloPayKey1,
		Key2:        cfg.Payment.ZaloPayKey2,
		CreateURL:   cfg.Payment.ZaloPayCreateURL,
		CallbackURL: cfg.Payment.ZaloPayCallbackURL,
	}, logger)

	finePerDay, err := decimal.NewFromString(cfg.Circulation.FinePerDay)
	if err != nil {
		return nil, fmt.Errorf("invalid fine per day %q: %w", cfg.Circulation.FinePerDay, err)
	}
	fines := domain.NewFineCalculator(finePerDay)

	// Initialize services
	deps.catalogService = services.NewCatalogService(bookRepo, copyRepo, deps.redisCache, covers, logger)
	deps.circulationService = services.NewCirculationService(bookRepo, copyRepo, borrowRepo, notifier,
		services.CirculationConfig{
			LoanDays:    cfg.Circulation.LoanDays,
			RenewalDays: cfg.Circulation.RenewalDays,
			MaxRenewals: cfg.Circulation.MaxRenewals,
		}, logger)
	deps.paymentService = services.NewPaymentService(borrowRepo,
		[]ports.PaymentGateway{vnpay, zalopay}, fines, notifier,
		services.PaymentConfig{PendingTTL: cfg.Payment.PendingTTL}, logger)

	// Initialize handlers
	deps.catalogHandler = handlers.NewCatalogHandler(deps.catalogService, logger)
	deps.borrowHandler = handlers.NewBorrowHandler(deps.circulationService, deps.paymentService,
		borrowRepo, vnpay, zalopay, logger)
	deps.healthHandler = handlers.NewHealthHandler(
		database,
		redisClient,
		deps.asynqInspector,
		cfg,
		logger,
	)
	deps.dashboardHandler = handlers.NewDashboardHandler(database, deps.redisCache, logger)
	deps.exportHandler = handlers.NewExportHandler(database, deps.redisCache, logger)

	maxFileSize := int64(cfg.FileProcessing.ExcelMaxSizeMB * 1024 * 1024)
	deps.importHandler = handlers.NewImportHandler(deps.asynqClient, logger, maxFileSize, cfg.FileProcessing.TempDir)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	// Setup middleware chain
	var handler http.Handler = mux

	// Apply middleware in reverse order (innermost first)
	if cfg.App.Environment != "test" {
		handler = middleware.RequestID(handler)
		handler = middleware.Logger(logger)(handler)
		handler = middleware.Recovery(logger)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	registerRoutes(mux, deps, cfg)

	server := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return server
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	// Health and readiness endpoints
	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)
	}

	// Book catalog endpoints
	mux.HandleFunc("GET "+apiV1+"/books/{id}", deps.catalogHandler.GetBook)
	mux.HandleFunc("GET "+apiV1+"/books", deps.catalogHandler.ListBooks)
	mux.HandleFunc("POST "+apiV1+"/books", deps.catalogHandler.CreateBook)
	mux.HandleFunc("PUT "+apiV1+"/books/{id}", deps.catalogHandler.UpdateBook)
	mux.HandleFunc("DELETE "+apiV1+"/books/{id}", deps.catalogHandler.DeleteBook)
	mux.HandleFunc("POST "+apiV1+"/books/{id}/restore", deps.catalogHandler.RestoreBook)
	mux.HandleFunc("POST "+apiV1+"/books/{id}/cover", deps.catalogHandler.UploadCover)

	// Copy registry endpoints
	mux.HandleFunc("POST "+apiV1+"/books/{id}/copies", deps.catalogHandler.AddCopies)
	mux.HandleFunc("GET "+apiV1+"/books/{id}/copies", deps.catalogHandler.ListCopies)
	mux.HandleFunc("PATCH "+apiV1+"/copies/{id}", deps.catalogHandler.UpdateCopy)

	// Borrow lifecycle endpoints
	mux.HandleFunc("POST "+apiV1+"/borrows", deps.borrowHandler.CreateBorrow)
	mux.HandleFunc("GET "+apiV1+"/borrows", deps.borrowHandler.ListBorrows)
	mux.HandleFunc("GET "+apiV1+"/borrows/{id}", deps.borrowHandler.GetBorrow)
	mux.HandleFunc("POST "+apiV1+"/borrows/{id}/renew", deps.borrowHandler.RenewBorrow)
	mux.HandleFunc("POST "+apiV1+"/borrows/{id}/return", deps.borrowHandler.PrepareReturn)
	mux.HandleFunc("POST "+apiV1+"/borrows/{id}/return/confirm", deps.borrowHandler.ConfirmCashReturn)

	// Payment gateway callbacks
	mux.HandleFunc("GET "+apiV1+"/payments/vnpay/callback", deps.borrowHandler.VNPayCallback)
	mux.HandleFunc("POST "+apiV1+"/payments/zalopay/callback", deps.borrowHandler.ZaloPayCallback)

	// Import endpoints
	mux.HandleFunc("POST "+apiV1+"/import/books", deps.importHandler.ImportBooks)

	// Export endpoints
	mux.HandleFunc("GET "+apiV1+"/export/excel", deps.exportHandler.ExportExcel)
	mux.HandleFunc("GET "+apiV1+"/export/json", deps.exportHandler.ExportJSON)

	// Dashboard endpoints
	mux.HandleFunc("GET "+apiV1+"/dashboard", deps.dashboardHandler.GetDashboard)

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.HandlerFunc(http.DefaultServeMux.ServeHTTP))
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
