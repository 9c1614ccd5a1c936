// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ammerola/library-be/internal/adapters/db"
	"github.com/ammerola/library-be/internal/adapters/notify"
	redis_a "github.com/ammerola/library-be/internal/adapters/redis_adapter"
	"github.com/ammerola/library-be/internal/adapters/storage"
	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/services"
	"github.com/ammerola/library-be/internal/pkg/config"
	"github.com/ammerola/library-be/internal/pkg/logger"
	"github.com/ammerola/library-be/internal/workers"
)

func main() {
	// Setup logger
	slogger := logger.SetupLogger("info", "json")

	// Load configuration
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	// Initialize database
	ctx := context.Background()
	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	defer asynqClient.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	covers, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, slogger)
	if err != nil {
		slogger.Error("failed to initialize cover storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories and services
	bookRepo := db.NewBookRepository(database, slogger)
	copyRepo := db.NewCopyRepository(database, slogger)
	borrowRepo := db.NewBorrowRepository(database, slogger)

	notifier := notify.NewAsynqNotifier(asynqClient, slogger)

	finePerDay, err := decimal.NewFromString(cfg.Circulation.FinePerDay)
	if err != nil {
		slogger.Error("invalid fine per day", slog.String("value", cfg.Circulation.FinePerDay))
		os.Exit(1)
	}
	fines := domain.NewFineCalculator(finePerDay)

	catalogService := services.NewCatalogService(bookRepo, copyRepo, cache, covers, slogger)
	// The worker never initiates gateway redirects, so no gateways are
	// registered here; it only runs the pending-payment expiry sweep.
	paymentService := services.NewPaymentService(borrowRepo, nil, fines, notifier,
		services.PaymentConfig{PendingTTL: cfg.Payment.PendingTTL}, slogger)

	// Create Asynq server
	srv := asynq.NewServer(
		asynqRedisOpt,
		asynq.Config{
			Concurrency:     cfg.Asynq.Concurrency,
			Queues:          cfg.Asynq.Queues,
			StrictPriority:  cfg.Asynq.StrictPriority,
			ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
			RetryDelayFunc:  exponentialBackoff,
			ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
			HealthCheckFunc: healthCheck,
			Logger:          newAsynqLogger(slogger),
		},
	)

	// Create task handlers
	mux := asynq.NewServeMux()

	// Register book import handler
	importProcessor := workers.NewImportProcessor(catalogService, slogger)
	mux.HandleFunc(workers.TypeBookImport, importProcessor.ProcessImport)

	// Register email notification handler
	notificationProcessor := workers.NewNotificationProcessor(cfg, slogger)
	mux.HandleFunc(workers.TypeSendEmail, notificationProcessor.SendEmail)

	// Register overdue scan handler
	overdueProcessor := workers.NewOverdueProcessor(borrowRepo, notifier, slogger)
	mux.HandleFunc(workers.TypeOverdueScan, overdueProcessor.ScanOverdue)

	// Register payment expiry handler
	paymentProcessor := workers.NewPaymentProcessor(paymentService, slogger)
	mux.HandleFunc(workers.TypePaymentExpiry, paymentProcessor.ExpirePending)

	// Register cleanup handler
	cleanupProcessor := workers.NewCleanupProcessor(database, cfg, slogger)
	mux.HandleFunc(workers.TypeCleanupOldData, cleanupProcessor.CleanupOldData)
	mux.HandleFunc(workers.TypeCleanupTempFiles, cleanupProcessor.CleanupTempFiles)

	// Schedule the recurring maintenance tasks
	scheduler := asynq.NewScheduler(asynqRedisOpt, &asynq.SchedulerOpts{
		Logger: newAsynqLogger(slogger),
	})
	schedules := map[string]string{
		workers.TypeOverdueScan:      "0 8 * * *",    // daily 08:00
		workers.TypePaymentExpiry:    "*/5 * * * *",  // every 5 minutes
		workers.TypeCleanupOldData:   "0 3 * * *",    // daily 03:00
		workers.TypeCleanupTempFiles: "30 3 * * *",   // daily 03:30
	}
	for taskType, spec := range schedules {
		if _, err := scheduler.Register(spec, asynq.NewTask(taskType, nil)); err != nil {
			slogger.Error("failed to register scheduled task",
				slog.String("task", taskType),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Handle shutdown gracefully
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := scheduler.Start(); err != nil {
			slogger.Error("failed to start scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	// Wait for shutdown signal
	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Gracefully shutdown
	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
