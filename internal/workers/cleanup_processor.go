// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ammerola/library-be/internal/adapters/db"
	"github.com/ammerola/library-be/internal/pkg/config"
	"github.com/hibiken/asynq"
)

// CleanupProcessor handles cleanup tasks
type CleanupProcessor struct {
	db     *db.Database
	config *config.Config
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(db *db.Database, config *config.Config, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		db:     db,
		config: config,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupOldData prunes settled callback records past the retention
// window. Records on open disputes stay because the retention interval
// is far longer than any gateway's replay horizon.
func (p *CleanupProcessor) CleanupOldData(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up old data")

	query := `DELETE FROM payment_callbacks WHERE received_at < NOW() - INTERVAL '180 days'`

	result, err := p.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to cleanup payment callbacks: %w", err)
	}

	p.logger.InfoContext(ctx, "old data cleaned up",
		slog.Int64("rows_deleted", result.RowsAffected()))

	return nil
}

// CleanupTempFiles removes old temporary files
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files")

	tempDir := p.config.FileProcessing.TempDir
	maxAge := 24 * time.Hour

	var deletedCount int
	err := filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}
