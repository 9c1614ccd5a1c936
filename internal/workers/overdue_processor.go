// internal/workers/overdue_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/library-be/internal/core/ports"
)

const overdueScanBatch = 500

// OverdueProcessor sends overdue notices for open loans past their due
// date. Each loan is notified once; the notified flag is only set after
// the notice was handed off, so a crash mid-batch re-sends at most the
// in-flight notice.
type OverdueProcessor struct {
	borrows  ports.BorrowRepository
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewOverdueProcessor creates a new overdue processor
func NewOverdueProcessor(borrows ports.BorrowRepository, notifier ports.Notifier, logger *slog.Logger) *OverdueProcessor {
	return &OverdueProcessor{
		borrows:  borrows,
		notifier: notifier,
		logger:   logger.With(slog.String("processor", "overdue")),
	}
}

// ScanOverdue finds unnotified overdue loans and dispatches notices
func (p *OverdueProcessor) ScanOverdue(ctx context.Context, t *asynq.Task) error {
	now := time.Now()

	borrows, err := p.borrows.FindOverdue(ctx, now, overdueScanBatch)
	if err != nil {
		return fmt.Errorf("failed to find overdue borrows: %w", err)
	}
	if len(borrows) == 0 {
		return nil
	}

	var notified int
	for _, borrow := range borrows {
		if err := p.notifier.LoanOverdue(ctx, borrow); err != nil {
			p.logger.WarnContext(ctx, "failed to send overdue notice",
				slog.String("borrow_id", borrow.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if err := p.borrows.MarkNotified(ctx, borrow.ID); err != nil {
			p.logger.WarnContext(ctx, "failed to mark borrow notified",
				slog.String("borrow_id", borrow.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		notified++
	}

	p.logger.InfoContext(ctx, "overdue scan completed",
		slog.Int("overdue", len(borrows)),
		slog.Int("notified", notified))

	return nil
}
