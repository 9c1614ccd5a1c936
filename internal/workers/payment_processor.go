// internal/workers/payment_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/library-be/internal/core/ports"
)

// PaymentProcessor runs scheduled payment maintenance
type PaymentProcessor struct {
	payments ports.PaymentService
	logger   *slog.Logger
}

// NewPaymentProcessor creates a new payment processor
func NewPaymentProcessor(payments ports.PaymentService, logger *slog.Logger) *PaymentProcessor {
	return &PaymentProcessor{
		payments: payments,
		logger:   logger.With(slog.String("processor", "payment")),
	}
}

// ExpirePending reverts pending payments whose gateway flow was abandoned
func (p *PaymentProcessor) ExpirePending(ctx context.Context, t *asynq.Task) error {
	n, err := p.payments.ExpirePendingPayments(ctx)
	if err != nil {
		return fmt.Errorf("failed to expire pending payments: %w", err)
	}

	if n > 0 {
		p.logger.InfoContext(ctx, "pending payments expired", slog.Int64("count", n))
	}

	return nil
}
