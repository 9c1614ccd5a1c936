// internal/adapters/notify/notifier.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
	"github.com/ammerola/library-be/internal/workers"
)

// AsynqNotifier implements ports.Notifier by enqueuing email tasks for
// the worker. Enqueue failures bubble up so callers can log them, but
// never affect the transaction that triggered the notification.
type AsynqNotifier struct {
	client *asynq.Client
	logger *slog.Logger
}

// Statically assert that *AsynqNotifier implements the Notifier interface.
var _ ports.Notifier = (*AsynqNotifier)(nil)

// NewAsynqNotifier creates a new asynq-backed notifier
func NewAsynqNotifier(client *asynq.Client, logger *slog.Logger) *AsynqNotifier {
	return &AsynqNotifier{
		client: client,
		logger: logger.With(slog.String("component", "notifier")),
	}
}

// LoanCreated notifies the borrower that their loan is open
func (n *AsynqNotifier) LoanCreated(ctx context.Context, borrow *domain.Borrow) error {
	return n.enqueue(ctx, workers.EmailPayload{
		To:      borrow.User.Email,
		Subject: fmt.Sprintf("Borrow confirmed: %s", borrow.CopyCode),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour borrow is confirmed. Copy %s is due back on %s.\n",
			borrow.User.Name, borrow.CopyCode, borrow.DueDate.Format("Monday, 2 Jan 2006")),
	})
}

// LoanOverdue notifies the borrower that their loan is past due
func (n *AsynqNotifier) LoanOverdue(ctx context.Context, borrow *domain.Borrow) error {
	return n.enqueue(ctx, workers.EmailPayload{
		To:      borrow.User.Email,
		Subject: fmt.Sprintf("Overdue notice: %s", borrow.CopyCode),
		Body: fmt.Sprintf(
			"Hi %s,\n\nCopy %s was due on %s. Please return it as soon as possible; a late fine accrues per day.\n",
			borrow.User.Name, borrow.CopyCode, borrow.DueDate.Format("Monday, 2 Jan 2006")),
	})
}

// PaymentConfirmed notifies the borrower that their return is settled
func (n *AsynqNotifier) PaymentConfirmed(ctx context.Context, borrow *domain.Borrow) error {
	return n.enqueue(ctx, workers.EmailPayload{
		To:      borrow.User.Email,
		Subject: fmt.Sprintf("Return settled: %s", borrow.CopyCode),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour return of copy %s is settled. Amount paid: %s (fine: %s).\n",
			borrow.User.Name, borrow.CopyCode, borrow.Payment.Amount.String(), borrow.Fine.String()),
	})
}

func (n *AsynqNotifier) enqueue(ctx context.Context, payload workers.EmailPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	info, err := n.client.EnqueueContext(ctx, asynq.NewTask(workers.TypeSendEmail, data),
		asynq.Queue("default"), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}

	n.logger.DebugContext(ctx, "email task enqueued",
		slog.String("task_id", info.ID),
		slog.String("to", payload.To))

	return nil
}
