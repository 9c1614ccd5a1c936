// internal/core/services/payment.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

// PaymentConfig holds the return/payment policy knobs
type PaymentConfig struct {
	PendingTTL time.Duration
}

// PaymentService implements the two-phase return protocol. Gateways are
// dispatched through an explicit per-method table so an unregistered
// method can never slip past validation into a pending payment.
type PaymentService struct {
	borrows  ports.BorrowRepository
	gateways map[domain.PaymentMethod]ports.PaymentGateway
	fines    domain.FineCalculator
	notifier ports.Notifier
	cfg      PaymentConfig
	logger   *slog.Logger
}

// Statically assert that *PaymentService implements the PaymentService interface.
var _ ports.PaymentService = (*PaymentService)(nil)

// NewPaymentService creates a new payment service
func NewPaymentService(borrows ports.BorrowRepository, gateways []ports.PaymentGateway,
	fines domain.FineCalculator, notifier ports.Notifier, cfg PaymentConfig,
	logger *slog.Logger) *PaymentService {
	table := make(map[domain.PaymentMethod]ports.PaymentGateway, len(gateways))
	for _, g := range gateways {
		table[g.Method()] = g
	}
	return &PaymentService{
		borrows:  borrows,
		gateways: table,
		fines:    fines,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With(slog.String("service", "payment")),
	}
}

// PrepareReturn computes the amount due (price + fine as of now), arms
// the payment and, for redirect methods, obtains the gateway URL the
// borrower completes the payment at.
func (s *PaymentService) PrepareReturn(ctx context.Context, borrowID uuid.UUID, method domain.PaymentMethod) (*ports.PaymentIntent, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMethod, method)
	}

	var gateway ports.PaymentGateway
	if method.Redirect() {
		g, ok := s.gateways[method]
		if !ok {
			return nil, fmt.Errorf("%w: no gateway registered for %q", domain.ErrUnsupportedMethod, method)
		}
		gateway = g
	}

	borrow, err := s.borrows.FindByID(ctx, borrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get borrow: %w", err)
	}
	if !borrow.IsOpen() {
		return nil, domain.ErrBorrowClosed
	}
	if borrow.Payment.Status == domain.PaymentPaid {
		return nil, domain.ErrAlreadyPaid
	}

	now := time.Now()
	amount := borrow.Price.Add(s.fines.Calculate(borrow.DueDate, now))

	var transactionID string
	if method.Redirect() {
		transactionID = uuid.NewString()
	}

	if err := s.borrows.ArmPayment(ctx, borrowID, method, amount, transactionID, now); err != nil {
		return nil, fmt.Errorf("failed to arm payment: %w", err)
	}

	intent := &ports.PaymentIntent{
		BorrowID:      borrowID,
		Method:        method,
		Amount:        amount,
		TransactionID: transactionID,
	}

	if gateway != nil {
		url, err := gateway.CreatePaymentURL(ctx, ports.PaymentOrder{
			BorrowID:      borrowID,
			TransactionID: transactionID,
			Amount:        amount,
			Description:   fmt.Sprintf("Library return %s", borrowID),
		})
		if err != nil {
			// The payment stays pending; the expiry sweep reverts it
			// if the borrower never retries.
			return nil, fmt.Errorf("failed to create gateway payment: %w", err)
		}
		intent.RedirectURL = url
	}

	s.logger.InfoContext(ctx, "return prepared",
		slog.String("borrow_id", borrowID.String()),
		slog.String("method", string(method)),
		slog.String("amount", amount.String()))

	return intent, nil
}

// ConfirmCashReturn settles a cash payment and closes the loan. It is
// idempotent: confirming an already-settled return reports success
// without re-applying any side effect.
func (s *PaymentService) ConfirmCashReturn(ctx context.Context, borrowID uuid.UUID) (*domain.Borrow, error) {
	borrow, err := s.borrows.FindByID(ctx, borrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get borrow: %w", err)
	}
	if !borrow.IsOpen() && borrow.Payment.Status == domain.PaymentPaid {
		// Duplicate confirmation of a completed return.
		return borrow, nil
	}

	now := time.Now()
	applied, err := s.borrows.ConfirmReturn(ctx, ports.ConfirmReturnParams{
		BorrowID:   borrowID,
		Outcome:    domain.OutcomeSuccess,
		ReturnedAt: now,
		Fine:       s.fines.Calculate(borrow.DueDate, now),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm cash return: %w", err)
	}

	borrow, err = s.borrows.FindByID(ctx, borrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload borrow: %w", err)
	}

	if applied {
		s.logger.InfoContext(ctx, "cash return confirmed",
			slog.String("borrow_id", borrowID.String()),
			slog.String("fine", borrow.Fine.String()))

		if err := s.notifier.PaymentConfirmed(ctx, borrow); err != nil {
			s.logger.WarnContext(ctx, "failed to notify payment confirmed",
				slog.String("borrow_id", borrowID.String()),
				slog.String("error", err.Error()))
		}
	}

	return borrow, nil
}

// ConfirmGatewayReturn processes an asynchronous gateway callback. The
// transaction id is the idempotency key: a replay with the same outcome
// is a no-op, a replay with a different outcome is rejected as a
// conflict and left for manual reconciliation.
func (s *PaymentService) ConfirmGatewayReturn(ctx context.Context, borrowID uuid.UUID, transactionID string, outcome domain.PaymentOutcome) error {
	borrow, err := s.borrows.FindByID(ctx, borrowID)
	if err != nil {
		return fmt.Errorf("failed to get borrow: %w", err)
	}

	now := time.Now()
	applied, err := s.borrows.ConfirmReturn(ctx, ports.ConfirmReturnParams{
		BorrowID:      borrowID,
		TransactionID: transactionID,
		Outcome:       outcome,
		ReturnedAt:    now,
		Fine:          s.fines.Calculate(borrow.DueDate, now),
	})
	if err != nil {
		if domain.IsConflict(err) {
			s.logger.ErrorContext(ctx, "gateway callback anomaly",
				slog.String("borrow_id", borrowID.String()),
				slog.String("transaction_id", transactionID),
				slog.String("outcome", string(outcome)),
				slog.String("error", err.Error()))
		}
		return fmt.Errorf("failed to confirm gateway return: %w", err)
	}

	if !applied {
		s.logger.InfoContext(ctx, "gateway callback replayed, no-op",
			slog.String("borrow_id", borrowID.String()),
			slog.String("transaction_id", transactionID))
		return nil
	}

	s.logger.InfoContext(ctx, "gateway return processed",
		slog.String("borrow_id", borrowID.String()),
		slog.String("transaction_id", transactionID),
		slog.String("outcome", string(outcome)))

	if outcome == domain.OutcomeSuccess {
		if borrow, err = s.borrows.FindByID(ctx, borrowID); err == nil {
			if err := s.notifier.PaymentConfirmed(ctx, borrow); err != nil {
				s.logger.WarnContext(ctx, "failed to notify payment confirmed",
					slog.String("borrow_id", borrowID.String()),
					slog.String("error", err.Error()))
			}
		}
	}

	return nil
}

// ExpirePendingPayments reverts payments that have sat pending longer
// than the configured TTL back to unpaid, unsticking their loans. It is
// invoked by the scheduler, never by request handlers.
func (s *PaymentService) ExpirePendingPayments(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.cfg.PendingTTL)

	n, err := s.borrows.RevertExpiredPayments(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to revert expired payments: %w", err)
	}

	if n > 0 {
		s.logger.InfoContext(ctx, "expired pending payments reverted",
			slog.Int64("count", n),
			slog.Time("cutoff", cutoff))
	}

	return n, nil
}
