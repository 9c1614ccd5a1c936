// internal/adapters/db/borrow_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

const borrowColumns = `id, user_id, user_name, user_email, book_id, copy_id, copy_code,
	price, borrow_date, due_date, return_date, renew_count, last_renewed_at,
	fine, notified, payment_method, payment_status, payment_amount,
	payment_transaction_id, payment_pending_at, payment_paid_at,
	created_at, updated_at`

// borrowRepository implements ports.BorrowRepository. The lifecycle
// transitions (renew, arm, confirm) each run in one transaction with the
// borrow row locked first, so concurrent calls serialize on the row.
type borrowRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewBorrowRepository creates a new borrow repository
func NewBorrowRepository(db *Database, logger *slog.Logger) ports.BorrowRepository {
	return &borrowRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "borrows")),
	}
}

// Create inserts a new borrow record
func (r *borrowRepository) Create(ctx context.Context, borrow *domain.Borrow) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO borrows (id, user_id, user_name, user_email, book_id, copy_id, copy_code,
			price, borrow_date, due_date, return_date, renew_count, last_renewed_at,
			fine, notified, payment_method, payment_status, payment_amount,
			payment_transaction_id, payment_pending_at, payment_paid_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23)`,
		borrow.ID, borrow.User.ID, borrow.User.Name, borrow.User.Email,
		borrow.BookID, borrow.CopyID, borrow.CopyCode,
		borrow.Price, borrow.BorrowDate, borrow.DueDate, borrow.ReturnDate,
		borrow.RenewCount, borrow.LastRenewedAt,
		borrow.Fine, borrow.Notified,
		borrow.Payment.Method, borrow.Payment.Status, borrow.Payment.Amount,
		nullString(borrow.Payment.TransactionID), borrow.Payment.PendingAt, borrow.Payment.PaidAt,
		borrow.CreatedAt, borrow.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert borrow: %w", err)
	}

	r.logger.DebugContext(ctx, "borrow created",
		slog.String("borrow_id", borrow.ID.String()),
		slog.String("copy_code", borrow.CopyCode))

	return nil
}

// FindByID retrieves a borrow by ID
func (r *borrowRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Borrow, error) {
	row := r.db.QueryRow(ctx, `SELECT `+borrowColumns+` FROM borrows WHERE id = $1`, id)
	borrow, err := scanBorrow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBorrowNotFound
		}
		return nil, fmt.Errorf("failed to find borrow: %w", err)
	}
	return borrow, nil
}

// FindOpenByCopy retrieves the open loan on a copy, if any
func (r *borrowRepository) FindOpenByCopy(ctx context.Context, copyID uuid.UUID) (*domain.Borrow, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+borrowColumns+` FROM borrows WHERE copy_id = $1 AND return_date IS NULL`, copyID)
	borrow, err := scanBorrow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBorrowNotFound
		}
		return nil, fmt.Errorf("failed to find open borrow: %w", err)
	}
	return borrow, nil
}

// FindByTransactionID resolves the borrow a gateway callback refers to
func (r *borrowRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Borrow, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+borrowColumns+` FROM borrows WHERE payment_transaction_id = $1`, transactionID)
	borrow, err := scanBorrow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTransaction, transactionID)
		}
		return nil, fmt.Errorf("failed to find borrow by transaction: %w", err)
	}
	return borrow, nil
}

// List retrieves borrows matching the query along with the total count
func (r *borrowRepository) List(ctx context.Context, q ports.BorrowQuery) ([]*domain.Borrow, int64, error) {
	base := psql.Select().From("borrows")
	if q.UserID != uuid.Nil {
		base = base.Where(sq.Eq{"user_id": q.UserID})
	}
	if q.BookID != uuid.Nil {
		base = base.Where(sq.Eq{"book_id": q.BookID})
	}
	if q.Open != nil {
		if *q.Open {
			base = base.Where("return_date IS NULL")
		} else {
			base = base.Where("return_date IS NOT NULL")
		}
	}
	if q.Overdue != nil && *q.Overdue {
		base = base.Where("return_date IS NULL AND due_date < NOW()")
	}

	countSQL, countArgs, err := base.Column("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count borrows: %w", err)
	}

	listSQL, listArgs, err := base.Column(borrowColumns).
		OrderBy(orderClause(q.SortBy, q.SortOrder, map[string]string{
			"borrow_date": "borrow_date",
			"due_date":    "due_date",
			"return_date": "return_date",
			"created_at":  "created_at",
		}, "borrow_date DESC")).
		Limit(uint64(q.PageSize)).
		Offset(uint64((q.Page - 1) * q.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query borrows: %w", err)
	}
	defer rows.Close()

	var borrows []*domain.Borrow
	for rows.Next() {
		borrow, err := scanBorrow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan borrow: %w", err)
		}
		borrows = append(borrows, borrow)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating borrows: %w", err)
	}

	return borrows, total, nil
}

// Renew extends the due date under the renewal policy, all inside one
// transaction with the row locked.
func (r *borrowRepository) Renew(ctx context.Context, id uuid.UUID, extension time.Duration, maxRenewals int, now time.Time) (*domain.Borrow, error) {
	var renewed *domain.Borrow

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		borrow, err := lockBorrow(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := borrow.CanRenew(now, maxRenewals); err != nil {
			return err
		}
		borrow.Renew(extension, now)

		_, err = tx.Exec(ctx,
			`UPDATE borrows
			 SET due_date = $2, renew_count = $3, last_renewed_at = $4, updated_at = $4
			 WHERE id = $1`,
			id, borrow.DueDate, borrow.RenewCount, now)
		if err != nil {
			return fmt.Errorf("failed to update borrow: %w", err)
		}

		renewed = borrow
		return nil
	})
	if err != nil {
		return nil, err
	}

	return renewed, nil
}

// ArmPayment moves the payment to pending, fixing method, amount and
// transaction id. Re-arming an already pending payment is allowed so a
// borrower can retry an abandoned gateway flow before the TTL expires.
func (r *borrowRepository) ArmPayment(ctx context.Context, id uuid.UUID, method domain.PaymentMethod, amount decimal.Decimal, transactionID string, now time.Time) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		borrow, err := lockBorrow(ctx, tx, id)
		if err != nil {
			return err
		}

		if !borrow.IsOpen() {
			return domain.ErrBorrowClosed
		}
		if borrow.Payment.Status == domain.PaymentPaid {
			return domain.ErrAlreadyPaid
		}

		_, err = tx.Exec(ctx,
			`UPDATE borrows
			 SET payment_method = $2, payment_status = $3, payment_amount = $4,
			     payment_transaction_id = $5, payment_pending_at = $6, updated_at = $6
			 WHERE id = $1`,
			id, method, domain.PaymentPending, amount, nullString(transactionID), now)
		if err != nil {
			return fmt.Errorf("failed to arm payment: %w", err)
		}

		return nil
	})
}

// ConfirmReturn settles the armed payment and, on success, closes the
// loan and releases the copy, all in one transaction. For gateway
// callbacks the transaction id is recorded in payment_callbacks inside
// the same transaction, which is what makes replays no-ops: the second
// delivery sees the recorded outcome and changes nothing.
func (r *borrowRepository) ConfirmReturn(ctx context.Context, p ports.ConfirmReturnParams) (bool, error) {
	applied := false

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		borrow, err := lockBorrow(ctx, tx, p.BorrowID)
		if err != nil {
			return err
		}

		if p.TransactionID != "" {
			replay, err := recordCallback(ctx, tx, p)
			if err != nil {
				return err
			}
			if replay {
				return nil
			}
			if borrow.Payment.TransactionID != p.TransactionID {
				return fmt.Errorf("%w: %s", domain.ErrUnknownTransaction, p.TransactionID)
			}
		}

		if !borrow.IsOpen() {
			if borrow.Payment.Status == domain.PaymentPaid && p.Outcome == domain.OutcomeSuccess {
				// Duplicate confirmation of a settled return.
				return nil
			}
			return domain.ErrBorrowClosed
		}
		if borrow.Payment.Status != domain.PaymentPending {
			return fmt.Errorf("%w: payment is %s", domain.ErrNotPending, borrow.Payment.Status)
		}

		if p.Outcome == domain.OutcomeFailure {
			// The loan stays open; the borrower retries from failed.
			_, err = tx.Exec(ctx,
				`UPDATE borrows SET payment_status = $2, updated_at = $3 WHERE id = $1`,
				p.BorrowID, domain.PaymentFailed, p.ReturnedAt)
			if err != nil {
				return fmt.Errorf("failed to mark payment failed: %w", err)
			}
			applied = true
			return nil
		}

		_, err = tx.Exec(ctx,
			`UPDATE borrows
			 SET payment_status = $2, payment_paid_at = $3,
			     return_date = $3, fine = $4, updated_at = $3
			 WHERE id = $1`,
			p.BorrowID, domain.PaymentPaid, p.ReturnedAt, p.Fine)
		if err != nil {
			return fmt.Errorf("failed to close borrow: %w", err)
		}

		if err := releaseCopyInTx(ctx, tx, borrow.CopyID); err != nil {
			return fmt.Errorf("failed to release copy: %w", err)
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		r.logger.InfoContext(ctx, "return confirmed",
			slog.String("borrow_id", p.BorrowID.String()),
			slog.String("outcome", string(p.Outcome)))
	}

	return applied, nil
}

// RevertExpiredPayments flips stale pending payments on open loans back
// to unpaid so abandoned gateway flows don't wedge their loans.
func (r *borrowRepository) RevertExpiredPayments(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE borrows
		 SET payment_status = $1, payment_transaction_id = NULL,
		     payment_pending_at = NULL, updated_at = NOW()
		 WHERE payment_status = $2 AND return_date IS NULL AND payment_pending_at < $3`,
		domain.PaymentUnpaid, domain.PaymentPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to revert expired payments: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FindOverdue lists open, unnotified loans past due as of the given instant
func (r *borrowRepository) FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]*domain.Borrow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+borrowColumns+` FROM borrows
		 WHERE return_date IS NULL AND due_date < $1 AND notified = false
		 ORDER BY due_date
		 LIMIT $2`,
		asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue borrows: %w", err)
	}
	defer rows.Close()

	var borrows []*domain.Borrow
	for rows.Next() {
		borrow, err := scanBorrow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrow: %w", err)
		}
		borrows = append(borrows, borrow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating borrows: %w", err)
	}

	return borrows, nil
}

// MarkNotified flags a borrow as having had its overdue notice sent
func (r *borrowRepository) MarkNotified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE borrows SET notified = true, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark borrow notified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBorrowNotFound
	}
	return nil
}

// lockBorrow fetches a borrow row FOR UPDATE inside tx
func lockBorrow(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Borrow, error) {
	row := tx.QueryRow(ctx, `SELECT `+borrowColumns+` FROM borrows WHERE id = $1 FOR UPDATE`, id)
	borrow, err := scanBorrow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBorrowNotFound
		}
		return nil, fmt.Errorf("failed to lock borrow: %w", err)
	}
	return borrow, nil
}

// recordCallback inserts the callback record for a gateway transaction.
// It reports replay=true when the same transaction id already arrived
// with the same outcome, and fails with ErrConflictingCallback when the
// recorded outcome differs.
func recordCallback(ctx context.Context, tx pgx.Tx, p ports.ConfirmReturnParams) (bool, error) {
	var recorded domain.PaymentOutcome
	err := tx.QueryRow(ctx,
		`SELECT outcome FROM payment_callbacks WHERE transaction_id = $1`,
		p.TransactionID).Scan(&recorded)
	if err == nil {
		if recorded == p.Outcome {
			return true, nil
		}
		return false, fmt.Errorf("%w: transaction %s recorded %s, got %s",
			domain.ErrConflictingCallback, p.TransactionID, recorded, p.Outcome)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("failed to check callback record: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO payment_callbacks (transaction_id, borrow_id, outcome, received_at)
		 VALUES ($1, $2, $3, $4)`,
		p.TransactionID, p.BorrowID, p.Outcome, p.ReturnedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record callback: %w", err)
	}

	return false, nil
}

// scanBorrow scans a borrow row in borrowColumns order
func scanBorrow(row pgx.Row) (*domain.Borrow, error) {
	var b domain.Borrow
	var copyCode, transactionID *string
	err := row.Scan(
		&b.ID, &b.User.ID, &b.User.Name, &b.User.Email, &b.BookID, &b.CopyID, &copyCode,
		&b.Price, &b.BorrowDate, &b.DueDate, &b.ReturnDate, &b.RenewCount, &b.LastRenewedAt,
		&b.Fine, &b.Notified, &b.Payment.Method, &b.Payment.Status, &b.Payment.Amount,
		&transactionID, &b.Payment.PendingAt, &b.Payment.PaidAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.CopyCode = deref(copyCode)
	b.Payment.TransactionID = deref(transactionID)
	return &b, nil
}
