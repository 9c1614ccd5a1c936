// internal/handlers/borrow.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ammerola/library-be/internal/adapters/gateway"
	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

// BorrowHandler handles loan lifecycle and return payment endpoints
type BorrowHandler struct {
	circulation ports.CirculationService
	payments    ports.PaymentService
	borrows     ports.BorrowRepository
	vnpay       *gateway.VNPay
	zalopay     *gateway.ZaloPay
	logger      *slog.Logger
}

// NewBorrowHandler creates a new borrow handler
func NewBorrowHandler(circulation ports.CirculationService, payments ports.PaymentService,
	borrows ports.BorrowRepository, vnpay *gateway.VNPay, zalopay *gateway.ZaloPay,
	logger *slog.Logger) *BorrowHandler {
	return &BorrowHandler{
		circulation: circulation,
		payments:    payments,
		borrows:     borrows,
		vnpay:       vnpay,
		zalopay:     zalopay,
		logger:      logger.With(slog.String("handler", "borrow")),
	}
}

// CreateBorrow handles POST /api/v1/borrows
func (h *BorrowHandler) CreateBorrow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateBorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	borrow, err := h.circulation.Borrow(ctx, ports.BorrowRequest{
		BookID: req.BookID,
		Borrower: domain.BorrowerSnapshot{
			ID:    req.UserID,
			Name:  req.UserName,
			Email: req.UserEmail,
		},
		Days: req.Days,
	})
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			h.respondError(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, domain.ErrNoCopyAvailable):
			h.respondError(w, http.StatusConflict, "No copy available for this book")
		case errors.Is(err, domain.ErrBookDeleted):
			h.respondError(w, http.StatusConflict, "Book is deleted")
		default:
			h.logger.ErrorContext(ctx, "failed to create borrow",
				slog.String("book_id", req.BookID.String()),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to create borrow")
		}
		return
	}

	h.logger.InfoContext(ctx, "borrow created",
		slog.String("borrow_id", borrow.ID.String()),
		slog.String("copy_code", borrow.CopyCode))

	h.respondJSON(w, http.StatusCreated, borrow)
}

// GetBorrow handles GET /api/v1/borrows/{id}
func (h *BorrowHandler) GetBorrow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	borrowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid borrow ID format")
		return
	}

	borrow, err := h.circulation.GetBorrow(ctx, borrowID)
	if err != nil {
		if domain.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "Borrow not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get borrow",
			slog.String("borrow_id", borrowID.String()),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve borrow")
		return
	}

	h.respondJSON(w, http.StatusOK, borrow)
}

// ListBorrows handles GET /api/v1/borrows
func (h *BorrowHandler) ListBorrows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := h.parseBorrowQuery(r)

	page, err := h.circulation.ListBorrows(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list borrows",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list borrows")
		return
	}

	h.respondJSON(w, http.StatusOK, page)
}

// RenewBorrow handles POST /api/v1/borrows/{id}/renew
func (h *BorrowHandler) RenewBorrow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	borrowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid borrow ID format")
		return
	}

	borrow, err := h.circulation.Renew(ctx, borrowID)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			h.respondError(w, http.StatusNotFound, "Borrow not found")
		case errors.Is(err, domain.ErrBorrowClosed):
			h.respondError(w, http.StatusConflict, "Borrow is already closed")
		case errors.Is(err, domain.ErrOverdue):
			h.respondError(w, http.StatusConflict, "Overdue loans cannot be renewed")
		case errors.Is(err, domain.ErrRenewalLimit):
			h.respondError(w, http.StatusConflict, "Renewal limit reached")
		default:
			h.logger.ErrorContext(ctx, "failed to renew borrow",
				slog.String("borrow_id", borrowID.String()),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to renew borrow")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, borrow)
}

// PrepareReturn handles POST /api/v1/borrows/{id}/return. It computes
// the amount due, arms the payment and, for gateway methods, returns
// the redirect URL the borrower completes the payment at.
func (h *BorrowHandler) PrepareReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	borrowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid borrow ID format")
		return
	}

	var req PrepareReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	intent, err := h.payments.PrepareReturn(ctx, borrowID, domain.PaymentMethod(req.Method))
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			h.respondError(w, http.StatusNotFound, "Borrow not found")
		case errors.Is(err, domain.ErrUnsupportedMethod):
			h.respondError(w, http.StatusBadRequest, "Unsupported payment method")
		case errors.Is(err, domain.ErrBorrowClosed):
			h.respondError(w, http.StatusConflict, "Borrow is already closed")
		case errors.Is(err, domain.ErrAlreadyPaid):
			h.respondError(w, http.StatusConflict, "Return is already paid")
		default:
			h.logger.ErrorContext(ctx, "failed to prepare return",
				slog.String("borrow_id", borrowID.String()),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to prepare return")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, intent)
}

// ConfirmCashReturn handles POST /api/v1/borrows/{id}/return/confirm.
// Only cash settlements confirm through this endpoint; gateway methods
// settle through their callback.
func (h *BorrowHandler) ConfirmCashReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	borrowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid borrow ID format")
		return
	}

	borrow, err := h.payments.ConfirmCashReturn(ctx, borrowID)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			h.respondError(w, http.StatusNotFound, "Borrow not found")
		case errors.Is(err, domain.ErrNotPending):
			h.respondError(w, http.StatusConflict, "Return has not been prepared")
		case errors.Is(err, domain.ErrBorrowClosed):
			h.respondError(w, http.StatusConflict, "Borrow is already closed")
		default:
			h.logger.ErrorContext(ctx, "failed to confirm cash return",
				slog.String("borrow_id", borrowID.String()),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to confirm return")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, borrow)
}

// VNPayCallback handles GET /api/v1/payments/vnpay/callback. VNPay
// retries this IPN until it receives RspCode 00, so every recognized
// replay must answer success.
func (h *BorrowHandler) VNPayCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transactionID, outcome, err := h.vnpay.VerifyCallback(r.URL.Query())
	if err != nil {
		h.logger.WarnContext(ctx, "vnpay callback rejected",
			slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusOK, map[string]string{
			"RspCode": "97", "Message": "Invalid signature",
		})
		return
	}

	if err := h.settleGatewayCallback(r, transactionID, outcome); err != nil {
		if errors.Is(err, domain.ErrUnknownTransaction) {
			h.respondJSON(w, http.StatusOK, map[string]string{
				"RspCode": "01", "Message": "Order not found",
			})
			return
		}
		h.logger.ErrorContext(ctx, "vnpay callback failed",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusOK, map[string]string{
			"RspCode": "99", "Message": "Unknown error",
		})
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"RspCode": "00", "Message": "Confirm Success",
	})
}

// ZaloPayCallback handles POST /api/v1/payments/zalopay/callback
func (h *BorrowHandler) ZaloPayCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ZaloPayCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transactionID, outcome, err := h.zalopay.VerifyCallback(req.Data, req.MAC)
	if err != nil {
		h.logger.WarnContext(ctx, "zalopay callback rejected",
			slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"return_code": -1, "return_message": "mac not equal",
		})
		return
	}

	if err := h.settleGatewayCallback(r, transactionID, outcome); err != nil {
		h.logger.ErrorContext(ctx, "zalopay callback failed",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"return_code": 0, "return_message": "retry later",
		})
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"return_code": 1, "return_message": "success",
	})
}

// settleGatewayCallback resolves the borrow behind a verified callback
// and feeds it into the confirm transaction. Conflicting replays come
// back as errors and are answered per gateway protocol by the caller.
func (h *BorrowHandler) settleGatewayCallback(r *http.Request, transactionID string, outcome domain.PaymentOutcome) error {
	ctx := r.Context()

	borrow, err := h.borrows.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}

	return h.payments.ConfirmGatewayReturn(ctx, borrow.ID, transactionID, outcome)
}

// parseBorrowQuery parses query parameters for listing borrows
func (h *BorrowHandler) parseBorrowQuery(r *http.Request) ports.BorrowQuery {
	q := ports.BorrowQuery{
		Page:      1,
		PageSize:  50,
		SortBy:    "borrow_date",
		SortOrder: "desc",
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			q.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				q.PageSize = 100
			} else {
				q.PageSize = l
			}
		}
	}

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		if id, err := uuid.Parse(userID); err == nil {
			q.UserID = id
		}
	}

	if bookID := r.URL.Query().Get("book_id"); bookID != "" {
		if id, err := uuid.Parse(bookID); err == nil {
			q.BookID = id
		}
	}

	if open := r.URL.Query().Get("open"); open != "" {
		if val, err := strconv.ParseBool(open); err == nil {
			q.Open = &val
		}
	}

	if overdue := r.URL.Query().Get("overdue"); overdue != "" {
		if val, err := strconv.ParseBool(overdue); err == nil {
			q.Overdue = &val
		}
	}

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		q.SortBy = sortBy
	}

	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		q.SortOrder = order
	}

	return q
}

// Helper methods

func (h *BorrowHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *BorrowHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// CreateBorrowRequest represents the request body for opening a loan
type CreateBorrowRequest struct {
	BookID    uuid.UUID `json:"book_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Days      int       `json:"days,omitempty"`
}

// Validate validates the create borrow request
func (r *CreateBorrowRequest) Validate() error {
	if r.BookID == uuid.Nil {
		return fmt.Errorf("book_id is required")
	}
	if r.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if r.UserName == "" {
		return fmt.Errorf("user_name is required")
	}
	if r.UserEmail == "" {
		return fmt.Errorf("user_email is required")
	}
	if r.Days < 0 {
		return fmt.Errorf("days cannot be negative")
	}
	return nil
}

// PrepareReturnRequest selects the settlement method for a return
type PrepareReturnRequest struct {
	Method string `json:"method"`
}

// ZaloPayCallbackRequest is the raw callback envelope ZaloPay posts
type ZaloPayCallbackRequest struct {
	Data string `json:"data"`
	MAC  string `json:"mac"`
}
