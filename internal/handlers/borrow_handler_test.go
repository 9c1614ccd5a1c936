// internal/handlers/borrow_handler_test.go
package handlers_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/library-be/internal/adapters/gateway"
	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
	"github.com/ammerola/library-be/internal/handlers"
	"github.com/ammerola/library-be/test/helpers"
	"github.com/ammerola/library-be/test/mocks"
)

type borrowHandlerFixture struct {
	handler     *handlers.BorrowHandler
	circulation *mocks.MockCirculationService
	payments    *mocks.MockPaymentService
	borrows     *mocks.MockBorrowRepository
}

func newBorrowHandler(t *testing.T) borrowHandlerFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	circulation := mocks.NewMockCirculationService(ctrl)
	payments := mocks.NewMockPaymentService(ctrl)
	borrows := mocks.NewMockBorrowRepository(ctrl)

	vnpay := gateway.NewVNPay(gateway.VNPayConfig{
		TmnCode:    "LIBTEST1",
		HashSecret: "test-secret",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://library.example.com/payments/vnpay/return",
	}, helpers.TestLogger())
	zalopay := gateway.NewZaloPay(gateway.ZaloPayConfig{
		AppID: "2553",
		Key1:  "test-key1",
		Key2:  "test-key2",
	}, helpers.TestLogger())

	return borrowHandlerFixture{
		handler:     handlers.NewBorrowHandler(circulation, payments, borrows, vnpay, zalopay, helpers.TestLogger()),
		circulation: circulation,
		payments:    payments,
		borrows:     borrows,
	}
}

func TestBorrowHandler_CreateBorrow(t *testing.T) {
	book := helpers.CreateTestBook()

	validPayload := func() []byte {
		payload, _ := json.Marshal(map[string]interface{}{
			"book_id":    book.ID.String(),
			"user_id":    uuid.NewString(),
			"user_name":  "Pat Reader",
			"user_email": "pat.reader@example.com",
		})
		return payload
	}

	t.Run("opens_loan", func(t *testing.T) {
		f := newBorrowHandler(t)

		created := helpers.CreateTestBorrow(book.ID, uuid.New())
		f.circulation.EXPECT().
			Borrow(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx interface{}, req ports.BorrowRequest) (*domain.Borrow, error) {
				assert.Equal(t, book.ID, req.BookID)
				assert.Equal(t, "Pat Reader", req.Borrower.Name)
				return created, nil
			})

		req := httptest.NewRequest("POST", "/api/v1/borrows", bytes.NewReader(validPayload()))
		w := httptest.NewRecorder()

		f.handler.CreateBorrow(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, created.ID.String(), body["id"])
	})

	t.Run("rejects_missing_borrower_fields", func(t *testing.T) {
		f := newBorrowHandler(t)

		payload, _ := json.Marshal(map[string]interface{}{
			"book_id": book.ID.String(),
		})
		req := httptest.NewRequest("POST", "/api/v1/borrows", bytes.NewReader(payload))
		w := httptest.NewRecorder()

		f.handler.CreateBorrow(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no_copy_available_conflict", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.circulation.EXPECT().
			Borrow(gomock.Any(), gomock.Any()).
			Return(nil, domain.ErrNoCopyAvailable)

		req := httptest.NewRequest("POST", "/api/v1/borrows", bytes.NewReader(validPayload()))
		w := httptest.NewRecorder()

		f.handler.CreateBorrow(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "No copy available for this book", body["error"])
	})

	t.Run("unknown_book_not_found", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.circulation.EXPECT().
			Borrow(gomock.Any(), gomock.Any()).
			Return(nil, domain.ErrBookNotFound)

		req := httptest.NewRequest("POST", "/api/v1/borrows", bytes.NewReader(validPayload()))
		w := httptest.NewRecorder()

		f.handler.CreateBorrow(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBorrowHandler_RenewBorrow(t *testing.T) {
	borrowID := uuid.New()

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "renews_open_loan",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "closed_borrow_conflict",
			serviceErr:     domain.ErrBorrowClosed,
			expectedStatus: http.StatusConflict,
			expectedError:  "Borrow is already closed",
		},
		{
			name:           "overdue_conflict",
			serviceErr:     domain.ErrOverdue,
			expectedStatus: http.StatusConflict,
			expectedError:  "Overdue loans cannot be renewed",
		},
		{
			name:           "renewal_limit_conflict",
			serviceErr:     domain.ErrRenewalLimit,
			expectedStatus: http.StatusConflict,
			expectedError:  "Renewal limit reached",
		},
		{
			name:           "unknown_borrow_not_found",
			serviceErr:     domain.ErrBorrowNotFound,
			expectedStatus: http.StatusNotFound,
			expectedError:  "Borrow not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBorrowHandler(t)

			if tt.serviceErr != nil {
				f.circulation.EXPECT().Renew(gomock.Any(), borrowID).Return(nil, tt.serviceErr)
			} else {
				renewed := helpers.CreateTestBorrow(uuid.New(), uuid.New(), func(b *domain.Borrow) {
					b.ID = borrowID
					b.RenewCount = 1
				})
				f.circulation.EXPECT().Renew(gomock.Any(), borrowID).Return(renewed, nil)
			}

			req := httptest.NewRequest("POST", "/api/v1/borrows/"+borrowID.String()+"/renew", nil)
			req.SetPathValue("id", borrowID.String())
			w := httptest.NewRecorder()

			f.handler.RenewBorrow(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedError, body["error"])
			}
		})
	}
}

func TestBorrowHandler_PrepareReturn(t *testing.T) {
	borrowID := uuid.New()

	prepareRequest := func(method string) *http.Request {
		payload, _ := json.Marshal(map[string]string{"method": method})
		req := httptest.NewRequest("POST", "/api/v1/borrows/"+borrowID.String()+"/return", bytes.NewReader(payload))
		req.SetPathValue("id", borrowID.String())
		return req
	}

	t.Run("returns_payment_intent", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.payments.EXPECT().
			PrepareReturn(gomock.Any(), borrowID, domain.MethodVNPay).
			Return(&ports.PaymentIntent{
				BorrowID:      borrowID,
				Method:        domain.MethodVNPay,
				Amount:        decimal.NewFromFloat(41.99),
				TransactionID: uuid.NewString(),
				RedirectURL:   "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?vnp_TxnRef=abc",
			}, nil)

		w := httptest.NewRecorder()
		f.handler.PrepareReturn(w, prepareRequest("vnpay"))

		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body["redirect_url"])
	})

	t.Run("unsupported_method", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.payments.EXPECT().
			PrepareReturn(gomock.Any(), borrowID, domain.PaymentMethod("bitcoin")).
			Return(nil, domain.ErrUnsupportedMethod)

		w := httptest.NewRecorder()
		f.handler.PrepareReturn(w, prepareRequest("bitcoin"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("already_paid_conflict", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.payments.EXPECT().
			PrepareReturn(gomock.Any(), borrowID, domain.MethodCash).
			Return(nil, domain.ErrAlreadyPaid)

		w := httptest.NewRecorder()
		f.handler.PrepareReturn(w, prepareRequest("cash"))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBorrowHandler_ConfirmCashReturn(t *testing.T) {
	borrowID := uuid.New()

	confirmRequest := func() *http.Request {
		req := httptest.NewRequest("POST", "/api/v1/borrows/"+borrowID.String()+"/return/confirm", nil)
		req.SetPathValue("id", borrowID.String())
		return req
	}

	t.Run("settles_return", func(t *testing.T) {
		f := newBorrowHandler(t)

		closed := helpers.CreateTestBorrow(uuid.New(), uuid.New(), func(b *domain.Borrow) {
			b.ID = borrowID
			b.Payment.Status = domain.PaymentPaid
		})
		f.payments.EXPECT().ConfirmCashReturn(gomock.Any(), borrowID).Return(closed, nil)

		w := httptest.NewRecorder()
		f.handler.ConfirmCashReturn(w, confirmRequest())

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unprepared_return_conflict", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.payments.EXPECT().ConfirmCashReturn(gomock.Any(), borrowID).Return(nil, domain.ErrNotPending)

		w := httptest.NewRecorder()
		f.handler.ConfirmCashReturn(w, confirmRequest())

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

// signVNPayQuery signs params the way VNPay signs its IPN: HMAC-SHA512
// over the sorted url-encoded pairs, excluding the hash itself.
func signVNPayQuery(secret string, params url.Values) url.Values {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(params.Encode()))
	params.Set("vnp_SecureHash", hex.EncodeToString(mac.Sum(nil)))
	return params
}

func vnpayCallbackRequest(secret, txnRef, responseCode string) *http.Request {
	params := url.Values{}
	params.Set("vnp_TmnCode", "LIBTEST1")
	params.Set("vnp_TxnRef", txnRef)
	params.Set("vnp_Amount", "4199")
	params.Set("vnp_ResponseCode", responseCode)
	params = signVNPayQuery(secret, params)

	return httptest.NewRequest("GET", "/api/v1/payments/vnpay/callback?"+params.Encode(), nil)
}

func TestBorrowHandler_VNPayCallback(t *testing.T) {
	borrow := helpers.CreateTestBorrow(uuid.New(), uuid.New())

	rspCode := func(t *testing.T, w *httptest.ResponseRecorder) string {
		t.Helper()
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body["RspCode"]
	}

	t.Run("settles_verified_success", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.borrows.EXPECT().FindByTransactionID(gomock.Any(), "txn-123").Return(borrow, nil)
		f.payments.EXPECT().
			ConfirmGatewayReturn(gomock.Any(), borrow.ID, "txn-123", domain.OutcomeSuccess).
			Return(nil)

		w := httptest.NewRecorder()
		f.handler.VNPayCallback(w, vnpayCallbackRequest("test-secret", "txn-123", "00"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "00", rspCode(t, w))
	})

	t.Run("records_gateway_failure_outcome", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.borrows.EXPECT().FindByTransactionID(gomock.Any(), "txn-123").Return(borrow, nil)
		f.payments.EXPECT().
			ConfirmGatewayReturn(gomock.Any(), borrow.ID, "txn-123", domain.OutcomeFailure).
			Return(nil)

		w := httptest.NewRecorder()
		f.handler.VNPayCallback(w, vnpayCallbackRequest("test-secret", "txn-123", "24"))

		assert.Equal(t, "00", rspCode(t, w))
	})

	t.Run("invalid_signature_answers_97", func(t *testing.T) {
		f := newBorrowHandler(t)

		w := httptest.NewRecorder()
		f.handler.VNPayCallback(w, vnpayCallbackRequest("wrong-secret", "txn-123", "00"))

		// IPN protocol answers in-band, always HTTP 200.
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "97", rspCode(t, w))
	})

	t.Run("unknown_transaction_answers_01", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.borrows.EXPECT().
			FindByTransactionID(gomock.Any(), "txn-123").
			Return(nil, domain.ErrUnknownTransaction)

		w := httptest.NewRecorder()
		f.handler.VNPayCallback(w, vnpayCallbackRequest("test-secret", "txn-123", "00"))

		assert.Equal(t, "01", rspCode(t, w))
	})

	t.Run("settlement_failure_answers_99", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.borrows.EXPECT().FindByTransactionID(gomock.Any(), "txn-123").Return(borrow, nil)
		f.payments.EXPECT().
			ConfirmGatewayReturn(gomock.Any(), borrow.ID, "txn-123", domain.OutcomeSuccess).
			Return(errors.New("deadlock detected"))

		w := httptest.NewRecorder()
		f.handler.VNPayCallback(w, vnpayCallbackRequest("test-secret", "txn-123", "00"))

		assert.Equal(t, "99", rspCode(t, w))
	})
}

func zalopayCallbackRequest(key2, data string) *http.Request {
	mac := hmac.New(sha256.New, []byte(key2))
	mac.Write([]byte(data))

	payload, _ := json.Marshal(map[string]string{
		"data": data,
		"mac":  hex.EncodeToString(mac.Sum(nil)),
	})
	return httptest.NewRequest("POST", "/api/v1/payments/zalopay/callback", bytes.NewReader(payload))
}

func TestBorrowHandler_ZaloPayCallback(t *testing.T) {
	borrow := helpers.CreateTestBorrow(uuid.New(), uuid.New())
	data := `{"app_trans_id":"250607_txn-456","amount":15000}`

	returnCode := func(t *testing.T, w *httptest.ResponseRecorder) float64 {
		t.Helper()
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body["return_code"].(float64)
	}

	t.Run("settles_verified_callback", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.borrows.EXPECT().FindByTransactionID(gomock.Any(), "txn-456").Return(borrow, nil)
		f.payments.EXPECT().
			ConfirmGatewayReturn(gomock.Any(), borrow.ID, "txn-456", domain.OutcomeSuccess).
			Return(nil)

		w := httptest.NewRecorder()
		f.handler.ZaloPayCallback(w, zalopayCallbackRequest("test-key2", data))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), returnCode(t, w))
	})

	t.Run("invalid_mac_answers_minus_one", func(t *testing.T) {
		f := newBorrowHandler(t)

		w := httptest.NewRecorder()
		f.handler.ZaloPayCallback(w, zalopayCallbackRequest("wrong-key", data))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(-1), returnCode(t, w))
	})

	t.Run("settlement_failure_asks_for_retry", func(t *testing.T) {
		f := newBorrowHandler(t)

		f.borrows.EXPECT().FindByTransactionID(gomock.Any(), "txn-456").Return(borrow, nil)
		f.payments.EXPECT().
			ConfirmGatewayReturn(gomock.Any(), borrow.ID, "txn-456", domain.OutcomeSuccess).
			Return(errors.New("deadlock detected"))

		w := httptest.NewRecorder()
		f.handler.ZaloPayCallback(w, zalopayCallbackRequest("test-key2", data))

		assert.Equal(t, float64(0), returnCode(t, w))
	})
}
