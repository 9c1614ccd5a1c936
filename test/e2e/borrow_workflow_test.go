//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/library-be/internal/adapters/db"
	"github.com/ammerola/library-be/internal/adapters/gateway"
	redis_a "github.com/ammerola/library-be/internal/adapters/redis_adapter"
	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
	"github.com/ammerola/library-be/internal/core/services"
	"github.com/ammerola/library-be/internal/handlers"
	"github.com/ammerola/library-be/test/helpers"
)

const vnpayTestSecret = "e2e-test-secret"

// noopNotifier satisfies ports.Notifier without a mail backend
type noopNotifier struct{}

func (noopNotifier) LoanCreated(ctx context.Context, borrow *domain.Borrow) error   { return nil }
func (noopNotifier) LoanOverdue(ctx context.Context, borrow *domain.Borrow) error   { return nil }
func (noopNotifier) PaymentConfirmed(ctx context.Context, borrow *domain.Borrow) error {
	return nil
}

type BorrowWorkflowSuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
}

func (s *BorrowWorkflowSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *BorrowWorkflowSuite) TearDownSuite() {
	s.server.Close()
}

func (s *BorrowWorkflowSuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *BorrowWorkflowSuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()

	books := db.NewBookRepository(s.testDB.Database, logger)
	copies := db.NewCopyRepository(s.testDB.Database, logger)
	borrows := db.NewBorrowRepository(s.testDB.Database, logger)
	cache := redis_a.NewCache(s.testRedis.Client, time.Minute, logger)

	vnpay := gateway.NewVNPay(gateway.VNPayConfig{
		TmnCode:    "LIBE2E01",
		HashSecret: vnpayTestSecret,
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://library.example.com/payments/vnpay/return",
	}, logger)

	catalog := services.NewCatalogService(books, copies, cache, nil, logger)
	circulation := services.NewCirculationService(books, copies, borrows, noopNotifier{},
		services.CirculationConfig{LoanDays: 14, RenewalDays: 7, MaxRenewals: 2}, logger)
	payments := services.NewPaymentService(borrows,
		[]ports.PaymentGateway{vnpay},
		domain.NewFineCalculator(decimal.RequireFromString("0.50")),
		noopNotifier{},
		services.PaymentConfig{PendingTTL: 15 * time.Minute}, logger)

	catalogHandler := handlers.NewCatalogHandler(catalog, logger)
	borrowHandler := handlers.NewBorrowHandler(circulation, payments, borrows, vnpay, nil, logger)

	const apiV1 = "/api/v1"
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiV1+"/books", catalogHandler.CreateBook)
	mux.HandleFunc("GET "+apiV1+"/books/{id}", catalogHandler.GetBook)
	mux.HandleFunc("GET "+apiV1+"/books", catalogHandler.ListBooks)
	mux.HandleFunc("DELETE "+apiV1+"/books/{id}", catalogHandler.DeleteBook)
	mux.HandleFunc("POST "+apiV1+"/books/{id}/copies", catalogHandler.AddCopies)
	mux.HandleFunc("POST "+apiV1+"/borrows", borrowHandler.CreateBorrow)
	mux.HandleFunc("GET "+apiV1+"/borrows/{id}", borrowHandler.GetBorrow)
	mux.HandleFunc("POST "+apiV1+"/borrows/{id}/renew", borrowHandler.RenewBorrow)
	mux.HandleFunc("POST "+apiV1+"/borrows/{id}/return", borrowHandler.PrepareReturn)
	mux.HandleFunc("POST "+apiV1+"/borrows/{id}/return/confirm", borrowHandler.ConfirmCashReturn)
	mux.HandleFunc("GET "+apiV1+"/payments/vnpay/callback", borrowHandler.VNPayCallback)

	return httptest.NewServer(mux)
}

func (s *BorrowWorkflowSuite) TestCashReturnWorkflow() {
	// 1. Create a book with two physical copies
	book := s.createBook("The Go Programming Language", 2)
	bookID := book["id"].(string)

	// 2. Open a loan
	borrow := s.createBorrow(bookID)
	borrowID := borrow["id"].(string)
	s.NotEmpty(borrow["copy_code"])

	// 3. The aggregate counters reflect the claim
	resp := s.makeRequest("GET", "/books/"+bookID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var after map[string]interface{}
	s.decodeResponse(resp, &after)
	s.Equal(float64(1), after["quantity"])
	s.Equal(float64(2), after["total_copies"])

	// 4. Renew once
	resp = s.makeRequest("POST", fmt.Sprintf("/borrows/%s/renew", borrowID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var renewed map[string]interface{}
	s.decodeResponse(resp, &renewed)
	s.Equal(float64(1), renewed["renew_count"])

	// 5. Prepare a cash return: on time, so the amount is just the price
	resp = s.makeRequest("POST", fmt.Sprintf("/borrows/%s/return", borrowID),
		map[string]string{"method": "cash"})
	s.Equal(http.StatusOK, resp.StatusCode)

	var intent map[string]interface{}
	s.decodeResponse(resp, &intent)
	s.Empty(intent["redirect_url"])

	// 6. Confirm at the desk
	resp = s.makeRequest("POST", fmt.Sprintf("/borrows/%s/return/confirm", borrowID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var closed map[string]interface{}
	s.decodeResponse(resp, &closed)
	s.NotNil(closed["return_date"])
	payment := closed["payment"].(map[string]interface{})
	s.Equal("paid", payment["status"])

	// 7. The copy is back in the pool
	resp = s.makeRequest("GET", "/books/"+bookID, nil)
	s.decodeResponse(resp, &after)
	s.Equal(float64(2), after["quantity"])

	// 8. A second confirm replays as a no-op
	resp = s.makeRequest("POST", fmt.Sprintf("/borrows/%s/return/confirm", borrowID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *BorrowWorkflowSuite) TestVNPayReturnWorkflow() {
	book := s.createBook("Distributed Systems", 1)
	bookID := book["id"].(string)

	borrow := s.createBorrow(bookID)
	borrowID := borrow["id"].(string)

	// Prepare a VNPay return and pull the transaction ref out of the
	// redirect URL the borrower would be sent to.
	resp := s.makeRequest("POST", fmt.Sprintf("/borrows/%s/return", borrowID),
		map[string]string{"method": "vnpay"})
	s.Equal(http.StatusOK, resp.StatusCode)

	var intent map[string]interface{}
	s.decodeResponse(resp, &intent)

	redirectURL := intent["redirect_url"].(string)
	s.NotEmpty(redirectURL)

	parsed, err := url.Parse(redirectURL)
	s.NoError(err)
	txnRef := parsed.Query().Get("vnp_TxnRef")
	s.NotEmpty(txnRef)

	// Simulate the signed IPN callback
	params := url.Values{}
	params.Set("vnp_TmnCode", "LIBE2E01")
	params.Set("vnp_TxnRef", txnRef)
	params.Set("vnp_ResponseCode", "00")
	mac := hmac.New(sha512.New, []byte(vnpayTestSecret))
	mac.Write([]byte(params.Encode()))
	params.Set("vnp_SecureHash", hex.EncodeToString(mac.Sum(nil)))

	resp = s.makeRequest("GET", "/payments/vnpay/callback?"+params.Encode(), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var ipn map[string]string
	s.decodeResponse(resp, &ipn)
	s.Equal("00", ipn["RspCode"])

	// The loan is settled and closed
	resp = s.makeRequest("GET", "/borrows/"+borrowID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var settled map[string]interface{}
	s.decodeResponse(resp, &settled)
	s.NotNil(settled["return_date"])
	payment := settled["payment"].(map[string]interface{})
	s.Equal("paid", payment["status"])

	// Replaying the same IPN still answers success
	resp = s.makeRequest("GET", "/payments/vnpay/callback?"+params.Encode(), nil)
	s.decodeResponse(resp, &ipn)
	s.Equal("00", ipn["RspCode"])
}

func (s *BorrowWorkflowSuite) TestExhaustedCopiesConflict() {
	book := s.createBook("Single Copy Title", 1)
	bookID := book["id"].(string)

	s.createBorrow(bookID)

	// The only copy is out, so the next borrow conflicts
	resp := s.makeRequest("POST", "/borrows", map[string]interface{}{
		"book_id":    bookID,
		"user_id":    "7a3f8e10-5b7c-4a4e-9b1a-000000000002",
		"user_name":  "Second Reader",
		"user_email": "second.reader@example.com",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)

	// And the book cannot be soft deleted while a copy is on loan
	resp = s.makeRequest("DELETE", "/books/"+bookID, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *BorrowWorkflowSuite) TestOverdueFineOnReturn() {
	book := s.createBook("Late Returns", 1)
	bookID := book["id"].(string)

	borrow := s.createBorrow(bookID)
	borrowID := borrow["id"].(string)

	// Backdate the loan three days past due
	_, err := s.testDB.PgxPool.Exec(context.Background(),
		`UPDATE borrows SET due_date = NOW() - INTERVAL '3 days' WHERE id = $1`, borrowID)
	s.NoError(err)

	resp := s.makeRequest("POST", fmt.Sprintf("/borrows/%s/return", borrowID),
		map[string]string{"method": "cash"})
	s.Equal(http.StatusOK, resp.StatusCode)

	var intent map[string]interface{}
	s.decodeResponse(resp, &intent)

	// 39.99 price plus 3 full days at 0.50, the partial day rounds up to 4
	amount, err := decimal.NewFromString(fmt.Sprintf("%v", intent["amount"]))
	s.NoError(err)
	s.True(amount.GreaterThan(decimal.NewFromFloat(39.99)),
		"amount %s should include an overdue fine", amount)
}

// Helper methods

func (s *BorrowWorkflowSuite) createBook(title string, copies int) map[string]interface{} {
	resp := s.makeRequest("POST", "/books", map[string]interface{}{
		"title":          title,
		"author":         "E2E Author",
		"price":          39.99,
		"category":       "technology",
		"initial_copies": copies,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var book map[string]interface{}
	s.decodeResponse(resp, &book)
	s.NotEmpty(book["id"])
	return book
}

func (s *BorrowWorkflowSuite) createBorrow(bookID string) map[string]interface{} {
	resp := s.makeRequest("POST", "/borrows", map[string]interface{}{
		"book_id":    bookID,
		"user_id":    "7a3f8e10-5b7c-4a4e-9b1a-000000000001",
		"user_name":  "Pat Reader",
		"user_email": "pat.reader@example.com",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var borrow map[string]interface{}
	s.decodeResponse(resp, &borrow)
	s.NotEmpty(borrow["id"])
	return borrow
}

func (s *BorrowWorkflowSuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

func (s *BorrowWorkflowSuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestBorrowWorkflowSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(BorrowWorkflowSuite))
}
