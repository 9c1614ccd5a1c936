// internal/adapters/gateway/zalopay_test.go
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
	"github.com/ammerola/library-be/test/helpers"
)

func testZaloPay(createURL string) *ZaloPay {
	return NewZaloPay(ZaloPayConfig{
		AppID:       "2553",
		Key1:        "test-key1",
		Key2:        "test-key2",
		CreateURL:   createURL,
		CallbackURL: "https://library.example.com/payments/zalopay/callback",
	}, helpers.TestLogger())
}

func TestZaloPay_CreatePaymentURL(t *testing.T) {
	t.Run("returns_order_url_on_success", func(t *testing.T) {
		var gotForm map[string]string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = map[string]string{}
			for k := range r.PostForm {
				gotForm[k] = r.PostForm.Get(k)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"return_code": 1,
				"order_url":   "https://sb-openapi.zalopay.vn/order/pay?token=abc",
			})
		}))
		defer srv.Close()

		g := testZaloPay(srv.URL)
		order := ports.PaymentOrder{
			BorrowID:      uuid.New(),
			TransactionID: uuid.NewString(),
			Amount:        decimal.NewFromInt(15000),
			Description:   "Library return",
		}

		orderURL, err := g.CreatePaymentURL(context.Background(), order)

		require.NoError(t, err)
		assert.Equal(t, "https://sb-openapi.zalopay.vn/order/pay?token=abc", orderURL)

		assert.Equal(t, "2553", gotForm["app_id"])
		assert.Contains(t, gotForm["app_trans_id"], order.TransactionID)
		assert.Equal(t, "15000", gotForm["amount"])

		// The request MAC is HMAC-SHA256 over the pipe-joined fields with key1.
		expected := hmacSHA256("test-key1", fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
			gotForm["app_id"], gotForm["app_trans_id"], gotForm["app_user"],
			gotForm["amount"], gotForm["app_time"], gotForm["embed_data"], gotForm["item"]))
		assert.Equal(t, expected, gotForm["mac"])
	})

	t.Run("rejected_order_surfaces_message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"return_code":    2,
				"return_message": "invalid mac",
			})
		}))
		defer srv.Close()

		g := testZaloPay(srv.URL)

		_, err := g.CreatePaymentURL(context.Background(), ports.PaymentOrder{
			BorrowID:      uuid.New(),
			TransactionID: uuid.NewString(),
			Amount:        decimal.NewFromInt(100),
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "zalopay rejected order")
	})

	t.Run("unconfigured_gateway_fails_fast", func(t *testing.T) {
		g := NewZaloPay(ZaloPayConfig{}, helpers.TestLogger())

		_, err := g.CreatePaymentURL(context.Background(), ports.PaymentOrder{
			TransactionID: uuid.NewString(),
			Amount:        decimal.NewFromInt(100),
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})
}

func TestZaloPay_VerifyCallback(t *testing.T) {
	g := testZaloPay("")

	t.Run("accepts_valid_mac_and_strips_prefix", func(t *testing.T) {
		data := `{"app_trans_id":"250607_txn-456","amount":15000}`
		mac := hmacSHA256("test-key2", data)

		txnID, outcome, err := g.VerifyCallback(data, mac)

		require.NoError(t, err)
		assert.Equal(t, "txn-456", txnID)
		assert.Equal(t, domain.OutcomeSuccess, outcome)
	})

	t.Run("rejects_wrong_mac", func(t *testing.T) {
		data := `{"app_trans_id":"250607_txn-456"}`

		_, _, err := g.VerifyCallback(data, hmacSHA256("wrong-key", data))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid zalopay mac")
	})

	t.Run("rejects_tampered_data", func(t *testing.T) {
		data := `{"app_trans_id":"250607_txn-456","amount":15000}`
		mac := hmacSHA256("test-key2", data)
		tampered := `{"app_trans_id":"250607_txn-456","amount":1}`

		_, _, err := g.VerifyCallback(tampered, mac)

		require.Error(t, err)
	})

	t.Run("rejects_malformed_payload", func(t *testing.T) {
		data := `not-json`
		mac := hmacSHA256("test-key2", data)

		_, _, err := g.VerifyCallback(data, mac)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode callback data")
	})
}
