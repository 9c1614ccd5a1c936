// internal/adapters/gateway/zalopay.go
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

var hundred = decimal.NewFromInt(100)

// ZaloPayConfig holds ZaloPay merchant credentials and endpoints
type ZaloPayConfig struct {
	AppID       string
	Key1        string
	Key2        string
	CreateURL   string
	CallbackURL string
}

// ZaloPay creates payment orders against the ZaloPay create-order API.
// Requests are authenticated with an HMAC-SHA256 MAC over the pipe-joined
// order fields using key1; callbacks are verified with key2.
type ZaloPay struct {
	cfg    ZaloPayConfig
	client *http.Client
	logger *slog.Logger
}

// Statically assert that *ZaloPay implements the PaymentGateway interface.
var _ ports.PaymentGateway = (*ZaloPay)(nil)

// NewZaloPay creates a new ZaloPay gateway adapter
func NewZaloPay(cfg ZaloPayConfig, logger *slog.Logger) *ZaloPay {
	return &ZaloPay{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With(slog.String("gateway", "zalopay")),
	}
}

// Method returns the payment method this gateway serves
func (g *ZaloPay) Method() domain.PaymentMethod {
	return domain.MethodZaloPay
}

type zaloCreateResponse struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	OrderURL      string `json:"order_url"`
}

// CreatePaymentURL registers the order with ZaloPay and returns the
// order_url the borrower is redirected to.
func (g *ZaloPay) CreatePaymentURL(ctx context.Context, order ports.PaymentOrder) (string, error) {
	if g.cfg.AppID == "" || g.cfg.Key1 == "" {
		return "", fmt.Errorf("zalopay gateway is not configured")
	}

	now := time.Now()
	// app_trans_id must be prefixed with the merchant-local date.
	appTransID := fmt.Sprintf("%s_%s", now.Format("060102"), order.TransactionID)
	appTime := fmt.Sprintf("%d", now.UnixMilli())
	amount := order.Amount.StringFixed(0)
	embedData := fmt.Sprintf(`{"redirecturl":%q}`, g.cfg.CallbackURL)
	items := "[]"

	mac := hmacSHA256(g.cfg.Key1, strings.Join([]string{
		g.cfg.AppID, appTransID, order.BorrowID.String(), amount, appTime, embedData, items,
	}, "|"))

	form := url.Values{
		"app_id":       {g.cfg.AppID},
		"app_trans_id": {appTransID},
		"app_user":     {order.BorrowID.String()},
		"app_time":     {appTime},
		"amount":       {amount},
		"embed_data":   {embedData},
		"item":         {items},
		"description":  {order.Description},
		"callback_url": {g.cfg.CallbackURL},
		"mac":          {mac},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.CreateURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build create-order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call zalopay: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read zalopay response: %w", err)
	}

	var created zaloCreateResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode zalopay response: %w", err)
	}
	if created.ReturnCode != 1 {
		return "", fmt.Errorf("zalopay rejected order: %s", created.ReturnMessage)
	}

	g.logger.DebugContext(ctx, "zalopay order created",
		slog.String("app_trans_id", appTransID),
		slog.String("amount", order.Amount.String()))

	return created.OrderURL, nil
}

// VerifyCallback checks the key2 MAC on a callback payload and extracts
// the transaction id. ZaloPay only calls back on success; failures are
// surfaced by the pending-payment expiry sweep.
func (g *ZaloPay) VerifyCallback(data, receivedMAC string) (string, domain.PaymentOutcome, error) {
	expected := hmacSHA256(g.cfg.Key2, data)
	if !hmac.Equal([]byte(receivedMAC), []byte(expected)) {
		return "", "", fmt.Errorf("invalid zalopay mac")
	}

	var payload struct {
		AppTransID string `json:"app_trans_id"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return "", "", fmt.Errorf("failed to decode callback data: %w", err)
	}

	// Strip the yymmdd_ prefix back off the transaction id.
	txnID := payload.AppTransID
	if i := strings.IndexByte(txnID, '_'); i >= 0 {
		txnID = txnID[i+1:]
	}

	return txnID, domain.OutcomeSuccess, nil
}

func hmacSHA256(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
