// internal/adapters/gateway/vnpay.go
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

// VNPayConfig holds VNPay merchant credentials and endpoints
type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

// VNPay builds signed payment-initiation URLs for the VNPay gateway.
// The outcome comes back asynchronously through the callback endpoint.
type VNPay struct {
	cfg    VNPayConfig
	logger *slog.Logger
}

// Statically assert that *VNPay implements the PaymentGateway interface.
var _ ports.PaymentGateway = (*VNPay)(nil)

// NewVNPay creates a new VNPay gateway adapter
func NewVNPay(cfg VNPayConfig, logger *slog.Logger) *VNPay {
	return &VNPay{
		cfg:    cfg,
		logger: logger.With(slog.String("gateway", "vnpay")),
	}
}

// Method returns the payment method this gateway serves
func (g *VNPay) Method() domain.PaymentMethod {
	return domain.MethodVNPay
}

// CreatePaymentURL builds the redirect URL for a payment order. VNPay
// amounts are in minor units (VND x100) and the whole query string is
// signed with HMAC-SHA512 over the sorted parameters.
func (g *VNPay) CreatePaymentURL(ctx context.Context, order ports.PaymentOrder) (string, error) {
	if g.cfg.TmnCode == "" || g.cfg.HashSecret == "" {
		return "", fmt.Errorf("vnpay gateway is not configured")
	}

	now := time.Now()
	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Amount":     order.Amount.Mul(hundred).StringFixed(0),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     order.TransactionID,
		"vnp_OrderInfo":  order.Description,
		"vnp_OrderType":  "other",
		"vnp_Locale":     "vn",
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_CreateDate": now.Format("20060102150405"),
		"vnp_ExpireDate": now.Add(15 * time.Minute).Format("20060102150405"),
	}

	query := signedQuery(params, g.cfg.HashSecret)

	g.logger.DebugContext(ctx, "vnpay payment url created",
		slog.String("transaction_id", order.TransactionID),
		slog.String("amount", order.Amount.String()))

	return g.cfg.PayURL + "?" + query, nil
}

// VerifyCallback checks the signature on callback parameters and reports
// the payment outcome. Response code 00 is success; anything else failed.
func (g *VNPay) VerifyCallback(params url.Values) (string, domain.PaymentOutcome, error) {
	received := params.Get("vnp_SecureHash")
	if received == "" {
		return "", "", fmt.Errorf("missing vnp_SecureHash")
	}

	plain := make(map[string]string, len(params))
	for k := range params {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		plain[k] = params.Get(k)
	}

	expected := hmacSHA512(g.cfg.HashSecret, rawQuery(plain))
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return "", "", fmt.Errorf("invalid vnpay signature")
	}

	txnRef := params.Get("vnp_TxnRef")
	if params.Get("vnp_ResponseCode") == "00" {
		return txnRef, domain.OutcomeSuccess, nil
	}
	return txnRef, domain.OutcomeFailure, nil
}

// rawQuery url-encodes the parameters in sorted key order
func rawQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params[k]))
	}
	return sb.String()
}

// signedQuery appends the HMAC-SHA512 signature to the sorted query
func signedQuery(params map[string]string, secret string) string {
	raw := rawQuery(params)
	return raw + "&vnp_SecureHash=" + hmacSHA512(secret, raw)
}

func hmacSHA512(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
