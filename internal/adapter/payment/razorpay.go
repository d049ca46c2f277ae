package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
)

// GatewayOrder is the payment intent created at the gateway before the
// customer is handed off to the checkout widget.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type GatewayPayment struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	Method  string `json:"method"`
}

type Gateway interface {
	// CreateOrder registers a payment intent for the given amount in the
	// configured currency. amount is in currency units; the gateway works
	// in the smallest subunit.
	CreateOrder(ctx context.Context, amount float64, receipt string) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
	// Refund issues a full refund for a captured payment.
	Refund(ctx context.Context, paymentID string, amount float64) error
	// VerifySignature checks the checkout callback signature, an
	// HMAC-SHA256 of "gatewayOrderID|paymentID" under the key secret.
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

type razorpayGateway struct {
	cfg    config.PaymentConfig
	client *http.Client
	log    logger.Logger
}

func NewRazorpayGateway(cfg config.PaymentConfig, log logger.Logger) Gateway {
	return &razorpayGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// toSubunits converts currency units to the gateway's integer subunits
// (paise for INR).
func toSubunits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amount float64, receipt string) (*GatewayOrder, error) {
	payload := map[string]interface{}{
		"amount":          toSubunits(amount),
		"currency":        g.cfg.Currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	var order GatewayOrder
	if err := g.do(ctx, http.MethodPost, "/v1/orders", payload, &order); err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}
	g.log.Infof("Created gateway order %s for receipt %s", order.ID, receipt)
	return &order, nil
}

func (g *razorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error) {
	var payment GatewayPayment
	if err := g.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &payment); err != nil {
		return nil, fmt.Errorf("failed to fetch payment %s: %w", paymentID, err)
	}
	return &payment, nil
}

func (g *razorpayGateway) Refund(ctx context.Context, paymentID string, amount float64) error {
	payload := map[string]interface{}{
		"amount": toSubunits(amount),
	}
	if err := g.do(ctx, http.MethodPost, "/v1/payments/"+paymentID+"/refund", payload, nil); err != nil {
		return fmt.Errorf("failed to refund payment %s: %w", paymentID, err)
	}
	g.log.Infof("Refunded payment %s", paymentID)
	return nil
}

func (g *razorpayGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(g.cfg.KeySecret, gatewayOrderID, paymentID, signature)
}

// VerifySignature recomputes the expected HMAC and compares in constant
// time.
func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

func (g *razorpayGateway) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.log.Errorf("Gateway %s %s returned %d: %s", method, path, resp.StatusCode, respBody)
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}
	return nil
}
