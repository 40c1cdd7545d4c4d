package payment

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAPIURL = "https://securepay.tinkoff.ru/v2"

	defaultTestAmount    = 50000 // 500 ₽
	defaultReturnURL     = "https://t.me"
	testOrderDescription = "Тестовый платеж T-Bank"
)

// Client talks to the T-Bank acquiring API with one terminal's credentials.
// The console builds a client per bot from its saved terminal key and
// password.
type Client struct {
	TerminalKey string
	Password    string
	APIURL      string
	HTTPClient  *http.Client
}

func NewClient(terminalKey, password, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		TerminalKey: terminalKey,
		Password:    password,
		APIURL:      apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// token signs a request: Password joins the params, keys are sorted, scalar
// values are concatenated and hashed. Token itself and composite values
// (Receipt, DATA) never participate.
func (c *Client) token(params map[string]interface{}) string {
	keys := make([]string, 0, len(params)+1)
	for k := range params {
		if k == "Token" {
			continue
		}
		keys = append(keys, k)
	}
	keys = append(keys, "Password")
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		var v interface{}
		if k == "Password" {
			v = c.Password
		} else {
			v = params[k]
		}
		switch v.(type) {
		case map[string]interface{}, map[string]string, Receipt, []ReceiptItem:
			continue
		}
		fmt.Fprint(&buf, v)
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// call signs params with a token and posts them to one API method.
// Success=false in the body is an error even on HTTP 200.
func (c *Client) call(ctx context.Context, apiMethod string, params map[string]interface{}) (*gatewayResponse, error) {
	params["Token"] = c.token(params)

	jsonBody, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s", c.APIURL, apiMethod), bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("api error: %s (status: %d)", string(respBody), resp.StatusCode)
	}

	var gateway gatewayResponse
	if err := json.Unmarshal(respBody, &gateway); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !gateway.Success {
		message := gateway.Message
		if message == "" {
			message = "Неизвестная ошибка"
		}
		return &gateway, fmt.Errorf("gateway rejected request: %s (code %s)", message, gateway.ErrorCode)
	}

	return &gateway, nil
}

// TestPayment runs a throwaway Init against the terminal so an owner can
// verify their credentials before enabling payments. Amount <= 0 falls back
// to the standard test amount.
func (c *Client) TestPayment(ctx context.Context, amount int64) (*TestPaymentResult, error) {
	if amount <= 0 {
		amount = defaultTestAmount
	}
	orderID := fmt.Sprintf("test_%s", uuid.New().String())

	params := map[string]interface{}{
		"TerminalKey": c.TerminalKey,
		"Amount":      amount,
		"OrderId":     orderID,
		"Description": testOrderDescription,
		"DATA": map[string]string{
			"Phone": "+71234567890",
			"Email": "test@example.com",
		},
		"Receipt": Receipt{
			Email:    "test@example.com",
			Phone:    "+71234567890",
			Taxation: "usn_income",
			Items: []ReceiptItem{
				{
					Name:          "Тестовый товар",
					Price:         amount,
					Quantity:      1,
					Amount:        amount,
					Tax:           "none",
					PaymentMethod: "full_payment",
					PaymentObject: "service",
				},
			},
		},
	}

	gateway, err := c.call(ctx, "Init", params)
	if err != nil {
		return nil, err
	}

	return &TestPaymentResult{
		PaymentID:  gateway.PaymentID.String(),
		PaymentURL: gateway.PaymentURL,
		Message:    "Тестовый платёж успешно создан",
	}, nil
}

// CreateCardPayment creates a redirect payment and returns the payment page
// URL. Empty return URLs fall back to t.me so the flow never dead-ends.
func (c *Client) CreateCardPayment(ctx context.Context, amount int64, orderID, description, successURL, failURL string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("amount must be greater than 0")
	}
	if successURL == "" {
		successURL = defaultReturnURL
	}
	if failURL == "" {
		failURL = defaultReturnURL
	}

	gateway, err := c.call(ctx, "Init", map[string]interface{}{
		"TerminalKey": c.TerminalKey,
		"Amount":      amount,
		"OrderId":     orderID,
		"Description": description,
		"SuccessURL":  successURL,
		"FailURL":     failURL,
	})
	if err != nil {
		return "", err
	}
	return gateway.PaymentURL, nil
}

// CreateSBPPayment creates an СБП payment: Init with PayType T, then GetQr
// for the QR payload.
func (c *Client) CreateSBPPayment(ctx context.Context, amount int64, orderID, description string) (*SBPPayment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}

	gateway, err := c.call(ctx, "Init", map[string]interface{}{
		"TerminalKey": c.TerminalKey,
		"Amount":      amount,
		"OrderId":     orderID,
		"Description": description,
		"PayType":     "T",
	})
	if err != nil {
		return nil, err
	}
	paymentID := gateway.PaymentID.String()

	qr, err := c.call(ctx, "GetQr", map[string]interface{}{
		"TerminalKey": c.TerminalKey,
		"PaymentId":   paymentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get qr: %w", err)
	}

	return &SBPPayment{
		QRCode:    qr.Data,
		PaymentID: paymentID,
	}, nil
}

// CheckStatus returns the gateway-side status of a payment (NEW, CONFIRMED,
// REJECTED and so on).
func (c *Client) CheckStatus(ctx context.Context, paymentID string) (string, error) {
	gateway, err := c.call(ctx, "GetState", map[string]interface{}{
		"TerminalKey": c.TerminalKey,
		"PaymentId":   paymentID,
	})
	if err != nil {
		return "", err
	}
	return gateway.Status, nil
}
