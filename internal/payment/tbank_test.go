package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTokenSignature(t *testing.T) {
	c := &Client{TerminalKey: "t", Password: "p"}

	// Sorted keys Amount, Description, OrderId, Password, TerminalKey
	// concatenate to "100dopt".
	got := c.token(map[string]interface{}{
		"TerminalKey": "t",
		"Amount":      int64(100),
		"OrderId":     "o",
		"Description": "d",
	})
	want := "ff38727f31730c3efad003ede0132661cd142308b3fc83c9ee3627ad67b84973"
	if got != want {
		t.Errorf("token = %s, want %s", got, want)
	}
}

func TestTokenSkipsCompositeValues(t *testing.T) {
	c := &Client{TerminalKey: "t", Password: "p"}

	base := map[string]interface{}{
		"TerminalKey": "t",
		"Amount":      int64(100),
		"OrderId":     "o",
		"Description": "d",
	}
	plain := c.token(base)

	base["Receipt"] = Receipt{Email: "a@b.c", Taxation: "usn_income"}
	base["DATA"] = map[string]string{"Phone": "+71234567890"}
	if got := c.token(base); got != plain {
		t.Errorf("composite values changed the token: %s != %s", got, plain)
	}
}

func TestTokenExcludesPreviousToken(t *testing.T) {
	c := &Client{TerminalKey: "t", Password: "p"}
	params := map[string]interface{}{
		"TerminalKey": "t",
		"Amount":      int64(100),
		"OrderId":     "o",
		"Description": "d",
	}
	plain := c.token(params)

	params["Token"] = "stale"
	if got := c.token(params); got != plain {
		t.Errorf("stale Token leaked into the signature")
	}
}

func TestTestPayment(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Init" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Success":    true,
			"PaymentId":  12345,
			"PaymentURL": "https://securepay.tinkoff.ru/pay/12345",
		})
	}))
	defer server.Close()

	c := NewClient("terminal", "secret", server.URL)
	result, err := c.TestPayment(context.Background(), 0)
	if err != nil {
		t.Fatalf("TestPayment: %v", err)
	}

	if body["TerminalKey"] != "terminal" {
		t.Errorf("TerminalKey = %v", body["TerminalKey"])
	}
	if amount, _ := body["Amount"].(float64); int64(amount) != 50000 {
		t.Errorf("Amount = %v, want 50000 default", body["Amount"])
	}
	orderID, _ := body["OrderId"].(string)
	if !strings.HasPrefix(orderID, "test_") {
		t.Errorf("OrderId = %q, want test_ prefix", orderID)
	}
	token, _ := body["Token"].(string)
	if len(token) != 64 {
		t.Errorf("Token = %q, want 64 hex chars", token)
	}
	if _, ok := body["Receipt"]; !ok {
		t.Error("request has no Receipt")
	}

	if result.PaymentID != "12345" {
		t.Errorf("PaymentID = %q", result.PaymentID)
	}
	if result.PaymentURL != "https://securepay.tinkoff.ru/pay/12345" {
		t.Errorf("PaymentURL = %q", result.PaymentURL)
	}
	if result.Message != "Тестовый платёж успешно создан" {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Success":   false,
			"ErrorCode": "204",
			"Message":   "Неверный токен",
		})
	}))
	defer server.Close()

	c := NewClient("terminal", "wrong", server.URL)
	_, err := c.TestPayment(context.Background(), 100)
	if err == nil {
		t.Fatal("expected error on Success=false")
	}
	if !strings.Contains(err.Error(), "Неверный токен") || !strings.Contains(err.Error(), "204") {
		t.Errorf("error = %v", err)
	}
}

func TestCreateCardPaymentValidation(t *testing.T) {
	c := NewClient("terminal", "secret", "http://unused")
	if _, err := c.CreateCardPayment(context.Background(), 0, "o", "d", "", ""); err == nil {
		t.Error("expected error for zero amount")
	}
}

func TestCreateCardPaymentDefaultReturnURLs(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Success":    true,
			"PaymentId":  7,
			"PaymentURL": "https://securepay.tinkoff.ru/pay/7",
		})
	}))
	defer server.Close()

	c := NewClient("terminal", "secret", server.URL)
	payURL, err := c.CreateCardPayment(context.Background(), 100000, "order-1", "VIP", "", "")
	if err != nil {
		t.Fatalf("CreateCardPayment: %v", err)
	}
	if payURL != "https://securepay.tinkoff.ru/pay/7" {
		t.Errorf("payURL = %q", payURL)
	}
	if body["SuccessURL"] != "https://t.me" || body["FailURL"] != "https://t.me" {
		t.Errorf("return urls = %v / %v", body["SuccessURL"], body["FailURL"])
	}
}

func TestCreateSBPPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Init":
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if body["PayType"] != "T" {
				t.Errorf("PayType = %v, want T", body["PayType"])
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"Success": true, "PaymentId": 900})
		case "/GetQr":
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if body["PaymentId"] != "900" {
				t.Errorf("GetQr PaymentId = %v", body["PaymentId"])
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"Success": true, "Data": "https://qr.nspk.ru/AS10003"})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	c := NewClient("terminal", "secret", server.URL)
	sbp, err := c.CreateSBPPayment(context.Background(), 50000, "order-2", "VIP")
	if err != nil {
		t.Fatalf("CreateSBPPayment: %v", err)
	}
	if sbp.PaymentID != "900" || sbp.QRCode != "https://qr.nspk.ru/AS10003" {
		t.Errorf("sbp = %+v", sbp)
	}
}

func TestCheckStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/GetState" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"Success": true, "Status": "CONFIRMED"})
	}))
	defer server.Close()

	c := NewClient("terminal", "secret", server.URL)
	status, err := c.CheckStatus(context.Background(), "900")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != "CONFIRMED" {
		t.Errorf("status = %q", status)
	}
}
