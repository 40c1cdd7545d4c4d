package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"telebot-admin/internal/config"
	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

func testService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := platform.NewClient(server.URL, config.Endpoints{
		Moderation:   "moderation",
		Activation:   "activation",
		QRGenerate:   "qr",
		SetupWebhook: "setup-webhook",
	})
	return NewService(client, nil, zap.NewNop())
}

func TestActivateRunsAllSteps(t *testing.T) {
	var calls []string
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/qr":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"bot_id":   5,
				"bot_name": "Alpha",
				"qr_codes_created": map[string]interface{}{
					"free": 10, "paid": 3, "message": "created",
				},
			})
		case "/setup-webhook":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"action": "setup", "bot_id": 5,
				"telegram_result": map[string]interface{}{"ok": true},
			})
		case "/activation":
			var req platform.ActivationRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Action != "activate" || req.BotID != 5 || req.AdminID != 1 {
				t.Errorf("activation request = %+v", req)
			}
			json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})

	report, err := svc.Activate(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if len(calls) != 3 || calls[0] != "/qr" || calls[1] != "/setup-webhook" || calls[2] != "/activation" {
		t.Errorf("calls = %v", calls)
	}
	if report.QRCodes == nil || report.QRCodes.Free != 10 || report.QRCodes.Paid != 3 {
		t.Errorf("qr report = %+v", report.QRCodes)
	}
	if report.QRWarning != "" {
		t.Errorf("unexpected qr warning %q", report.QRWarning)
	}
	if report.Webhook == nil || !report.Webhook.OK {
		t.Errorf("webhook report = %+v", report.Webhook)
	}
}

func TestActivateQRFailureIsOnlyAWarning(t *testing.T) {
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/qr":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "already has codes"})
		case "/setup-webhook":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"telegram_result": map[string]interface{}{"ok": true},
			})
		case "/activation":
			json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
		}
	})

	report, err := svc.Activate(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if report.QRWarning == "" {
		t.Error("expected a qr warning")
	}
	if report.QRCodes != nil {
		t.Errorf("qr codes should be nil on warning, got %+v", report.QRCodes)
	}
}

func TestActivateAbortsWhenTelegramRefusesWebhook(t *testing.T) {
	activationCalled := false
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/qr":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"qr_codes_created": map[string]interface{}{"free": 10},
			})
		case "/setup-webhook":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"telegram_result": map[string]interface{}{
					"ok": false, "description": "Unauthorized",
				},
			})
		case "/activation":
			activationCalled = true
		}
	})

	report, err := svc.Activate(context.Background(), 1, 5)
	if !errors.Is(err, ErrWebhookFailed) {
		t.Fatalf("err = %v, want ErrWebhookFailed", err)
	}
	if activationCalled {
		t.Error("activation flag was flipped after a failed webhook")
	}
	if report.Webhook == nil || report.Webhook.OK || report.Webhook.Description != "Unauthorized" {
		t.Errorf("webhook report = %+v", report.Webhook)
	}
}

func TestDeactivateOnlyFlipsTheFlag(t *testing.T) {
	var calls []string
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		var req platform.ActivationRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Action != "deactivate" {
			t.Errorf("action = %q", req.Action)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})

	if err := svc.Deactivate(context.Background(), 1, 5); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if len(calls) != 1 || calls[0] != "/activation" {
		t.Errorf("calls = %v, want only /activation", calls)
	}
}
