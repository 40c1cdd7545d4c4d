package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"telebot-admin/internal/platform"
)

func TestApproveDefaultsReason(t *testing.T) {
	var req platform.ModerateRequest
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/moderation" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "Бот одобрен"})
	})

	result, err := svc.Approve(context.Background(), 1, 5, "")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if req.Action != "approve" || req.Reason != "Бот прошел проверку" {
		t.Errorf("moderate request = %+v", req)
	}
	if result.Message != "Бот одобрен" {
		t.Errorf("result = %+v", result)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when the reason is missing")
	})

	_, err := svc.Reject(context.Background(), 1, 5, "")
	if !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("err = %v, want ErrReasonRequired", err)
	}
}

func TestRejectSendsReason(t *testing.T) {
	var req platform.ModerateRequest
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "ok"})
	})

	if _, err := svc.Reject(context.Background(), 1, 5, "Нет описания"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if req.Action != "reject" || req.Reason != "Нет описания" || req.BotID != 5 {
		t.Errorf("moderate request = %+v", req)
	}
}
