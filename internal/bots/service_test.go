package bots

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

func testService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := platform.NewClient(server.URL, config.Endpoints{
		Bots:       "bots",
		EngineSync: "sync",
		BotStats:   "stats",
		BotUsers:   "bot-users",
	})
	return NewService(client, zap.NewNop()), server
}

func validForm() *CreateForm {
	form := NewCreateForm()
	form.Name = "Test"
	form.Token = "123:abc"
	form.Description = "Раздача ключей"
	form.Logic = "Выдаёт QR-коды по запросу"
	form.UniqueNumber = "123456"
	return form
}

func TestCreateBotValidation(t *testing.T) {
	// No server: validation failures must never reach the network.
	service := NewService(nil, zap.NewNop())
	user := &platform.User{ID: 1, Role: "user"}

	tests := []struct {
		name   string
		mutate func(*CreateForm)
	}{
		{"missing name", func(f *CreateForm) { f.Name = "" }},
		{"missing token", func(f *CreateForm) { f.Token = "" }},
		{"missing description", func(f *CreateForm) { f.Description = "" }},
		{"missing logic", func(f *CreateForm) { f.Logic = "" }},
		{"short number", func(f *CreateForm) { f.UniqueNumber = "12345" }},
		{"long number", func(f *CreateForm) { f.UniqueNumber = "1234567" }},
		{"non-digit number", func(f *CreateForm) { f.UniqueNumber = "12a456" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(form)

			_, err := service.CreateBot(context.Background(), user, form, nil)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateBotOneBotLimit(t *testing.T) {
	service := NewService(nil, zap.NewNop())

	existing := []Bot{{ID: 1, Name: "First"}}
	_, err := service.CreateBot(context.Background(), &platform.User{ID: 1, Role: "user"}, validForm(), existing)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for second bot, got %v", err)
	}
}

func TestCreateBotAdminBypassesLimit(t *testing.T) {
	service, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"bot": map[string]interface{}{"id": 9, "name": "Second", "moderation_status": "pending"},
		})
	}))

	existing := []Bot{{ID: 1}, {ID: 2}}
	bot, err := service.CreateBot(context.Background(), &platform.User{ID: 1, Role: "admin"}, validForm(), existing)
	if err != nil {
		t.Fatalf("CreateBot: %v", err)
	}
	if bot.ModerationStatus != "pending" {
		t.Errorf("moderation status = %q, want pending", bot.ModerationStatus)
	}
}

func TestCreateBotResetsFormOnSuccess(t *testing.T) {
	service, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"bot": map[string]interface{}{"id": 3, "name": "Test", "moderation_status": "pending"},
		})
	}))

	form := validForm()
	if _, err := service.CreateBot(context.Background(), &platform.User{ID: 1, Role: "user"}, form, nil); err != nil {
		t.Fatalf("CreateBot: %v", err)
	}

	if form.Name != "" || form.UniqueNumber != "" {
		t.Errorf("form not reset: %+v", form)
	}
	if form.QRFreeCount != defaultQRFreeCount || form.Template != defaultTemplate {
		t.Errorf("form defaults not restored: %+v", form)
	}
}

func TestToggleStatus(t *testing.T) {
	var received map[string]interface{}
	service, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(map[string]interface{}{"bot": map[string]interface{}{"id": 5}})
	}))

	newStatus, err := service.ToggleStatus(context.Background(), 5, "active")
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if newStatus != "inactive" {
		t.Errorf("newStatus = %q, want inactive", newStatus)
	}
	if received["status"] != "inactive" {
		t.Errorf("sent status = %v", received["status"])
	}
}

func TestStatsDegradesOnUsersFailure(t *testing.T) {
	service, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stats":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"stats": map[string]interface{}{"bot_id": 5, "bot_name": "Alpha", "total_users": 10},
			})
		case "/bot-users":
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
		}
	}))

	combined, err := service.Stats(context.Background(), 5)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if combined.Stats.TotalUsers != 10 {
		t.Errorf("total users = %d", combined.Stats.TotalUsers)
	}
	if len(combined.Users) != 0 {
		t.Errorf("expected empty user list, got %d", len(combined.Users))
	}
}

func TestStatsFailsOnStatsFailure(t *testing.T) {
	service, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stats":
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
		case "/bot-users":
			json.NewEncoder(w).Encode(map[string]interface{}{"users": []interface{}{}})
		}
	}))

	if _, err := service.Stats(context.Background(), 5); err == nil {
		t.Fatal("expected error when stats fetch fails")
	}
}
