package warehouse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"telebot-admin/internal/config"
	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

func testService(t *testing.T, handler http.HandlerFunc, now time.Time) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Service{
		Platform: platform.NewClient(server.URL, config.Endpoints{Warehouse: "warehouse"}),
		Log:      zap.NewNop(),
		Now:      func() time.Time { return now },
	}
}

func TestTodayPastSlotsAreFilteredOut(t *testing.T) {
	now := time.Date(2026, time.September, 1, 15, 30, 0, 0, time.UTC)

	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"available_slots": []string{"09:00", "12:00", "15:30"},
		})
	}, now)

	conv := NewConversation(100, "driver", 1)
	conv.State.Step = StepSelectDate

	replies := svc.Handle(context.Background(), conv, dateLabel(now))
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	if !strings.Contains(replies[0].Text, "нет доступных слотов в будущем времени") {
		t.Errorf("reply = %q", replies[0].Text)
	}
	if conv.State.Step != StepSelectDate {
		t.Errorf("step = %v, want StepSelectDate", conv.State.Step)
	}
}

func TestTodayFutureSlotsSurvive(t *testing.T) {
	now := time.Date(2026, time.September, 1, 15, 30, 0, 0, time.UTC)

	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"available_slots": []string{"09:00", "16:00", "17:00"},
		})
	}, now)

	conv := NewConversation(100, "driver", 1)
	conv.State.Step = StepSelectDate

	replies := svc.Handle(context.Background(), conv, dateLabel(now))
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	if conv.State.Step != StepSelectTime {
		t.Fatalf("step = %v, want StepSelectTime", conv.State.Step)
	}

	flat := strings.Join(replies[0].Keyboard[0], " ")
	if strings.Contains(flat, "09:00") {
		t.Errorf("past slot leaked into keyboard: %v", replies[0].Keyboard)
	}
	if !strings.Contains(flat, "16:00") || !strings.Contains(flat, "17:00") {
		t.Errorf("future slots missing: %v", replies[0].Keyboard)
	}
}

func TestUnknownDateLabelReprompts(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an unresolvable date")
	}, now)

	conv := NewConversation(100, "driver", 1)
	conv.State.Step = StepSelectDate

	replies := svc.Handle(context.Background(), conv, "31 дек")
	if conv.State.Step != StepSelectDate {
		t.Errorf("step = %v, want StepSelectDate", conv.State.Step)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "Выберите дату") {
		t.Errorf("replies = %+v", replies)
	}
}

func TestBookingConflictReturnsToTimeSelection(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	day := now.AddDate(0, 0, 2)

	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "Это время уже занято"})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":         true,
				"available_slots": []string{"11:00", "12:00"},
			})
		}
	}, now)

	conv := NewConversation(100, "driver", 1)
	conv.State = State{
		Step:      StepEnterCargo,
		DateLabel: dateLabel(day),
		Date:      day.Format("2006-01-02"),
		Time:      "10:00",
		Phone:     "+79991234567",
		Company:   "ООО Ромашка",
		Vehicle:   "Газель",
	}

	replies := svc.Handle(context.Background(), conv, "-")
	if conv.State.Step != StepSelectTime {
		t.Fatalf("step = %v, want StepSelectTime", conv.State.Step)
	}
	if len(replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(replies))
	}
	if !strings.Contains(replies[0].Text, "уже занято") {
		t.Errorf("first reply = %q", replies[0].Text)
	}
	if !strings.Contains(strings.Join(replies[1].Keyboard[0], " "), "11:00") {
		t.Errorf("refetched slots missing: %+v", replies[1].Keyboard)
	}
	// The rest of the form survives the retry.
	if conv.State.Phone != "+79991234567" || conv.State.Vehicle != "Газель" {
		t.Errorf("form lost on conflict: %+v", conv.State)
	}
}

func TestBookingSuccessResetsConversation(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	day := now.AddDate(0, 0, 1)

	var got platform.CreateBookingRequest
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected %s request", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode booking: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "booking_id": 55})
	}, now)

	conv := NewConversation(100, "driver", 1)
	conv.State = State{
		Step:      StepEnterCargo,
		DateLabel: dateLabel(day),
		Date:      day.Format("2006-01-02"),
		Time:      "10:00",
		Phone:     "+79991234567",
		Company:   "ООО Ромашка",
		Vehicle:   "Газель",
	}

	replies := svc.Handle(context.Background(), conv, "Паллеты")
	if got.BookingDate != day.Format("2006-01-02") || got.BookingTime != "10:00" {
		t.Errorf("booking request = %+v", got)
	}
	if got.CargoDescription != "Паллеты" {
		t.Errorf("cargo = %q", got.CargoDescription)
	}
	if conv.State != (State{Step: StepMenu}) {
		t.Errorf("state not reset: %+v", conv.State)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "успешно создано") {
		t.Errorf("replies = %+v", replies)
	}
}

func TestCancelBookingByNumber(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

	var cancelledID string
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			cancelledID = r.URL.Query().Get("id")
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"bookings": []map[string]interface{}{
				{"id": 41, "booking_date": "2026-09-02", "booking_time": "10:00", "user_company": "ООО А", "vehicle_type": "Газель"},
				{"id": 42, "booking_date": "2026-09-03", "booking_time": "11:00", "user_company": "ООО Б", "vehicle_type": "Фура"},
			},
		})
	}, now)

	conv := NewConversation(100, "driver", 1)
	svc.Handle(context.Background(), conv, "📋 Мои бронирования")
	if len(conv.Bookings) != 2 {
		t.Fatalf("cached %d bookings, want 2", len(conv.Bookings))
	}

	replies := svc.Handle(context.Background(), conv, "❌ Отменить #2")
	if cancelledID != "42" {
		t.Errorf("cancelled id = %q, want 42", cancelledID)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "отменено") {
		t.Errorf("replies = %+v", replies)
	}
}
