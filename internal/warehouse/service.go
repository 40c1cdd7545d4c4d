package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

const (
	bookingWindowDays = 14
	cancelReason      = "Отменено пользователем"
)

var shortMonths = [...]string{
	"янв", "фев", "мар", "апр", "мая", "июн",
	"июл", "авг", "сен", "окт", "ноя", "дек",
}

var fullMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

func dateLabel(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), shortMonths[t.Month()-1])
}

func dateLong(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), fullMonths[t.Month()-1])
}

// Reply is one bot message: text plus an optional reply keyboard, rows of
// button labels.
type Reply struct {
	Text     string
	Keyboard [][]string
}

var menuKeyboard = [][]string{
	{labelStartBooking, labelMyBookings},
	{labelInfo},
}

func menuReply() Reply {
	return Reply{Text: "Главное меню:", Keyboard: menuKeyboard}
}

// Conversation is one user's chat with the warehouse bot.
type Conversation struct {
	UserID   int64
	Username string
	BotID    int64
	State    State
	// Bookings caches the last listed bookings so cancel-by-number buttons
	// can map back to ids.
	Bookings []platform.Booking
}

func NewConversation(userID int64, username string, botID int64) *Conversation {
	return &Conversation{
		UserID:   userID,
		Username: username,
		BotID:    botID,
	}
}

// Service drives warehouse booking conversations over the booking API.
// Now is injectable so today's past-slot filtering is testable.
type Service struct {
	Platform *platform.Client
	Log      *zap.Logger
	Now      func() time.Time
}

func NewService(client *platform.Client, log *zap.Logger) *Service {
	return &Service{
		Platform: client,
		Log:      log,
		Now:      time.Now,
	}
}

// Greeting opens a conversation.
func (s *Service) Greeting() Reply {
	return Reply{
		Text:     "Добро пожаловать! 🏭\n\nЯ помогу вам забронировать время для разгрузки на складе.",
		Keyboard: menuKeyboard,
	}
}

// Handle applies one user message to the conversation and returns the bot's
// replies. Transport errors degrade to an error reply; the conversation
// never gets stuck in a step it cannot leave.
func (s *Service) Handle(ctx context.Context, conv *Conversation, text string) []Reply {
	next, effects := Transition(conv.State, ParseInput(text))
	conv.State = next

	replies := make([]Reply, 0, len(effects))
	for _, effect := range effects {
		replies = append(replies, s.run(ctx, conv, effect)...)
	}
	return replies
}

func (s *Service) run(ctx context.Context, conv *Conversation, effect Effect) []Reply {
	switch effect.Kind {
	case EffectShowMenu:
		return []Reply{menuReply()}
	case EffectShowDates:
		return []Reply{s.datePrompt()}
	case EffectShowInfo:
		return []Reply{s.infoReply(ctx, conv.BotID)}
	case EffectFetchSlots:
		return s.fetchSlots(ctx, conv)
	case EffectPromptPhone:
		return []Reply{{Text: "Введите ваш номер телефона:", Keyboard: [][]string{{labelCancel}}}}
	case EffectPromptCompany:
		return []Reply{{Text: "Введите название вашей компании:", Keyboard: [][]string{{labelCancel}}}}
	case EffectPromptVehicle:
		return []Reply{{
			Text: "Выберите тип транспорта:",
			Keyboard: [][]string{
				{"Газель", "Фургон"},
				{"Фура", "Манипулятор"},
				{"Контейнер"},
				{labelCancel},
			},
		}}
	case EffectPromptCargo:
		return []Reply{{Text: "Опишите груз (или отправьте \"-\" чтобы пропустить):", Keyboard: [][]string{{labelCancel}}}}
	case EffectSubmitBooking:
		return s.submitBooking(ctx, conv)
	case EffectListBookings:
		return s.listBookings(ctx, conv)
	case EffectCancelBooking:
		return s.cancelBooking(ctx, conv, effect.Index)
	}
	return nil
}

func (s *Service) datePrompt() Reply {
	today := s.Now()
	labels := make([]string, 0, bookingWindowDays)
	for i := 0; i < bookingWindowDays; i++ {
		labels = append(labels, dateLabel(today.AddDate(0, 0, i)))
	}

	keyboard := rows(labels, 3)
	keyboard = append(keyboard, []string{labelCancel})
	return Reply{Text: "Выберите дату разгрузки:", Keyboard: keyboard}
}

// resolveDate maps a date button label back to the calendar day it was
// generated for.
func (s *Service) resolveDate(label string) (time.Time, bool) {
	today := s.Now()
	for i := 0; i < bookingWindowDays; i++ {
		day := today.AddDate(0, 0, i)
		if dateLabel(day) == label {
			return day, true
		}
	}
	return time.Time{}, false
}

func (s *Service) fetchSlots(ctx context.Context, conv *Conversation) []Reply {
	day, ok := s.resolveDate(conv.State.DateLabel)
	if !ok {
		conv.State.Step = StepSelectDate
		return []Reply{s.datePrompt()}
	}
	conv.State.Date = day.Format("2006-01-02")

	slots, err := s.Platform.AvailableSlots(ctx, conv.State.Date, conv.BotID)
	if err != nil {
		s.Log.Warn("failed to load slots", zap.String("date", conv.State.Date), zap.Error(err))
		return []Reply{{Text: "Ошибка загрузки слотов. Попробуйте позже.", Keyboard: [][]string{{labelCancel}}}}
	}

	if len(slots) == 0 {
		conv.State.Step = StepSelectDate
		return []Reply{{
			Text:     "На выбранную дату нет свободных слотов.\n\nВыберите другую дату:",
			Keyboard: [][]string{{labelCancel}},
		}}
	}

	now := s.Now()
	if sameDay(day, now) {
		slots = futureSlots(slots, now)
		if len(slots) == 0 {
			conv.State.Step = StepSelectDate
			return []Reply{{
				Text:     "На выбранную дату нет доступных слотов в будущем времени.\n\nВыберите другую дату:",
				Keyboard: [][]string{{labelCancel}},
			}}
		}
	}

	keyboard := rows(slots, 3)
	keyboard = append(keyboard, []string{labelCancel})
	return []Reply{{
		Text:     fmt.Sprintf("Выберите время на %s:", dateLong(day)),
		Keyboard: keyboard,
	}}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// futureSlots drops "HH:MM" slots at or before now.
func futureSlots(slots []string, now time.Time) []string {
	kept := make([]string, 0, len(slots))
	for _, slot := range slots {
		var hour, minute int
		if _, err := fmt.Sscanf(slot, "%d:%d", &hour, &minute); err != nil {
			continue
		}
		if hour > now.Hour() || (hour == now.Hour() && minute > now.Minute()) {
			kept = append(kept, slot)
		}
	}
	return kept
}

func (s *Service) submitBooking(ctx context.Context, conv *Conversation) []Reply {
	state := conv.State
	_, err := s.Platform.CreateBooking(ctx, platform.CreateBookingRequest{
		TelegramUserID:   conv.UserID,
		TelegramUsername: conv.Username,
		BookingDate:      state.Date,
		BookingTime:      state.Time,
		UserPhone:        state.Phone,
		UserCompany:      state.Company,
		VehicleType:      state.Vehicle,
		CargoDescription: state.Cargo,
		BotID:            conv.BotID,
	})
	if errors.Is(err, platform.ErrSlotTaken) {
		// Someone grabbed the slot mid-conversation. Back to time selection
		// with a fresh slot list; the rest of the form survives.
		conv.State.Step = StepSelectTime
		replies := []Reply{{Text: "❌ Это время уже занято.\n\nПопробуйте другое время."}}
		return append(replies, s.fetchSlots(ctx, conv)...)
	}
	if err != nil {
		s.Log.Warn("failed to create booking",
			zap.Int64("user_id", conv.UserID),
			zap.Error(err))
		conv.State = State{Step: StepMenu}
		return []Reply{{
			Text:     fmt.Sprintf("❌ Ошибка: %s\n\nПопробуйте другое время.", err.Error()),
			Keyboard: menuKeyboard,
		}}
	}

	day, _ := s.resolveDate(state.DateLabel)
	s.Log.Info("booking created",
		zap.Int64("user_id", conv.UserID),
		zap.String("date", state.Date),
		zap.String("time", state.Time))

	conv.State = State{Step: StepMenu}
	return []Reply{{
		Text: fmt.Sprintf(
			"✅ Бронирование успешно создано!\n\n📅 Дата: %s %d\n⏰ Время: %s\n🏢 Компания: %s\n🚚 Транспорт: %s\n\nЖдём вас на складе!",
			dateLong(day), day.Year(), state.Time, state.Company, state.Vehicle),
		Keyboard: [][]string{{labelBookAgain, labelMyBookings}},
	}}
}

func (s *Service) listBookings(ctx context.Context, conv *Conversation) []Reply {
	today := s.Now().Format("2006-01-02")
	bookings, err := s.Platform.ListBookings(ctx, conv.UserID, today, "active")
	if err != nil {
		s.Log.Warn("failed to list bookings", zap.Int64("user_id", conv.UserID), zap.Error(err))
		return []Reply{{Text: "❌ Ошибка загрузки бронирований.", Keyboard: [][]string{{labelBack}}}}
	}

	if len(bookings) == 0 {
		return []Reply{{
			Text:     "📋 У вас пока нет активных бронирований.",
			Keyboard: [][]string{{labelStartBooking}},
		}}
	}

	conv.Bookings = bookings

	var b strings.Builder
	b.WriteString("📋 Ваши активные бронирования:\n\n")
	cancelButtons := make([]string, 0, len(bookings))
	for i, booking := range bookings {
		fmt.Fprintf(&b, "%d. %s в %s\n", i+1, formatBookingDate(booking.BookingDate), booking.BookingTime)
		fmt.Fprintf(&b, "   🏢 %s\n", booking.UserCompany)
		fmt.Fprintf(&b, "   🚚 %s\n\n", booking.VehicleType)
		cancelButtons = append(cancelButtons, fmt.Sprintf("%s%d", labelCancelPrefix, i+1))
	}

	keyboard := rows(cancelButtons, 2)
	keyboard = append(keyboard, []string{labelBack})
	return []Reply{{Text: b.String(), Keyboard: keyboard}}
}

func formatBookingDate(raw string) string {
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return raw
	}
	return dateLong(day)
}

func (s *Service) cancelBooking(ctx context.Context, conv *Conversation, index int) []Reply {
	if index < 0 || index >= len(conv.Bookings) {
		return []Reply{menuReply()}
	}

	booking := conv.Bookings[index]
	if err := s.Platform.CancelBooking(ctx, booking.ID, cancelReason); err != nil {
		s.Log.Warn("failed to cancel booking",
			zap.Int64("booking_id", booking.ID),
			zap.Error(err))
		return []Reply{{Text: "❌ Ошибка отмены бронирования.", Keyboard: [][]string{{labelBack}}}}
	}

	s.Log.Info("booking cancelled", zap.Int64("booking_id", booking.ID))
	return []Reply{{
		Text:     "✅ Бронирование отменено!\n\nВремя снова доступно для других.",
		Keyboard: [][]string{{labelStartBooking, labelMyBookings}},
	}}
}

func (s *Service) infoReply(ctx context.Context, botID int64) Reply {
	text := "📋 Информация о бронировании:\n\n" +
		"⏰ Рабочие часы: 8:00 - 18:00\n" +
		"📅 Длительность слота: 60 минут\n" +
		"🔄 Рабочие дни: Пн-Пт\n" +
		"❌ Вы можете отменить бронь в любое время\n\n" +
		"После отмены время снова станет доступным для других."

	if schedule, err := s.Platform.WarehouseSchedule(ctx, botID); err == nil {
		text = fmt.Sprintf(
			"📋 Информация о бронировании:\n\n"+
				"⏰ Рабочие часы: %s - %s\n"+
				"📅 Длительность слота: %d минут\n"+
				"🔄 Рабочие дни: %s\n"+
				"❌ Вы можете отменить бронь в любое время\n\n"+
				"После отмены время снова станет доступным для других.",
			schedule.WorkStartTime, schedule.WorkEndTime,
			schedule.SlotDurationMinutes, schedule.WorkDays)
	}

	return Reply{
		Text:     text,
		Keyboard: [][]string{{labelStartBooking, labelMyBookings}},
	}
}

// rows chunks labels into keyboard rows of at most width buttons.
func rows(labels []string, width int) [][]string {
	out := make([][]string, 0, (len(labels)+width-1)/width)
	for i := 0; i < len(labels); i += width {
		end := i + width
		if end > len(labels) {
			end = len(labels)
		}
		out = append(out, labels[i:end])
	}
	return out
}
