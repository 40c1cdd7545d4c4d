package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"telebot-admin/internal/admin"
	"telebot-admin/internal/bots"
	"telebot-admin/internal/platform"
	"telebot-admin/internal/rotation"
	"telebot-admin/internal/session"
	"telebot-admin/internal/shop"
	"telebot-admin/internal/warehouse"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"
)

// Conversation steps for text input.
const (
	stateRegFirstName = "REG_FIRST_NAME"
	stateRegLastName  = "REG_LAST_NAME"
	stateRegPhone     = "REG_PHONE"
	stateRegEmail     = "REG_EMAIL"
	stateRegCompany   = "REG_COMPANY"

	stateCreateName        = "CREATE_NAME"
	stateCreateToken       = "CREATE_TOKEN"
	stateCreateDescription = "CREATE_DESCRIPTION"
	stateCreateLogic       = "CREATE_LOGIC"
	stateCreateNumber      = "CREATE_NUMBER"

	stateRejectReason = "REJECT_REASON"

	stateSettingsPaymentURL = "SETTINGS_PAYMENT_URL"
	stateSettingsToken      = "SETTINGS_TOKEN"

	stateWarehouse = "WAREHOUSE"
)

// userState is everything the console remembers about one chat between
// updates: the resolved user, the active text-input step and whatever form
// that step is filling.
type userState struct {
	step       string
	user       *platform.User
	regForm    platform.CompleteRegistrationRequest
	createForm *bots.CreateForm
	draft      *bots.SettingsDraft
	rejectBot  int64
	botList    []bots.Bot
	warehouse  *warehouse.Conversation
}

// Bot is the Telegram operator console over the hosting platform.
type Bot struct {
	Instance  *telego.Bot
	Sessions  *session.Manager
	Bots      *bots.Service
	Admin     *admin.Service
	Rotation  *rotation.Service
	Shop      *shop.Service
	Warehouse *warehouse.Service
	Log       *zap.Logger
	TBankURL  string

	statesMu sync.RWMutex
	states   map[int64]*userState
}

func NewBot(token string, sessions *session.Manager, botsSvc *bots.Service, adminSvc *admin.Service, rotationSvc *rotation.Service, shopSvc *shop.Service, warehouseSvc *warehouse.Service, tbankURL string, log *zap.Logger) (*Bot, error) {
	tgBot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance:  tgBot,
		Sessions:  sessions,
		Bots:      botsSvc,
		Admin:     adminSvc,
		Rotation:  rotationSvc,
		Shop:      shopSvc,
		Warehouse: warehouseSvc,
		Log:       log,
		TBankURL:  tbankURL,
		states:    make(map[int64]*userState),
	}, nil
}

func (b *Bot) state(telegramID int64) *userState {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	st, ok := b.states[telegramID]
	if !ok {
		st = &userState{}
		b.states[telegramID] = st
	}
	return st
}

func (b *Bot) setStep(telegramID int64, step string) {
	st := b.state(telegramID)
	b.statesMu.Lock()
	st.step = step
	b.statesMu.Unlock()
}

func (b *Bot) currentDraft(telegramID int64) *bots.SettingsDraft {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	if st, ok := b.states[telegramID]; ok {
		return st.draft
	}
	return nil
}

func (b *Bot) currentStep(telegramID int64) string {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	if st, ok := b.states[telegramID]; ok {
		return st.step
	}
	return ""
}

// currentUser resolves the caller: in-memory first, then the persisted
// session. Nil means the user has to /start.
func (b *Bot) currentUser(ctx context.Context, telegramID int64) *platform.User {
	st := b.state(telegramID)
	if st.user != nil {
		return st.user
	}

	user, err := b.Sessions.Resume(ctx, telegramID)
	if err != nil {
		return nil
	}
	st.user = user
	return user
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if _, err := b.Instance.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		b.Log.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendWithMarkup(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) {
	if _, err := b.Instance.SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithReplyMarkup(markup)); err != nil {
		b.Log.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answer(ctx context.Context, callbackID string) {
	_ = b.Instance.AnswerCallbackQuery(ctx, tu.CallbackQuery(callbackID))
}

func mainMenuKeyboard(isAdmin bool) *telego.InlineKeyboardMarkup {
	rows := [][]telego.InlineKeyboardButton{
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🤖 Мои боты").WithCallbackData("my_bots"),
			tu.InlineKeyboardButton("➕ Создать бота").WithCallbackData("create_bot"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🏭 Демо склада").WithCallbackData("warehouse_demo"),
		),
	}
	if isAdmin {
		rows = append(rows,
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("🛡 Модерация").WithCallbackData("moderation"),
				tu.InlineKeyboardButton("🚀 Активация").WithCallbackData("activation"),
			),
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("🔄 Ротация QR").WithCallbackData("rotation"),
				tu.InlineKeyboardButton("📜 Журнал").WithCallbackData("audit"),
			),
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("👥 Пользователи").WithCallbackData("users"),
				tu.InlineKeyboardButton("♻️ Перезапуск движка").WithCallbackData("restart_engine"),
			),
		)
	}
	return tu.InlineKeyboard(rows...)
}

func (b *Bot) showMainMenu(ctx context.Context, chatID int64, user *platform.User) {
	b.sendWithMarkup(ctx, chatID,
		fmt.Sprintf("Привет, %s! 👋\n\nЭто консоль управления вашими ботами.", user.FirstName),
		mainMenuKeyboard(user.Role == "admin"))
}

// Start registers the handlers and blocks on long polling.
func (b *Bot) Start() {
	updates, _ := b.Instance.UpdatesViaLongPolling(context.Background(), nil)

	handler, _ := th.NewBotHandler(b.Instance, updates)

	// /start command
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		from := message.From

		st := b.state(from.ID)
		b.statesMu.Lock()
		st.step = ""
		st.warehouse = nil
		b.statesMu.Unlock()

		user, err := b.Sessions.Authenticate(ctx.Context(), session.Identity{
			TelegramID: from.ID,
			Username:   from.Username,
			FirstName:  from.FirstName,
			LastName:   from.LastName,
		})
		if errors.Is(err, session.ErrRegistrationRequired) {
			b.statesMu.Lock()
			st.user = user
			st.regForm = platform.CompleteRegistrationRequest{TelegramID: from.ID}
			st.step = stateRegFirstName
			b.statesMu.Unlock()
			b.send(ctx.Context(), message.Chat.ID, "Для начала работы нужно завершить регистрацию.\n\nВведите ваше имя:")
			return nil
		}
		if err != nil {
			b.Log.Warn("authentication failed", zap.Int64("telegram_id", from.ID), zap.Error(err))
			b.send(ctx.Context(), message.Chat.ID, "❌ Не удалось войти. Попробуйте позже.")
			return nil
		}

		b.statesMu.Lock()
		st.user = user
		b.statesMu.Unlock()

		b.showMainMenu(ctx.Context(), message.Chat.ID, user)
		return nil
	}, th.CommandEqual("start"))

	// /logout command
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		telegramID := update.Message.From.ID
		if err := b.Sessions.Logout(ctx.Context(), telegramID); err != nil {
			b.Log.Warn("logout failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
		}
		b.statesMu.Lock()
		delete(b.states, telegramID)
		b.statesMu.Unlock()
		b.send(ctx.Context(), update.Message.Chat.ID, "Вы вышли. Отправьте /start, чтобы войти снова.")
		return nil
	}, th.CommandEqual("logout"))

	b.registerUserHandlers(handler)
	b.registerAdminHandlers(handler)

	// Text input router: dispatches by the chat's current step.
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		return b.handleText(ctx, update)
	}, th.AnyMessageWithText())

	handler.Start()
}
