package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"telebot-admin/internal/bots"
	"telebot-admin/internal/payment"
	"telebot-admin/internal/platform"
	"telebot-admin/internal/utils"
	"telebot-admin/internal/warehouse"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

const warehouseDemoBotID = 1

func callbackID(data, prefix string) int64 {
	id, _ := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id
}

// requireUser resolves the caller or prompts them to /start.
func (b *Bot) requireUser(ctx context.Context, telegramID int64) *platform.User {
	user := b.currentUser(ctx, telegramID)
	if user == nil {
		b.send(ctx, telegramID, "Сессия не найдена. Отправьте /start, чтобы войти.")
	}
	return user
}

func (b *Bot) findBot(telegramID, botID int64) (bots.Bot, bool) {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	st, ok := b.states[telegramID]
	if !ok {
		return bots.Bot{}, false
	}
	for _, bot := range st.botList {
		if bot.ID == botID {
			return bot, true
		}
	}
	return bots.Bot{}, false
}

func moderationIcon(status string) string {
	switch status {
	case "approved":
		return "✅"
	case "rejected":
		return "❌"
	default:
		return "🕐"
	}
}

func (b *Bot) registerUserHandlers(handler *th.BotHandler) {
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		if user := b.requireUser(ctx.Context(), callback.From.ID); user != nil {
			b.showMainMenu(ctx.Context(), callback.From.ID, user)
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("main_menu"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		b.showBotList(ctx.Context(), callback.From.ID)
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("my_bots"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireUser(ctx.Context(), telegramID); user != nil {
			st := b.state(telegramID)
			b.statesMu.Lock()
			st.createForm = bots.NewCreateForm()
			st.step = stateCreateName
			b.statesMu.Unlock()
			b.send(ctx.Context(), telegramID, "➕ Создание бота.\n\nВведите название бота:")
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("create_bot"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID

		st := b.state(telegramID)
		conv := warehouse.NewConversation(telegramID, callback.From.Username, warehouseDemoBotID)
		b.statesMu.Lock()
		st.warehouse = conv
		st.step = stateWarehouse
		b.statesMu.Unlock()

		b.sendReplies(ctx.Context(), telegramID, []warehouse.Reply{b.Warehouse.Greeting()})
		b.send(ctx.Context(), telegramID, "Это демо чата склада. Отправьте /start, чтобы выйти.")
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("warehouse_demo"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		b.showStats(ctx.Context(), callback.From.ID, callbackID(callback.Data, "stats_"))
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("stats_"))

	// shopcat_<botID>_<categoryID> must be registered before the shop_
	// prefix.
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID

		parts := strings.SplitN(strings.TrimPrefix(callback.Data, "shopcat_"), "_", 2)
		if len(parts) == 2 {
			botID, _ := strconv.ParseInt(parts[0], 10, 64)
			categoryID, _ := strconv.ParseInt(parts[1], 10, 64)
			b.showShopProducts(ctx.Context(), telegramID, botID, categoryID)
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("shopcat_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		b.showShopCategories(ctx.Context(), callback.From.ID, callbackID(callback.Data, "shop_"))
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("shop_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		botID := callbackID(callback.Data, "toggle_")

		bot, ok := b.findBot(telegramID, botID)
		if !ok {
			b.send(ctx.Context(), telegramID, "Бот не найден. Откройте список заново.")
			b.answer(ctx.Context(), callback.ID)
			return nil
		}

		action := "Запустить"
		if bot.Status == "active" {
			action = "Остановить"
		}
		b.sendWithMarkup(ctx.Context(), telegramID,
			fmt.Sprintf("%s бота «%s»?", action, bot.Name),
			tu.InlineKeyboard(
				tu.InlineKeyboardRow(
					tu.InlineKeyboardButton("✅ Да").WithCallbackData(fmt.Sprintf("confirmtoggle_%d", botID)),
					tu.InlineKeyboardButton("↩️ Отмена").WithCallbackData("my_bots"),
				),
			))
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("toggle_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		botID := callbackID(callback.Data, "confirmtoggle_")

		bot, ok := b.findBot(telegramID, botID)
		if !ok {
			b.send(ctx.Context(), telegramID, "Бот не найден. Откройте список заново.")
			b.answer(ctx.Context(), callback.ID)
			return nil
		}

		newStatus, err := b.Bots.ToggleStatus(ctx.Context(), botID, bot.Status)
		if err != nil {
			b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ %s", err.Error()))
		} else {
			label := "остановлен"
			if newStatus == "active" {
				label = "запущен"
			}
			b.send(ctx.Context(), telegramID, fmt.Sprintf("Бот «%s» %s.", bot.Name, label))
			b.showBotList(ctx.Context(), telegramID)
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("confirmtoggle_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		botID := callbackID(callback.Data, "confirmdel_")

		if err := b.Bots.DeleteBot(ctx.Context(), botID); err != nil {
			b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ %s", err.Error()))
		} else {
			b.send(ctx.Context(), telegramID, "Бот удалён.")
		}
		b.showBotList(ctx.Context(), telegramID)
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("confirmdel_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		botID := callbackID(callback.Data, "delete_")

		name := fmt.Sprintf("#%d", botID)
		if bot, ok := b.findBot(telegramID, botID); ok {
			name = fmt.Sprintf("«%s»", bot.Name)
		}
		b.sendWithMarkup(ctx.Context(), telegramID,
			fmt.Sprintf("Удалить бота %s? Это действие необратимо.", name),
			tu.InlineKeyboard(
				tu.InlineKeyboardRow(
					tu.InlineKeyboardButton("🗑 Да, удалить").WithCallbackData(fmt.Sprintf("confirmdel_%d", botID)),
					tu.InlineKeyboardButton("↩️ Отмена").WithCallbackData("my_bots"),
				),
			))
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("delete_"))

	// Settings: save and cancel must be registered before the generic
	// settings_ prefix.
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID

		draft := b.currentDraft(telegramID)
		if draft == nil {
			b.answer(ctx.Context(), callback.ID)
			return nil
		}

		if err := b.Bots.SaveSettings(ctx.Context(), draft); err != nil {
			b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ %s\n\nНастройки не сохранены, исправьте и попробуйте снова.", err.Error()))
		} else {
			st := b.state(telegramID)
			b.statesMu.Lock()
			st.draft = nil
			b.statesMu.Unlock()
			b.send(ctx.Context(), telegramID, "✅ Настройки сохранены.")
			b.showBotList(ctx.Context(), telegramID)
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("settings_save_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		st := b.state(telegramID)
		b.statesMu.Lock()
		st.draft = nil
		b.statesMu.Unlock()
		b.send(ctx.Context(), telegramID, "Изменения отменены.")
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("settings_cancel_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		botID := callbackID(callback.Data, "settings_")

		bot, ok := b.findBot(telegramID, botID)
		if !ok {
			b.send(ctx.Context(), telegramID, "Бот не найден. Откройте список заново.")
			b.answer(ctx.Context(), callback.ID)
			return nil
		}

		st := b.state(telegramID)
		b.statesMu.Lock()
		st.draft = bots.NewDraft(bot)
		b.statesMu.Unlock()

		b.showSettings(ctx.Context(), telegramID)
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("settings_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID

		if draft := b.currentDraft(telegramID); draft != nil {
			draft.PaymentEnabled = !draft.PaymentEnabled
		}

		b.showSettings(ctx.Context(), telegramID)
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("pay_toggle_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		b.setStep(callback.From.ID, stateSettingsPaymentURL)
		b.send(ctx.Context(), callback.From.ID, "Введите ссылку на оплату:")
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("pay_url_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		b.setStep(callback.From.ID, stateSettingsToken)
		b.send(ctx.Context(), callback.From.ID, "Введите новый токен Telegram-бота:")
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("token_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID

		draft := b.currentDraft(telegramID)
		if draft == nil {
			b.answer(ctx.Context(), callback.ID)
			return nil
		}

		if draft.TBankTerminalKey == "" || draft.TBankPassword == "" {
			b.send(ctx.Context(), telegramID, "❌ Сначала укажите ключ терминала и пароль T-Bank в настройках платформы.")
			b.answer(ctx.Context(), callback.ID)
			return nil
		}

		client := payment.NewClient(draft.TBankTerminalKey, draft.TBankPassword, b.TBankURL)
		result, err := client.TestPayment(ctx.Context(), 0)
		if err != nil {
			b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ Тестовый платёж не прошёл: %s", err.Error()))
		} else {
			b.send(ctx.Context(), telegramID, fmt.Sprintf("%s\n\n🔗 %s", result.Message, result.PaymentURL))
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("tbank_test_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		botID := callbackID(callback.Data, "webhook_")

		result, err := b.Bots.SetWebhook(ctx.Context(), botID)
		if err != nil {
			b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ %s", err.Error()))
		} else {
			b.send(ctx.Context(), telegramID, fmt.Sprintf("✅ %s\n\n%s", result.Message, result.WebhookURL))
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("webhook_"))
}

func (b *Bot) showBotList(ctx context.Context, telegramID int64) {
	user := b.requireUser(ctx, telegramID)
	if user == nil {
		return
	}

	list, err := b.Bots.LoadUserBots(ctx, user.ID)
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	st := b.state(telegramID)
	b.statesMu.Lock()
	st.botList = list
	b.statesMu.Unlock()

	if len(list) == 0 {
		b.sendWithMarkup(ctx, telegramID, "У вас пока нет ботов.",
			tu.InlineKeyboard(tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("➕ Создать бота").WithCallbackData("create_bot"),
			)))
		return
	}

	for _, bot := range list {
		statusIcon := "⏸"
		if bot.Status == "active" {
			statusIcon = "▶️"
		}
		text := fmt.Sprintf("%s %s\n\nШаблон: %s\nМодерация: %s %s\n👥 %d  ✉️ %d",
			statusIcon, bot.Name, bot.Template,
			moderationIcon(bot.ModerationStatus), bot.ModerationStatus,
			bot.Users, bot.Messages)
		if bot.ModerationStatus == "rejected" && bot.ModerationReason != "" {
			text += fmt.Sprintf("\n\nПричина отклонения: %s", bot.ModerationReason)
		}

		rows := [][]telego.InlineKeyboardButton{
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("📊 Статистика").WithCallbackData(fmt.Sprintf("stats_%d", bot.ID)),
				tu.InlineKeyboardButton("⚙️ Настройки").WithCallbackData(fmt.Sprintf("settings_%d", bot.ID)),
			),
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("⏯ Вкл/выкл").WithCallbackData(fmt.Sprintf("toggle_%d", bot.ID)),
				tu.InlineKeyboardButton("🗑 Удалить").WithCallbackData(fmt.Sprintf("delete_%d", bot.ID)),
			),
		}
		if bot.Template == "shop" {
			rows = append(rows, tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("🛍 Каталог").WithCallbackData(fmt.Sprintf("shop_%d", bot.ID)),
			))
		}
		b.sendWithMarkup(ctx, telegramID, text, tu.InlineKeyboard(rows...))
	}
}

func (b *Bot) showSettings(ctx context.Context, telegramID int64) {
	draft := b.currentDraft(telegramID)
	if draft == nil {
		return
	}

	payState := "выключена"
	if draft.PaymentEnabled {
		payState = "включена"
	}
	payURL := draft.PaymentURL
	if payURL == "" {
		payURL = "не задана"
	}

	text := fmt.Sprintf("⚙️ Настройки бота #%d\n\n💳 Оплата: %s\n🔗 Ссылка на оплату: %s\n💰 Цена VIP: %d ₽",
		draft.BotID, payState, payURL, draft.VIPPrice)

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("💳 Вкл/выкл оплату").WithCallbackData(fmt.Sprintf("pay_toggle_%d", draft.BotID)),
			tu.InlineKeyboardButton("🔗 Ссылка на оплату").WithCallbackData(fmt.Sprintf("pay_url_%d", draft.BotID)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🔑 Сменить токен").WithCallbackData(fmt.Sprintf("token_%d", draft.BotID)),
			tu.InlineKeyboardButton("🧪 Тест T-Bank").WithCallbackData(fmt.Sprintf("tbank_test_%d", draft.BotID)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🌐 Настроить webhook").WithCallbackData(fmt.Sprintf("webhook_%d", draft.BotID)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("💾 Сохранить").WithCallbackData(fmt.Sprintf("settings_save_%d", draft.BotID)),
			tu.InlineKeyboardButton("✖️ Отмена").WithCallbackData(fmt.Sprintf("settings_cancel_%d", draft.BotID)),
		),
	)
	b.sendWithMarkup(ctx, telegramID, text, keyboard)
}

func (b *Bot) showStats(ctx context.Context, telegramID, botID int64) {
	combined, err := b.Bots.Stats(ctx, botID)
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	stats := combined.Stats
	text := fmt.Sprintf("📊 %s\n\n👥 Пользователей: %d\n✉️ Сообщений: %d\n\n🎟 QR-коды:\n  Всего: %d\n  Использовано: %d\n  Доступно: %d\n  Бесплатных: %d из %d\n  VIP: %d из %d",
		stats.BotName, stats.TotalUsers, stats.TotalMessages,
		stats.QRCodes.Total, stats.QRCodes.Used, stats.QRCodes.Available,
		stats.QRCodes.FreeTotal, stats.QRCodes.FreeConfigured,
		stats.QRCodes.VIPTotal, stats.QRCodes.VIPConfigured)

	if len(combined.Users) > 0 {
		text += "\n\nПоследние пользователи:"
		limit := len(combined.Users)
		if limit > 5 {
			limit = 5
		}
		for _, u := range combined.Users[:limit] {
			name := strings.TrimSpace(u.FirstName + " " + u.LastName)
			if u.Username != "" {
				name += " @" + u.Username
			}
			text += fmt.Sprintf("\n• %s (QR: %d)", name, u.QRCodesCount)
		}
	}

	b.send(ctx, telegramID, text)
}

func (b *Bot) showShopCategories(ctx context.Context, telegramID, botID int64) {
	categories, err := b.Shop.Categories(ctx, botID)
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	if len(categories) == 0 {
		b.send(ctx, telegramID, "🛍 В каталоге пока нет категорий.")
		return
	}

	rows := make([][]telego.InlineKeyboardButton, 0, len(categories))
	for _, category := range categories {
		label := category.Name
		if category.Emoji != "" {
			label = category.Emoji + " " + label
		}
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).
				WithCallbackData(fmt.Sprintf("shopcat_%d_%d", botID, category.ID)),
		))
	}
	b.sendWithMarkup(ctx, telegramID, "🛍 Категории каталога:", tu.InlineKeyboard(rows...))
}

func (b *Bot) showShopProducts(ctx context.Context, telegramID, botID, categoryID int64) {
	products, err := b.Shop.Products(ctx, botID, categoryID)
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	if len(products) == 0 {
		b.send(ctx, telegramID, "В этой категории пока нет товаров.")
		return
	}

	var text strings.Builder
	text.WriteString("Товары:\n")
	for _, product := range products {
		availability := ""
		if !product.IsAvailable {
			availability = " (нет в наличии)"
		}
		fmt.Fprintf(&text, "\n• %s — %.2f ₽%s", product.Name, product.Price, availability)
		if product.Description != "" {
			fmt.Fprintf(&text, "\n  %s", product.Description)
		}
	}
	b.send(ctx, telegramID, text.String())
}

func (b *Bot) sendReplies(ctx context.Context, chatID int64, replies []warehouse.Reply) {
	for _, reply := range replies {
		if len(reply.Keyboard) == 0 {
			b.send(ctx, chatID, reply.Text)
			continue
		}
		rows := make([][]telego.KeyboardButton, 0, len(reply.Keyboard))
		for _, row := range reply.Keyboard {
			buttons := make([]telego.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tu.KeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		b.sendWithMarkup(ctx, chatID, reply.Text, tu.Keyboard(rows...).WithResizeKeyboard())
	}
}

// handleText routes a plain text message by the chat's current step.
func (b *Bot) handleText(ctx *th.Context, update telego.Update) error {
	telegramID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)

	step := b.currentStep(telegramID)
	if step == "" {
		return nil
	}

	switch step {
	case stateRegFirstName, stateRegLastName, stateRegPhone, stateRegEmail, stateRegCompany:
		b.handleRegistrationInput(ctx.Context(), telegramID, step, text)
	case stateCreateName, stateCreateToken, stateCreateDescription, stateCreateLogic, stateCreateNumber:
		b.handleWizardInput(ctx.Context(), telegramID, step, text)
	case stateRejectReason:
		b.handleRejectReason(ctx.Context(), telegramID, text)
	case stateSettingsPaymentURL:
		st := b.state(telegramID)
		b.statesMu.Lock()
		if st.draft != nil {
			st.draft.PaymentURL = text
		}
		st.step = ""
		b.statesMu.Unlock()
		b.showSettings(ctx.Context(), telegramID)
	case stateSettingsToken:
		st := b.state(telegramID)
		b.statesMu.Lock()
		if st.draft != nil {
			st.draft.TelegramToken = text
		}
		st.step = ""
		b.statesMu.Unlock()
		b.showSettings(ctx.Context(), telegramID)
	case stateWarehouse:
		st := b.state(telegramID)
		b.statesMu.RLock()
		conv := st.warehouse
		b.statesMu.RUnlock()
		if conv != nil {
			b.sendReplies(ctx.Context(), telegramID, b.Warehouse.Handle(ctx.Context(), conv, update.Message.Text))
		}
	}
	return nil
}

func (b *Bot) handleRegistrationInput(ctx context.Context, telegramID int64, step, text string) {
	st := b.state(telegramID)

	// Malformed phone/email blocks the step before anything is sent.
	if step == stateRegPhone && !utils.IsValidPhone(text) {
		b.send(ctx, telegramID, "❌ Некорректный номер телефона. Введите номер ещё раз:")
		return
	}
	if step == stateRegEmail && !utils.IsValidEmail(text) {
		b.send(ctx, telegramID, "❌ Некорректный email. Введите email ещё раз:")
		return
	}

	b.statesMu.Lock()
	switch step {
	case stateRegFirstName:
		st.regForm.FirstName = text
		st.step = stateRegLastName
	case stateRegLastName:
		st.regForm.LastName = text
		st.step = stateRegPhone
	case stateRegPhone:
		st.regForm.Phone = text
		st.step = stateRegEmail
	case stateRegEmail:
		st.regForm.Email = text
		st.step = stateRegCompany
	case stateRegCompany:
		st.regForm.Company = text
		st.step = ""
	}
	nextStep := st.step
	form := st.regForm
	b.statesMu.Unlock()

	switch nextStep {
	case stateRegLastName:
		b.send(ctx, telegramID, "Введите вашу фамилию:")
	case stateRegPhone:
		b.send(ctx, telegramID, "Введите номер телефона:")
	case stateRegEmail:
		b.send(ctx, telegramID, "Введите email:")
	case stateRegCompany:
		b.send(ctx, telegramID, "Введите название компании:")
	case "":
		user, err := b.Sessions.CompleteRegistration(ctx, form)
		if err != nil {
			b.send(ctx, telegramID, fmt.Sprintf("❌ %s\n\nОтправьте /start, чтобы попробовать снова.", err.Error()))
			return
		}
		b.statesMu.Lock()
		st.user = user
		b.statesMu.Unlock()
		b.send(ctx, telegramID, "✅ Регистрация завершена!")
		b.showMainMenu(ctx, telegramID, user)
	}
}

func (b *Bot) handleWizardInput(ctx context.Context, telegramID int64, step, text string) {
	st := b.state(telegramID)

	b.statesMu.Lock()
	form := st.createForm
	if form == nil {
		st.step = ""
		b.statesMu.Unlock()
		return
	}
	switch step {
	case stateCreateName:
		form.Name = text
		st.step = stateCreateToken
	case stateCreateToken:
		form.Token = text
		st.step = stateCreateDescription
	case stateCreateDescription:
		form.Description = text
		st.step = stateCreateLogic
	case stateCreateLogic:
		form.Logic = text
		st.step = stateCreateNumber
	case stateCreateNumber:
		form.UniqueNumber = text
		st.step = ""
	}
	nextStep := st.step
	b.statesMu.Unlock()

	switch nextStep {
	case stateCreateToken:
		b.send(ctx, telegramID, "Введите токен Telegram-бота (из @BotFather):")
	case stateCreateDescription:
		b.send(ctx, telegramID, "Опишите, что делает бот:")
	case stateCreateLogic:
		b.send(ctx, telegramID, "Опишите логику работы бота:")
	case stateCreateNumber:
		b.send(ctx, telegramID, "Введите уникальный 6-значный номер бота:")
	case "":
		b.submitCreateForm(ctx, telegramID, form)
	}
}

func (b *Bot) submitCreateForm(ctx context.Context, telegramID int64, form *bots.CreateForm) {
	user := b.requireUser(ctx, telegramID)
	if user == nil {
		return
	}

	b.statesMu.RLock()
	existing := b.states[telegramID].botList
	b.statesMu.RUnlock()
	if existing == nil {
		if list, err := b.Bots.LoadUserBots(ctx, user.ID); err == nil {
			existing = list
		}
	}

	created, err := b.Bots.CreateBot(ctx, user, form, existing)
	var validationErr *bots.ValidationError
	if errors.As(err, &validationErr) {
		if !bots.ValidUniqueNumber(form.UniqueNumber) {
			// Let the user fix the number without restarting the wizard.
			b.setStep(telegramID, stateCreateNumber)
			b.send(ctx, telegramID, fmt.Sprintf("❌ %s\n\nВведите уникальный 6-значный номер бота:", validationErr.Message))
			return
		}
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", validationErr.Message))
		return
	}
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	b.send(ctx, telegramID, fmt.Sprintf("✅ Бот «%s» создан и отправлен на модерацию.", created.Name))
	b.showBotList(ctx, telegramID)
}
