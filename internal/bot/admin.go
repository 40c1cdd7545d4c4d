package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telebot-admin/internal/admin"
	"telebot-admin/internal/platform"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

// requireAdmin resolves the caller and checks the admin role.
func (b *Bot) requireAdmin(ctx context.Context, telegramID int64) *platform.User {
	user := b.requireUser(ctx, telegramID)
	if user == nil {
		return nil
	}
	if user.Role != "admin" {
		b.send(ctx, telegramID, "Доступ только для администраторов.")
		return nil
	}
	return user
}

func (b *Bot) registerAdminHandlers(handler *th.BotHandler) {
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		if user := b.requireAdmin(ctx.Context(), callback.From.ID); user != nil {
			b.showModerationQueue(ctx.Context(), callback.From.ID)
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("moderation"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		if user := b.requireAdmin(ctx.Context(), callback.From.ID); user != nil {
			b.showActivationQueue(ctx.Context(), callback.From.ID)
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("activation"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		if user := b.requireAdmin(ctx.Context(), callback.From.ID); user != nil {
			b.showRotationSchedule(ctx.Context(), callback.From.ID)
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("rotation"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			result, err := b.Rotation.RotateAll(ctx.Context())
			if err != nil {
				b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ %s", err.Error()))
			} else {
				b.send(ctx.Context(), telegramID, fmt.Sprintf(
					"🔄 Проход ротации завершён.\n\nОбработано: %d\nРотировано: %d\nПропущено: %d",
					result.TotalProcessed, result.Rotated, result.Skipped))
			}
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("rotate_all"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			b.showAuditTrail(ctx.Context(), telegramID)
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("audit"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			b.showUsersList(ctx.Context(), telegramID)
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("users"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			b.sendWithMarkup(ctx.Context(), telegramID,
				"Перезапустить движок ботов? Все хостящиеся боты будут недоступны несколько секунд.",
				tu.InlineKeyboard(
					tu.InlineKeyboardRow(
						tu.InlineKeyboardButton("♻️ Да, перезапустить").WithCallbackData("restart_confirm"),
						tu.InlineKeyboardButton("↩️ Отмена").WithCallbackData("main_menu"),
					),
				))
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("restart_engine"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			message, err := b.Bots.RestartEngine(ctx.Context(), user.ID)
			if err != nil {
				b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ %s", err.Error()))
			} else {
				b.send(ctx.Context(), telegramID, fmt.Sprintf("♻️ %s", message))
			}
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataEqual("restart_confirm"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			botID := callbackID(callback.Data, "approve_")
			result, err := b.Admin.Approve(ctx.Context(), user.ID, botID, "")
			if err != nil {
				b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ %s", err.Error()))
			} else {
				b.send(ctx.Context(), telegramID, fmt.Sprintf("✅ %s", result.Message))
				b.showModerationQueue(ctx.Context(), telegramID)
			}
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("approve_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			st := b.state(telegramID)
			b.statesMu.Lock()
			st.rejectBot = callbackID(callback.Data, "reject_")
			st.step = stateRejectReason
			b.statesMu.Unlock()
			b.send(ctx.Context(), telegramID, "Укажите причину отклонения:")
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("reject_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			botID := callbackID(callback.Data, "activate_")
			b.sendWithMarkup(ctx.Context(), telegramID,
				fmt.Sprintf("Активировать бота #%d? Будут сгенерированы QR-коды и настроен webhook.", botID),
				tu.InlineKeyboard(
					tu.InlineKeyboardRow(
						tu.InlineKeyboardButton("▶️ Да, активировать").WithCallbackData(fmt.Sprintf("confirmact_%d", botID)),
						tu.InlineKeyboardButton("↩️ Отмена").WithCallbackData("activation"),
					),
				))
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("activate_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			b.activateBot(ctx.Context(), telegramID, user.ID, callbackID(callback.Data, "confirmact_"))
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("confirmact_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			botID := callbackID(callback.Data, "deactivate_")
			b.sendWithMarkup(ctx.Context(), telegramID,
				fmt.Sprintf("Деактивировать бота #%d? Webhook останется настроенным.", botID),
				tu.InlineKeyboard(
					tu.InlineKeyboardRow(
						tu.InlineKeyboardButton("⏸ Да, деактивировать").WithCallbackData(fmt.Sprintf("confirmdeact_%d", botID)),
						tu.InlineKeyboardButton("↩️ Отмена").WithCallbackData("activation"),
					),
				))
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("deactivate_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			botID := callbackID(callback.Data, "confirmdeact_")
			if err := b.Admin.Deactivate(ctx.Context(), user.ID, botID); err != nil {
				b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ %s", err.Error()))
			} else {
				b.send(ctx.Context(), telegramID, "⏸ Бот деактивирован.")
				b.showActivationQueue(ctx.Context(), telegramID)
			}
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("confirmdeact_"))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		telegramID := callback.From.ID
		if user := b.requireAdmin(ctx.Context(), telegramID); user != nil {
			botID := callbackID(callback.Data, "rotate_")
			result, err := b.Rotation.RotateBot(ctx.Context(), botID)
			if err != nil {
				b.send(ctx.Context(), telegramID, fmt.Sprintf("❌ %s", err.Error()))
			} else if result.Action == "rotated" {
				b.send(ctx.Context(), telegramID, fmt.Sprintf(
					"🔄 «%s»: ротация выполнена, сброшено %d бесплатных QR.",
					result.BotName, result.FreeQRReset))
			} else {
				b.send(ctx.Context(), telegramID, fmt.Sprintf(
					"⏭ «%s»: ротация пропущена (%s).", result.BotName, result.Reason))
			}
		}
		b.answer(ctx.Context(), callback.ID)
		return nil
	}, th.CallbackDataPrefix("rotate_"))
}

func (b *Bot) showModerationQueue(ctx context.Context, telegramID int64) {
	pending, err := b.Admin.Pending(ctx)
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	if len(pending) == 0 {
		b.send(ctx, telegramID, "🛡 Очередь модерации пуста.")
		return
	}

	for _, bot := range pending {
		text := fmt.Sprintf("🕐 %s\n\nВладелец: %s\nШаблон: %s\n\nОписание: %s\n\nЛогика: %s",
			bot.Name, bot.OwnerName, bot.Template, bot.BotDescription, bot.BotLogic)
		keyboard := tu.InlineKeyboard(
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("✅ Одобрить").WithCallbackData(fmt.Sprintf("approve_%d", bot.ID)),
				tu.InlineKeyboardButton("❌ Отклонить").WithCallbackData(fmt.Sprintf("reject_%d", bot.ID)),
			),
		)
		b.sendWithMarkup(ctx, telegramID, text, keyboard)
	}
}

func (b *Bot) showActivationQueue(ctx context.Context, telegramID int64) {
	approved, err := b.Admin.Approved(ctx)
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	if len(approved) == 0 {
		b.send(ctx, telegramID, "🚀 Нет одобренных ботов, ожидающих активации.")
		return
	}

	for _, bot := range approved {
		statusIcon := "⏸"
		if bot.Status == "active" {
			statusIcon = "▶️"
		}
		text := fmt.Sprintf("%s %s\n\nВладелец: @%s\nШаблон: %s\nСтатус: %s",
			statusIcon, bot.Name, bot.OwnerUsername, bot.Template, bot.Status)

		var row []telego.InlineKeyboardButton
		if bot.Status == "active" {
			row = tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("⏸ Деактивировать").WithCallbackData(fmt.Sprintf("deactivate_%d", bot.ID)),
			)
		} else {
			row = tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("🚀 Активировать").WithCallbackData(fmt.Sprintf("activate_%d", bot.ID)),
			)
		}
		b.sendWithMarkup(ctx, telegramID, text, tu.InlineKeyboard(row))
	}
}

func (b *Bot) activateBot(ctx context.Context, telegramID, adminID, botID int64) {
	report, err := b.Admin.Activate(ctx, adminID, botID)

	var lines []string
	if report != nil {
		if report.QRCodes != nil {
			lines = append(lines, fmt.Sprintf("🎟 QR-коды: %d бесплатных, %d платных", report.QRCodes.Free, report.QRCodes.Paid))
		} else if report.QRWarning != "" {
			lines = append(lines, fmt.Sprintf("⚠️ QR-коды: %s", report.QRWarning))
		}
	}

	if err != nil {
		if errors.Is(err, admin.ErrWebhookFailed) && report != nil && report.Webhook != nil {
			lines = append(lines, fmt.Sprintf("❌ Webhook: %s", report.Webhook.Description))
		}
		lines = append(lines, fmt.Sprintf("❌ Активация прервана: %s", err.Error()))
		b.send(ctx, telegramID, strings.Join(lines, "\n"))
		return
	}

	lines = append(lines, "🌐 Webhook настроен.", "✅ Бот активирован.")
	b.send(ctx, telegramID, strings.Join(lines, "\n"))
	b.showActivationQueue(ctx, telegramID)
}

func (b *Bot) showRotationSchedule(ctx context.Context, telegramID int64) {
	entries, err := b.Rotation.Schedule(ctx)
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	if len(entries) == 0 {
		b.send(ctx, telegramID, "🔄 Нет ботов с включённой ротацией QR.")
		return
	}

	var text strings.Builder
	text.WriteString("🔄 Расписание ротации QR-кодов:\n")
	var dueRows [][]telego.InlineKeyboardButton
	for _, entry := range entries {
		marker := "•"
		if entry.Due {
			marker = "❗"
			dueRows = append(dueRows, tu.InlineKeyboardRow(
				tu.InlineKeyboardButton(fmt.Sprintf("🔄 Ротировать «%s»", entry.BotName)).
					WithCallbackData(fmt.Sprintf("rotate_%d", entry.BotID)),
			))
		}
		fmt.Fprintf(&text, "\n%s %s — %s (интервал: %s)", marker, entry.BotName, entry.Countdown, entry.Interval)
	}

	dueRows = append(dueRows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("🔄 Ротировать все").WithCallbackData("rotate_all"),
	))
	b.sendWithMarkup(ctx, telegramID, text.String(), tu.InlineKeyboard(dueRows...))
}

func (b *Bot) showAuditTrail(ctx context.Context, telegramID int64) {
	entries, err := b.Admin.AuditTrail(ctx, 20)
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	if len(entries) == 0 {
		b.send(ctx, telegramID, "📜 Журнал действий пуст.")
		return
	}

	var text strings.Builder
	text.WriteString("📜 Последние действия:\n")
	for _, entry := range entries {
		icon := "✅"
		if !entry.OK {
			icon = "❌"
		}
		fmt.Fprintf(&text, "\n%s %s admin=%d bot=%d %s",
			icon, entry.CreatedAt.Format("02.01 15:04"), entry.AdminID, entry.BotID, entry.Action)
		if entry.Detail != "" {
			fmt.Fprintf(&text, " (%s)", entry.Detail)
		}
	}
	b.send(ctx, telegramID, text.String())
}

func (b *Bot) showUsersList(ctx context.Context, telegramID int64) {
	users, err := b.Sessions.Platform.ListUsers(ctx)
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	if len(users) == 0 {
		b.send(ctx, telegramID, "👥 Пользователей пока нет.")
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "👥 Пользователи (%d):\n", len(users))
	for _, user := range users {
		name := strings.TrimSpace(user.FirstName + " " + user.LastName)
		if name == "" {
			name = user.Username
		}
		fmt.Fprintf(&text, "\n%s — @%s, ботов: %d", name, user.Username, user.BotsCount)
		if user.Role == "admin" {
			text.WriteString(" 🛡")
		}
		if !user.RegistrationCompleted {
			text.WriteString(" (регистрация не завершена)")
		}
	}
	b.send(ctx, telegramID, text.String())
}

func (b *Bot) handleRejectReason(ctx context.Context, telegramID int64, reason string) {
	user := b.requireAdmin(ctx, telegramID)
	if user == nil {
		return
	}

	b.statesMu.Lock()
	botID := b.states[telegramID].rejectBot
	b.states[telegramID].step = ""
	b.states[telegramID].rejectBot = 0
	b.statesMu.Unlock()

	result, err := b.Admin.Reject(ctx, user.ID, botID, reason)
	if errors.Is(err, admin.ErrReasonRequired) {
		b.statesMu.Lock()
		b.states[telegramID].rejectBot = botID
		b.states[telegramID].step = stateRejectReason
		b.statesMu.Unlock()
		b.send(ctx, telegramID, "Причина не может быть пустой. Укажите причину отклонения:")
		return
	}
	if err != nil {
		b.send(ctx, telegramID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	b.send(ctx, telegramID, fmt.Sprintf("❌ %s", result.Message))
	b.showModerationQueue(ctx, telegramID)
}
