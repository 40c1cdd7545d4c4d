package bots

import (
	"context"
	"fmt"

	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

const (
	defaultVIPPrice           = 500
	defaultVIPPurchaseMessage = "VIP-ключ открывает доступ к эксклюзивным материалам и привилегиям."
)

// SettingsDraft is the edit buffer behind a settings dialog: seeded from the
// bot's current server values, mutated locally, then committed in one PUT or
// discarded. Maps are copied so parallel drafts for the same bot cannot
// clobber each other through shared references.
type SettingsDraft struct {
	BotID                 int64
	PaymentURL            string
	PaymentEnabled        bool
	ButtonTexts           map[string]string
	MessageTexts          map[string]string
	TBankTerminalKey      string
	TBankPassword         string
	VIPPrice              int
	OfferImageURL         string
	PrivacyConsentEnabled bool
	PrivacyConsentText    string
	VIPPromoEnabled       bool
	VIPPromoStartDate     string
	VIPPromoEndDate       string
	VIPPurchaseMessage    string
	TelegramToken         string
}

// NewDraft seeds an edit buffer from a bot's current values. A legacy
// secret_shop_text column is folded into message_texts when the map has no
// secret_shop key of its own.
func NewDraft(bot Bot) *SettingsDraft {
	messageTexts := copyTexts(bot.MessageTexts)
	if bot.SecretShopText != "" {
		if _, ok := messageTexts["secret_shop"]; !ok {
			if messageTexts == nil {
				messageTexts = make(map[string]string)
			}
			messageTexts["secret_shop"] = bot.SecretShopText
		}
	}

	draft := &SettingsDraft{
		BotID:                 bot.ID,
		PaymentURL:            bot.PaymentURL,
		PaymentEnabled:        bot.PaymentEnabled,
		ButtonTexts:           copyTexts(bot.ButtonTexts),
		MessageTexts:          messageTexts,
		TBankTerminalKey:      bot.TBankTerminalKey,
		TBankPassword:         bot.TBankPassword,
		VIPPrice:              bot.VIPPrice,
		OfferImageURL:         bot.OfferImageURL,
		PrivacyConsentEnabled: bot.PrivacyConsentEnabled,
		PrivacyConsentText:    bot.PrivacyConsentText,
		VIPPromoEnabled:       bot.VIPPromoEnabled,
		VIPPromoStartDate:     bot.VIPPromoStartDate,
		VIPPromoEndDate:       bot.VIPPromoEndDate,
		VIPPurchaseMessage:    bot.VIPPurchaseMessage,
		TelegramToken:         bot.TelegramToken,
	}

	if draft.VIPPrice == 0 {
		draft.VIPPrice = defaultVIPPrice
	}
	if draft.PrivacyConsentText == "" {
		draft.PrivacyConsentText = defaultPrivacyConsentText
	}
	if draft.VIPPurchaseMessage == "" {
		draft.VIPPurchaseMessage = defaultVIPPurchaseMessage
	}
	return draft
}

func copyTexts(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Payload builds the sparse update body: string fields only when set,
// booleans always (false must reach the server), text maps only when present.
// payment_url and telegram_token are always included so clearing them works
// and payment_url survives payment_enabled toggles.
func (d *SettingsDraft) Payload() map[string]interface{} {
	body := map[string]interface{}{
		"bot_id":          d.BotID,
		"payment_url":     d.PaymentURL,
		"payment_enabled": d.PaymentEnabled,
		"telegram_token":  d.TelegramToken,
	}

	if d.ButtonTexts != nil {
		body["button_texts"] = d.ButtonTexts
	}
	if d.MessageTexts != nil {
		body["message_texts"] = d.MessageTexts
	}
	if d.TBankTerminalKey != "" {
		body["tbank_terminal_key"] = d.TBankTerminalKey
	}
	if d.TBankPassword != "" {
		body["tbank_password"] = d.TBankPassword
	}
	if d.VIPPrice != 0 {
		body["vip_price"] = d.VIPPrice
	}
	body["offer_image_url"] = d.OfferImageURL
	body["privacy_consent_enabled"] = d.PrivacyConsentEnabled
	if d.PrivacyConsentText != "" {
		body["privacy_consent_text"] = d.PrivacyConsentText
	}
	body["vip_promo_enabled"] = d.VIPPromoEnabled
	if d.VIPPromoStartDate != "" {
		body["vip_promo_start_date"] = d.VIPPromoStartDate
	}
	if d.VIPPromoEndDate != "" {
		body["vip_promo_end_date"] = d.VIPPromoEndDate
	}
	if d.VIPPurchaseMessage != "" {
		body["vip_purchase_message"] = d.VIPPurchaseMessage
	}
	return body
}

// SaveSettings commits a draft. On failure the draft stays valid so the
// caller can correct and retry.
func (s *Service) SaveSettings(ctx context.Context, draft *SettingsDraft) error {
	_, err := s.Platform.UpdateBot(ctx, draft.Payload())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.Log.Info("bot settings saved", zap.Int64("bot_id", draft.BotID))
	return nil
}

// SetWebhook points the bot's Telegram webhook at the engine. Used from the
// settings dialog for bots that were approved before automatic setup existed.
func (s *Service) SetWebhook(ctx context.Context, botID int64) (*platform.SetWebhookResult, error) {
	result, err := s.Platform.SetBotWebhook(ctx, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook: %w", err)
	}
	s.Log.Info("webhook configured",
		zap.Int64("bot_id", botID),
		zap.String("webhook_url", result.WebhookURL))
	return result, nil
}
