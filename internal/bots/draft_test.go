package bots

import (
	"testing"
)

func TestNewDraftDefaults(t *testing.T) {
	draft := NewDraft(Bot{ID: 7})

	if draft.VIPPrice != defaultVIPPrice {
		t.Errorf("vip price = %d, want %d", draft.VIPPrice, defaultVIPPrice)
	}
	if draft.PrivacyConsentText != defaultPrivacyConsentText {
		t.Errorf("consent text = %q", draft.PrivacyConsentText)
	}
	if draft.VIPPurchaseMessage != defaultVIPPurchaseMessage {
		t.Errorf("vip message = %q", draft.VIPPurchaseMessage)
	}
}

func TestNewDraftCopiesTextMaps(t *testing.T) {
	bot := Bot{
		ID:           7,
		ButtonTexts:  map[string]string{"menu": "Меню"},
		MessageTexts: map[string]string{"welcome": "Привет"},
	}

	draft := NewDraft(bot)
	draft.ButtonTexts["menu"] = "changed"
	draft.MessageTexts["welcome"] = "changed"

	if bot.ButtonTexts["menu"] != "Меню" || bot.MessageTexts["welcome"] != "Привет" {
		t.Error("draft shares map storage with the source bot")
	}
}

func TestNewDraftMergesLegacySecretShopText(t *testing.T) {
	draft := NewDraft(Bot{
		ID:             7,
		SecretShopText: "Секретный магазин",
		MessageTexts:   map[string]string{"welcome": "Привет"},
	})
	if draft.MessageTexts["secret_shop"] != "Секретный магазин" {
		t.Errorf("secret_shop = %q", draft.MessageTexts["secret_shop"])
	}

	// An explicit secret_shop key wins over the legacy column.
	draft = NewDraft(Bot{
		ID:             7,
		SecretShopText: "старый",
		MessageTexts:   map[string]string{"secret_shop": "новый"},
	})
	if draft.MessageTexts["secret_shop"] != "новый" {
		t.Errorf("secret_shop = %q", draft.MessageTexts["secret_shop"])
	}
}

func TestPayloadSparseness(t *testing.T) {
	draft := NewDraft(Bot{ID: 7})
	draft.VIPPrice = 0 // force the zero path
	payload := draft.Payload()

	// Booleans and clearable strings are always present.
	for _, key := range []string{"bot_id", "payment_url", "payment_enabled", "telegram_token", "offer_image_url", "privacy_consent_enabled", "vip_promo_enabled"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("payload missing always-present key %q", key)
		}
	}

	// Empty optionals stay out.
	for _, key := range []string{"tbank_terminal_key", "tbank_password", "vip_price", "vip_promo_start_date", "vip_promo_end_date"} {
		if _, ok := payload[key]; ok {
			t.Errorf("payload has %q for an empty draft", key)
		}
	}
}

func TestPaymentURLSurvivesToggle(t *testing.T) {
	draft := NewDraft(Bot{ID: 7, PaymentURL: "https://pay.example/7", PaymentEnabled: true})

	draft.PaymentEnabled = false
	if got := draft.Payload()["payment_url"]; got != "https://pay.example/7" {
		t.Errorf("payment_url after disable = %v", got)
	}

	draft.PaymentEnabled = true
	payload := draft.Payload()
	if got := payload["payment_url"]; got != "https://pay.example/7" {
		t.Errorf("payment_url after re-enable = %v", got)
	}
	if got := payload["payment_enabled"]; got != true {
		t.Errorf("payment_enabled = %v", got)
	}
}
