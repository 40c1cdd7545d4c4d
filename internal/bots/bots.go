package bots

import (
	"telebot-admin/internal/platform"
)

// Bot is the console-side shape of a hosted bot, normalized from the server
// record the bots function returns.
type Bot struct {
	ID                    int64
	Name                  string
	Status                string // active, inactive, error
	Users                 int
	Messages              int
	Template              string
	TelegramToken         string
	ModerationStatus      string // pending, approved, rejected
	ModerationReason      string
	PaymentURL            string
	PaymentEnabled        bool
	QRFreeCount           int
	QRPaidCount           int
	QRRotationValue       int
	QRRotationUnit        string
	ButtonTexts           map[string]string
	MessageTexts          map[string]string
	SecretShopText        string
	TBankTerminalKey      string
	TBankPassword         string
	VIPPrice              int
	VIPPromoEnabled       bool
	VIPPromoStartDate     string
	VIPPromoEndDate       string
	VIPPurchaseMessage    string
	OfferImageURL         string
	PrivacyConsentEnabled bool
	PrivacyConsentText    string
}

func fromRecord(record platform.BotRecord) Bot {
	return Bot{
		ID:                    record.ID,
		Name:                  record.Name,
		Status:                record.Status,
		Users:                 record.TotalUsers,
		Messages:              record.TotalMessages,
		Template:              record.Template,
		TelegramToken:         record.TelegramToken,
		ModerationStatus:      record.ModerationStatus,
		ModerationReason:      record.ModerationReason,
		PaymentURL:            record.PaymentURL,
		PaymentEnabled:        record.PaymentEnabled,
		QRFreeCount:           record.QRFreeCount,
		QRPaidCount:           record.QRPaidCount,
		QRRotationValue:       record.QRRotationValue,
		QRRotationUnit:        record.QRRotationUnit,
		ButtonTexts:           record.ButtonTexts,
		MessageTexts:          record.MessageTexts,
		SecretShopText:        record.SecretShopText,
		TBankTerminalKey:      record.TBankTerminalKey,
		TBankPassword:         record.TBankPassword,
		VIPPrice:              record.VIPPrice,
		VIPPromoEnabled:       record.VIPPromoEnabled,
		VIPPromoStartDate:     record.VIPPromoStartDate,
		VIPPromoEndDate:       record.VIPPromoEndDate,
		VIPPurchaseMessage:    record.VIPPurchaseMessage,
		OfferImageURL:         record.OfferImageURL,
		PrivacyConsentEnabled: record.PrivacyConsentEnabled,
		PrivacyConsentText:    record.PrivacyConsentText,
	}
}
