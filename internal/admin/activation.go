package admin

import (
	"context"
	"errors"
	"fmt"

	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

// ErrWebhookFailed aborts activation when Telegram refuses the webhook.
// Steps already run (QR generation) are not rolled back; re-running the
// activation is safe because QR generation skips bots that already have codes.
var ErrWebhookFailed = errors.New("Не удалось настроить webhook для бота")

// ActivationReport collects what each activation step did, for display.
type ActivationReport struct {
	QRCodes   *platform.QRCodesCreated
	QRWarning string
	Webhook   *platform.TelegramResult
}

// Approved returns the activation queue, approved bots newest first.
func (s *Service) Approved(ctx context.Context) ([]platform.ApprovedBot, error) {
	bots, err := s.Platform.ApprovedBots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load activation queue: %w", err)
	}
	return bots, nil
}

// Activate brings an approved bot online. Three steps in order: generate QR
// codes (failure is a warning, the bot may already have codes), register the
// Telegram webhook (failure aborts), then flip the activation flag. There is
// no rollback between steps.
func (s *Service) Activate(ctx context.Context, adminID, botID int64) (*ActivationReport, error) {
	report := &ActivationReport{}

	qr, err := s.Platform.GenerateQRCodes(ctx, botID)
	if err != nil {
		report.QRWarning = err.Error()
		s.Log.Warn("qr generation warning during activation",
			zap.Int64("bot_id", botID),
			zap.Error(err))
	} else {
		report.QRCodes = &qr.QRCodesCreated
	}

	webhook, err := s.Platform.SetupWebhook(ctx, botID)
	if err != nil {
		s.record(adminID, botID, actionActivate, "webhook: "+err.Error(), false)
		return report, fmt.Errorf("failed to set up webhook: %w", err)
	}
	report.Webhook = &webhook.TelegramResult
	if !webhook.TelegramResult.OK {
		s.record(adminID, botID, actionActivate, "webhook: "+webhook.TelegramResult.Description, false)
		return report, ErrWebhookFailed
	}

	if err := s.Platform.SetActivation(ctx, platform.ActivationRequest{
		BotID:   botID,
		Action:  "activate",
		AdminID: adminID,
	}); err != nil {
		s.record(adminID, botID, actionActivate, "status flip failed", false)
		return report, fmt.Errorf("failed to activate bot: %w", err)
	}

	s.record(adminID, botID, actionActivate, "", true)
	s.Log.Info("bot activated",
		zap.Int64("bot_id", botID),
		zap.Int64("admin_id", adminID))
	return report, nil
}

// Deactivate takes a bot offline. Only the activation flag changes; the
// webhook stays registered so reactivation is a single step.
func (s *Service) Deactivate(ctx context.Context, adminID, botID int64) error {
	if err := s.Platform.SetActivation(ctx, platform.ActivationRequest{
		BotID:   botID,
		Action:  "deactivate",
		AdminID: adminID,
	}); err != nil {
		s.record(adminID, botID, actionDeactivate, "", false)
		return fmt.Errorf("failed to deactivate bot: %w", err)
	}
	s.record(adminID, botID, actionDeactivate, "", true)
	return nil
}
