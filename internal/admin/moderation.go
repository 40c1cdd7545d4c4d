package admin

import (
	"context"
	"fmt"

	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

const defaultApproveReason = "Бот прошел проверку"

// ErrReasonRequired blocks a rejection submitted without an explanation.
// The owner sees the reason, so an empty one is never sent.
var ErrReasonRequired = fmt.Errorf("Укажите причину отклонения")

// Pending returns the moderation queue.
func (s *Service) Pending(ctx context.Context) ([]platform.PendingBot, error) {
	bots, err := s.Platform.PendingBots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load moderation queue: %w", err)
	}
	return bots, nil
}

// Approve passes a pending bot. An empty reason falls back to the standard
// approval text the owner gets notified with.
func (s *Service) Approve(ctx context.Context, adminID, botID int64, reason string) (*platform.ModerateResult, error) {
	if reason == "" {
		reason = defaultApproveReason
	}
	return s.moderate(ctx, adminID, botID, "approve", reason, actionApprove)
}

// Reject declines a pending bot. The reason is mandatory.
func (s *Service) Reject(ctx context.Context, adminID, botID int64, reason string) (*platform.ModerateResult, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.moderate(ctx, adminID, botID, "reject", reason, actionReject)
}

func (s *Service) moderate(ctx context.Context, adminID, botID int64, action, reason, auditAction string) (*platform.ModerateResult, error) {
	result, err := s.Platform.Moderate(ctx, platform.ModerateRequest{
		BotID:   botID,
		Action:  action,
		AdminID: adminID,
		Reason:  reason,
	})
	if err != nil {
		s.record(adminID, botID, auditAction, reason, false)
		return nil, fmt.Errorf("failed to moderate bot: %w", err)
	}

	s.record(adminID, botID, auditAction, reason, true)
	s.Log.Info("bot moderated",
		zap.Int64("bot_id", botID),
		zap.Int64("admin_id", adminID),
		zap.String("action", action))
	return result, nil
}
