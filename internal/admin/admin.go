package admin

import (
	"context"

	"telebot-admin/internal/models"
	"telebot-admin/internal/platform"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Audit action names as stored in the local trail.
const (
	actionApprove    = "moderation_approve"
	actionReject     = "moderation_reject"
	actionActivate   = "activation_activate"
	actionDeactivate = "activation_deactivate"
)

// Service implements the admin-only moderation and activation workflows.
// The platform owns bot state; the local database only keeps the audit trail
// of which admin did what.
type Service struct {
	Platform *platform.Client
	DB       *gorm.DB
	Log      *zap.Logger
}

func NewService(client *platform.Client, db *gorm.DB, log *zap.Logger) *Service {
	return &Service{
		Platform: client,
		DB:       db,
		Log:      log,
	}
}

// record writes an audit entry. Audit failures are logged and swallowed so a
// broken local database never blocks an admin action that already happened
// on the platform.
func (s *Service) record(adminID, botID int64, action, detail string, ok bool) {
	if s.DB == nil {
		return
	}
	entry := models.AuditEntry{
		AdminID: adminID,
		BotID:   botID,
		Action:  action,
		Detail:  detail,
		OK:      ok,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		s.Log.Error("failed to write audit entry",
			zap.Int64("admin_id", adminID),
			zap.Int64("bot_id", botID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// AuditTrail returns the most recent audit entries, newest first.
func (s *Service) AuditTrail(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if s.DB == nil {
		return nil, nil
	}
	var entries []models.AuditEntry
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
