package rotation

import (
	"context"
	"fmt"

	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

// Entry is one row of the rotation schedule, countdown already formatted.
type Entry struct {
	BotID     int64
	BotName   string
	Interval  string
	Countdown string
	Due       bool
}

// Service exposes the QR rotation schedule and manual rotation triggers.
type Service struct {
	Platform *platform.Client
	Log      *zap.Logger
}

func NewService(client *platform.Client, log *zap.Logger) *Service {
	return &Service{
		Platform: client,
		Log:      log,
	}
}

// Schedule returns the rotation schedule with countdowns formatted for
// display. Bots with rotation disabled never appear here; the scheduler
// filters them out.
func (s *Service) Schedule(ctx context.Context) ([]Entry, error) {
	infos, err := s.Platform.RotationSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rotation schedule: %w", err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			BotID:     info.BotID,
			BotName:   info.BotName,
			Interval:  info.RotationInterval,
			Countdown: FormatCountdown(info.TimeUntilRotation),
			Due:       info.RotationDue,
		})
	}
	return entries, nil
}

// RotateBot forces rotation of one bot regardless of its schedule.
func (s *Service) RotateBot(ctx context.Context, botID int64) (*platform.RotationResult, error) {
	result, err := s.Platform.RotateBot(ctx, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate bot: %w", err)
	}
	s.Log.Info("bot rotated",
		zap.Int64("bot_id", botID),
		zap.String("action", result.Action),
		zap.Int("free_qr_reset", result.FreeQRReset))
	return result, nil
}

// RotateAll runs a scheduler pass over every bot; only due bots actually
// rotate, the rest come back as skipped.
func (s *Service) RotateAll(ctx context.Context) (*platform.RotateAllResult, error) {
	result, err := s.Platform.RotateAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run rotation pass: %w", err)
	}
	s.Log.Info("rotation pass finished",
		zap.Int("processed", result.TotalProcessed),
		zap.Int("rotated", result.Rotated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}
