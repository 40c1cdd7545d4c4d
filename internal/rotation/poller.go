package rotation

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pollInterval = 60 * time.Second

// Poller watches the rotation schedule and pings the admin chat when a bot
// becomes due. Redis keys dedupe alerts so one overdue bot does not spam the
// chat on every cycle.
type Poller struct {
	Service     *Service
	Redis       *redis.Client
	Bot         *telego.Bot
	AdminChatID int64
	Log         *zap.Logger
}

func NewPoller(service *Service, rdb *redis.Client, bot *telego.Bot, adminChatID int64, log *zap.Logger) *Poller {
	return &Poller{
		Service:     service,
		Redis:       rdb,
		Bot:         bot,
		AdminChatID: adminChatID,
		Log:         log,
	}
}

// Start runs the polling loop until ctx is cancelled. A cycle runs
// immediately, then on every tick.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	p.Log.Info("rotation poller started")

	p.checkSchedule(ctx)

	for {
		select {
		case <-ctx.Done():
			p.Log.Info("rotation poller stopped")
			return
		case <-ticker.C:
			p.checkSchedule(ctx)
		}
	}
}

func (p *Poller) checkSchedule(ctx context.Context) {
	entries, err := p.Service.Schedule(ctx)
	if err != nil {
		p.Log.Warn("rotation schedule poll failed", zap.Error(err))
		return
	}

	for _, entry := range entries {
		if !entry.Due {
			continue
		}

		key := fmt.Sprintf("rotation_alert_%d", entry.BotID)
		exists, _ := p.Redis.Exists(ctx, key).Result()
		if exists != 0 {
			continue
		}

		_, err := p.Bot.SendMessage(ctx, tu.Message(
			tu.ID(p.AdminChatID),
			fmt.Sprintf("🔄 Боту «%s» требуется ротация QR-кодов.", entry.BotName),
		))
		if err != nil {
			p.Log.Warn("failed to send rotation alert",
				zap.Int64("bot_id", entry.BotID),
				zap.Error(err))
			continue
		}

		p.Redis.Set(ctx, key, "true", time.Hour)
		p.Log.Info("rotation alert sent", zap.Int64("bot_id", entry.BotID))
	}
}
