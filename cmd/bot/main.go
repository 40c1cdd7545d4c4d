package main

import (
	"context"
	"log"

	"telebot-admin/internal/admin"
	"telebot-admin/internal/bot"
	"telebot-admin/internal/bots"
	"telebot-admin/internal/config"
	"telebot-admin/internal/database"
	"telebot-admin/internal/platform"
	"telebot-admin/internal/rotation"
	"telebot-admin/internal/session"
	"telebot-admin/internal/shop"
	"telebot-admin/internal/warehouse"
	"telebot-admin/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	logg, err := logger.New(&logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: "stdout",
	}, logger.DefaultServiceName)
	if err != nil {
		log.Fatalf("Could not create logger: %v", err)
	}
	defer logg.Sync()

	// Connect to Database (audit trail)
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logg.Fatal("could not connect to database", zap.Error(err))
	}

	// Connect to Redis (sessions, alert dedup)
	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		logg.Fatal("could not connect to redis", zap.Error(err))
	}

	client := platform.NewClient(cfg.PlatformURL, cfg.Endpoints)

	sessions := session.NewManager(client, rdb, logg)
	botsSvc := bots.NewService(client, logg)
	adminSvc := admin.NewService(client, db, logg)
	rotationSvc := rotation.NewService(client, logg)
	shopSvc := shop.NewService(client, logg)
	warehouseSvc := warehouse.NewService(client, logg)

	console, err := bot.NewBot(cfg.BotToken, sessions, botsSvc, adminSvc, rotationSvc, shopSvc, warehouseSvc, cfg.TBankURL, logg)
	if err != nil {
		logg.Fatal("could not create bot", zap.Error(err))
	}

	// Rotation alerts run in the background for the whole process lifetime.
	if cfg.AdminChatID != 0 {
		poller := rotation.NewPoller(rotationSvc, rdb, console.Instance, cfg.AdminChatID, logg)
		go poller.Start(context.Background())
	} else {
		logg.Warn("ADMIN_CHAT_ID not set, rotation alerts disabled")
	}

	logg.Info("console started")
	console.Start()
}
