package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Endpoints maps every remote platform function to its fixed route ID.
// Each function is an opaque capability: the console only knows its URL.
type Endpoints struct {
	Users         string
	Bots          string
	Moderation    string
	Activation    string
	QRRotation    string
	QRGenerate    string
	SetupWebhook  string
	BotWebhook    string
	BotStats      string
	BotUsers      string
	EngineSync    string
	EngineRestart string
	Shop          string
	Warehouse     string
}

type Config struct {
	DBUser        string
	DBPassword    string
	DBName        string
	DBHost        string
	DBPort        string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	BotToken      string
	AdminChatID   int64
	PlatformURL   string
	Endpoints     Endpoints
	TBankURL      string
	LogLevel      string
	LogFormat     string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "telebot_admin"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		AdminChatID:   getEnvInt64("ADMIN_CHAT_ID", 0),
		PlatformURL:   getEnv("PLATFORM_API_URL", "https://functions.poehali.dev"),
		Endpoints: Endpoints{
			Users:         getEnv("EP_USERS", "f9ce7f74-6b2b-44d4-9505-72fb689a4374"),
			Bots:          getEnv("EP_BOTS", "fee936e7-7794-4f0a-b8f3-73e64570ada5"),
			Moderation:    getEnv("EP_MODERATION", "6ead39ca-fa16-491f-8f5e-19af81c2ccac"),
			Activation:    getEnv("EP_ACTIVATION", "219980d4-f0af-4bfd-a046-421e59d66113"),
			QRRotation:    getEnv("EP_QR_ROTATION", "b2dc4e49-9fa9-4baa-b90b-b2d457d9ebd8"),
			QRGenerate:    getEnv("EP_QR_GENERATE", "11492c68-8058-4d7e-a8a8-f6f82614e69e"),
			SetupWebhook:  getEnv("EP_SETUP_WEBHOOK", "5de84ef3-0564-49a9-95a1-05f3de4ba313"),
			BotWebhook:    getEnv("EP_BOT_WEBHOOK", "1e93e2c2-62f0-47e5-bb97-590cc26e5216"),
			BotStats:      getEnv("EP_BOT_STATS", "5c1d4d82-b836-4d64-b74e-c317fde888e9"),
			BotUsers:      getEnv("EP_BOT_USERS", "2b3fdb38-ec2a-4025-82c2-f33a66905630"),
			EngineSync:    getEnv("EP_ENGINE_SYNC", "c76b9661-95e2-441d-ab96-0972bb18a478"),
			EngineRestart: getEnv("EP_ENGINE_RESTART", "2487629c-72aa-43fe-9874-774729f6b499"),
			Shop:          getEnv("EP_SHOP", "7fad7f6c-0746-49e0-8f7a-5c0d526b6e7d"),
			Warehouse:     getEnv("EP_WAREHOUSE", "e51fcc06-65c7-473d-a340-2d67fea6ea2d"),
		},
		TBankURL:  getEnv("TBANK_API_URL", "https://securepay.tinkoff.ru/v2"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
