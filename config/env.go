package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Redis  RedisConfig
	DB     DBConfig
	Auth   AuthConfig
	Notify NotifyConfig
	Server ServerConfig
}

type DBConfig struct {
	DSN string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
}

type ServerConfig struct {
	Port string
}

type NotifyConfig struct {
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	SMTPFrom       string
	PushRelayURL   string
	PushRelayKey   string
	TelegramToken  string
	TelegramChatID int64
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, _ := strconv.Atoi(getEnv("AUTH_TOKEN_TTL_HOURS", "24"))
	tgChatID, _ := strconv.ParseInt(getEnv("TELEGRAM_OPS_CHAT_ID", "0"), 10, 64)

	return Config{
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			DSN: getEnv("DATABASE_DSN", ""),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTLHours: tokenTTL,
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", ":8080"),
		},
		Notify: NotifyConfig{
			SMTPHost:       getEnv("SMTP_HOST", "localhost"),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			SMTPUser:       getEnv("SMTP_USER", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
			SMTPFrom:       getEnv("SMTP_FROM", "alerts@brewhub.local"),
			PushRelayURL:   getEnv("PUSH_RELAY_URL", ""),
			PushRelayKey:   getEnv("PUSH_RELAY_KEY", ""),
			TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID: tgChatID,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
