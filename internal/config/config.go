package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppPort           string
	Environment       string
	DevelopmentMode   bool
	DatabaseURL       string
	RedisURL          string
	SMSURL            string
	SMSTimeout        time.Duration
	TelegramBotToken  string
	TelegramAdminChat string
	TelegramTimeout   time.Duration
	StoreTimeout      time.Duration
	JWTSecret         string
	TokenExpires      time.Duration
	InviteCodes       []string
	AllowedOrigins    []string
	StrictSubmit      bool
	LogLevel          string
	LogFormat         string
}

// Ephemeral reports whether no durable datastore is configured.
func (c *Config) Ephemeral() bool {
	return c.DatabaseURL == ""
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	// Development mode hands codes back over HTTP, so it must be asked for.
	env := getEnv("ENVIRONMENT", "production")
	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "5001"),
		Environment:       env,
		DevelopmentMode:   env == "development",
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		SMSURL:            getEnv("SPUG_URL", ""),
		SMSTimeout:        getEnvDuration("SMS_TIMEOUT_SECONDS", 10) * time.Second,
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChat: getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
		TelegramTimeout:   getEnvDuration("TELEGRAM_TIMEOUT_SECONDS", 10) * time.Second,
		StoreTimeout:      getEnvDuration("STORE_TIMEOUT_SECONDS", 5) * time.Second,
		JWTSecret:         getEnv("JWT_SECRET", "omnilaze-dev-secret-change-me"),
		TokenExpires:      getEnvDuration("JWT_TTL_HOURS", 24*7) * time.Hour,
		InviteCodes:       getEnvList("INVITE_CODES", "1234,WELCOME,LANDE,OMNILAZE,ADVX2025"),
		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS", "*"),
		StrictSubmit:      getEnv("ORDER_STRICT_SUBMIT", "false") == "true",
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	if cfg.AppPort == "" {
		log.Fatal("APP_PORT must be set")
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	if !cfg.DevelopmentMode && cfg.SMSURL == "" {
		log.Fatal("SPUG_URL must be set outside development mode")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return time.Duration(parsed)
		}
	}
	return time.Duration(fallback)
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
