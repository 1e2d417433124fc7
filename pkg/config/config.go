package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	Env           string
	JWTSecret     string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	EmailFrom     string
	EmailRetries  int
	WebhookSecret string
	CronSecret    string
	ChatAPIURL    string
	ChatAPIKey    string
	SweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		JWTSecret:     getEnv("JWT_SECRET", "supersecretjwtkey"),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "no-reply@glowfeed.app"),
		EmailRetries:  getEnvInt("EMAIL_RETRIES", 3),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		CronSecret:    getEnv("CRON_SECRET", ""),
		ChatAPIURL:    getEnv("CHAT_API_URL", ""),
		ChatAPIKey:    getEnv("CHAT_API_KEY", ""),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
