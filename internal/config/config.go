// Package config reads process settings from .env files and the environment.
package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultLocalDBPath    = "data/proskill.db"
	defaultHTTPTimeout    = 10 * time.Second
	defaultFallbackUserID = 12345
	defaultReminderTime   = "09:00"
	defaultServiceDB      = "data/proskill-service.db"
	defaultPort           = "8000"
)

// Config holds the process-wide settings, read once at startup
type Config struct {
	// APIBase is the word service address; empty selects local mode
	APIBase        string
	LocalDBPath    string
	HTTPTimeout    time.Duration
	FallbackUserID int64

	TelegramToken   string
	WebAppURL       string
	AdminUserIDs    []int64
	SchedulerEnable bool
	ReminderTime    string

	DatabaseURL string
	Port        string
}

// Load reads .env files (if any) and the environment
func Load(envFiles ...string) Config {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	return Config{
		APIBase:         strings.TrimSpace(os.Getenv("API_BASE")),
		LocalDBPath:     envOrDefault("LOCAL_DB_PATH", defaultLocalDBPath),
		HTTPTimeout:     durationOrDefault("HTTP_TIMEOUT", defaultHTTPTimeout),
		FallbackUserID:  int64OrDefault("FALLBACK_USER_ID", defaultFallbackUserID),
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebAppURL:       os.Getenv("WEB_APP_URL"),
		AdminUserIDs:    parseIDs(os.Getenv("ADMIN_USER_IDS")),
		SchedulerEnable: os.Getenv("ENABLE_SCHEDULER") != "false",
		ReminderTime:    envOrDefault("REMINDER_TIME", defaultReminderTime),
		DatabaseURL:     envOrDefault("DATABASE_URL", defaultServiceDB),
		Port:            envOrDefault("PORT", defaultPort),
	}
}

// RemoteMode reports whether a word service is configured
func (c Config) RemoteMode() bool {
	return c.APIBase != ""
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s %q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

func int64OrDefault(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func parseIDs(raw string) []int64 {
	var ids []int64
	for _, idStr := range strings.Split(raw, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			log.Printf("Warning: Invalid admin user ID: %s", idStr)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
