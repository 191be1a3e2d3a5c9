package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string // status API bind address, e.g. "127.0.0.1:8080" or ":8080" in Docker
	LogDir      string // logs directory
	LogLevel    string // debug, info, warn, error
	LogStdout   bool   // also write logs to stdout
	DatabaseURL string // empty means alerts are kept in memory
	ProbesFile  string // YAML probe definitions

	SlackWebhookURL  string
	TelegramBotToken string
	TelegramChatID   int64

	PublicAPIKeys []string
	AdminAPIKeys  []string
	PublicRPM     int
	PublicBurst   int

	UserAgent    string
	AlertLogSize int
}

// LoadDotEnv reads .env style files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

func FromEnv() Config {
	return Config{
		Addr:        str("API_ADDR", "127.0.0.1:8080"),
		LogDir:      str("LOG_DIR", "logs"),
		LogLevel:    str("LOG_LEVEL", "info"),
		LogStdout:   boolean("LOG_STDOUT", false),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ProbesFile:  str("PROBES_FILE", "probes.yaml"),

		SlackWebhookURL:  strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:   int64Env("TELEGRAM_CHAT_ID"),

		PublicAPIKeys: list("PUBLIC_API_KEYS"),
		AdminAPIKeys:  list("ADMIN_API_KEYS"),
		PublicRPM:     positive("PUBLIC_RPM", 60),
		PublicBurst:   positive("PUBLIC_BURST", 20),

		UserAgent:    os.Getenv("USER_AGENT"),
		AlertLogSize: positive("ALERT_LOG_SIZE", 1000),
	}
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func positive(key string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && n > 0 {
		return n
	}
	return def
}

func boolean(key string, def bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return b
	}
	return def
}

func int64Env(key string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	return n
}

// list splits a comma separated variable, dropping empty items.
func list(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
