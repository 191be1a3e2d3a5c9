// cmd/preflight/main.go
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/httprobe/internal/config"
	"github.com/hamed0406/httprobe/internal/probe"
	pg "github.com/hamed0406/httprobe/internal/repo/postgres"
)

func main() {
	failures := 0
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		failures++
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	if err := config.LoadDotEnv(); err != nil {
		fail("could not load .env: " + err.Error())
	}
	cfg := config.FromEnv()

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty (start/stop routes are open).")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("no API keys configured (status API is open).")
	}
	for _, name := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS"} {
		if strings.Contains(os.Getenv(name), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}
	ok("API_ADDR=" + cfg.Addr)

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		fail("LOG_LEVEL " + err.Error())
	}

	if cfg.DatabaseURL == "" {
		warn("DATABASE_URL empty; alerts are kept in memory only.")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err := pg.New(ctx, cfg.DatabaseURL, nil)
		cancel()
		if err != nil {
			fail("DATABASE_URL unreachable: " + err.Error())
		} else {
			store.Close()
			ok("DATABASE_URL reachable")
		}
	}

	if cfg.SlackWebhookURL != "" {
		if u, err := url.Parse(cfg.SlackWebhookURL); err != nil || u.Scheme != "https" {
			fail("SLACK_WEBHOOK_URL must be an https URL")
		} else {
			ok("Slack sink enabled")
		}
	}
	switch {
	case cfg.TelegramBotToken != "" && cfg.TelegramChatID == 0:
		fail("TELEGRAM_BOT_TOKEN set but TELEGRAM_CHAT_ID missing or not a number")
	case cfg.TelegramBotToken != "":
		ok("Telegram sink enabled")
	}

	checkProbes(cfg.ProbesFile, ok, warn, fail)

	if failures > 0 {
		fmt.Fprintf(os.Stderr, "✖ preflight failed (%d problems)\n", failures)
		os.Exit(1)
	}
	ok("preflight passed")
}

func checkProbes(path string, ok, warn, fail func(string)) {
	raws, err := config.LoadProbes(path)
	if err != nil {
		fail("PROBES_FILE " + err.Error())
		return
	}
	if len(raws) == 0 {
		fail("PROBES_FILE " + path + " defines no probes")
		return
	}
	seen := make(map[string]bool, len(raws))
	for i, raw := range raws {
		c, err := probe.NewConfig(raw)
		if err != nil {
			fail(fmt.Sprintf("probe[%d] %s: %v", i, raw.URL, err))
			continue
		}
		if seen[c.Name] {
			fail(fmt.Sprintf("probe[%d] duplicate name %q", i, c.Name))
			continue
		}
		seen[c.Name] = true
		if c.Headers.Get("Authorization") != "" && strings.HasPrefix(c.URL, "http://") {
			warn(fmt.Sprintf("probe %q sends credentials over plain http", c.Name))
		}
		ok(fmt.Sprintf("probe %q %s %s every %s (threshold %d/%d)",
			c.Name, c.Method, c.URL, c.Period, c.Threshold, c.Interval))
	}
}
