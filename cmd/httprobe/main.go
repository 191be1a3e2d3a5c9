package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/httprobe/internal/config"
	"github.com/hamed0406/httprobe/internal/httpapi"
	apimw "github.com/hamed0406/httprobe/internal/httpapi/middleware"
	"github.com/hamed0406/httprobe/internal/logging"
	"github.com/hamed0406/httprobe/internal/metrics"
	"github.com/hamed0406/httprobe/internal/notify"
	"github.com/hamed0406/httprobe/internal/probe"
	"github.com/hamed0406/httprobe/internal/repo"
	"github.com/hamed0406/httprobe/internal/repo/memory"
	pg "github.com/hamed0406/httprobe/internal/repo/postgres"
	"github.com/hamed0406/httprobe/internal/scheduler"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(logging.Options{Dir: cfg.LogDir, Level: cfg.LogLevel, Stdout: cfg.LogStdout})
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("httprobe_exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("httprobe_exit")
	_ = logger.Sync()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	alerts, closeAlerts, err := openAlertLog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAlerts()

	sink, err := buildSink(cfg, logger, alerts)
	if err != nil {
		return err
	}

	probes, err := loadProbes(cfg, logger, sink, m)
	if err != nil {
		return err
	}

	api := httpapi.NewServer(logger, probes, alerts, reg)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.PublicRPM, cfg.PublicBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := probes.StartAll()
		if err == nil {
			logger.Info("probes_started", zap.Int("count", probes.Len()))
			<-gctx.Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		err = multierr.Append(err, probes.StopAll(shutdownCtx))
		return multierr.Append(err, srv.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

// openAlertLog uses Postgres when DATABASE_URL is set and an in-memory ring
// otherwise.
func openAlertLog(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.AlertLog, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("alert_log", zap.String("backend", "memory"), zap.Int("size", cfg.AlertLogSize))
		return memory.New(cfg.AlertLogSize), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, err := pg.New(connectCtx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	if err := store.Migrate(connectCtx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	logger.Info("alert_log", zap.String("backend", "postgres"))
	return store, store.Close, nil
}

func buildSink(cfg config.Config, logger *zap.Logger, alerts repo.AlertLog) (notify.Sink, error) {
	sinks := notify.Multi{
		notify.Log{Logger: logger},
		notify.Record{Log: alerts},
	}
	if s := notify.NewSlack(cfg.SlackWebhookURL); s != nil {
		sinks = append(sinks, s)
		logger.Info("sink_enabled", zap.String("sink", "slack"))
	}
	tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		return nil, err
	}
	if tg != nil {
		sinks = append(sinks, tg)
		logger.Info("sink_enabled", zap.String("sink", "telegram"))
	}
	return sinks, nil
}

// loadProbes builds a probe for every valid definition. Invalid definitions
// are logged and skipped.
func loadProbes(cfg config.Config, logger *zap.Logger, sink notify.Sink, m *metrics.Metrics) (*scheduler.Registry, error) {
	raws, err := config.LoadProbes(cfg.ProbesFile)
	if err != nil {
		return nil, err
	}

	checker := probe.NewChecker(probe.NewHTTPClient(probe.HTTPClientConfig{UserAgent: cfg.UserAgent}), nil)
	probes := scheduler.NewRegistry()
	for i, raw := range raws {
		pc, err := probe.NewConfig(raw)
		if err != nil {
			logger.Warn("probe_invalid", zap.Int("index", i), zap.String("name", raw.Name), zap.Error(err))
			continue
		}
		p := scheduler.New(pc, checker, sink, scheduler.WithLogger(logger), scheduler.WithMetrics(m))
		if err := probes.Add(p); err != nil {
			logger.Warn("probe_invalid", zap.Int("index", i), zap.Error(err))
		}
	}
	if probes.Len() == 0 {
		return nil, fmt.Errorf("no valid probes in %s", cfg.ProbesFile)
	}
	return probes, nil
}
