package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamed0406/httprobe/internal/domain"
)

// Log writes every alert to the structured log.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Notify(_ context.Context, a domain.Alert) error {
	fields := []zap.Field{
		zap.String("alert_id", a.ID),
		zap.String("probe", a.Probe),
		zap.String("url", a.URL),
		zap.String("message", a.Message),
		zap.Int("matches", len(a.Details.Matches)),
	}
	if r := a.Details.Response; r != nil {
		fields = append(fields,
			zap.Int("status", r.StatusCode),
			zap.Float64("elapsed_s", r.ElapsedTime),
		)
	}
	if a.Details.Error != "" {
		fields = append(fields, zap.String("error", a.Details.Error))
	}
	l.Logger.Warn("probe_alert", fields...)
	return nil
}
