package repo

import (
	"context"

	"github.com/hamed0406/httprobe/internal/domain"
)

// AlertLog keeps delivered alerts for inspection. It is write-only from the
// probes' point of view: alert state is never rebuilt from it.
type AlertLog interface {
	Append(ctx context.Context, a *domain.Alert) error
	// Recent returns up to limit alerts, newest first.
	Recent(ctx context.Context, limit int) ([]domain.Alert, error)
	// ByProbe is Recent restricted to one probe name.
	ByProbe(ctx context.Context, probe string, limit int) ([]domain.Alert, error)
}
