package notify

import (
	"context"

	"github.com/hamed0406/httprobe/internal/domain"
	"github.com/hamed0406/httprobe/internal/repo"
)

// Record appends alerts to an alert log so the API can list them.
type Record struct {
	Log repo.AlertLog
}

func (r Record) Notify(ctx context.Context, a domain.Alert) error {
	return r.Log.Append(ctx, &a)
}
