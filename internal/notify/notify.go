package notify

import (
	"context"

	"go.uber.org/multierr"

	"github.com/hamed0406/httprobe/internal/domain"
)

// Sink receives alert events. Implementations must not block indefinitely;
// they are called from the probe's scheduling goroutine.
type Sink interface {
	Notify(ctx context.Context, a domain.Alert) error
}

type SinkFunc func(ctx context.Context, a domain.Alert) error

func (f SinkFunc) Notify(ctx context.Context, a domain.Alert) error { return f(ctx, a) }

// Multi delivers to every sink and combines their errors.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, a domain.Alert) error {
	var err error
	for _, s := range m {
		if s == nil {
			continue
		}
		err = multierr.Append(err, s.Notify(ctx, a))
	}
	return err
}
