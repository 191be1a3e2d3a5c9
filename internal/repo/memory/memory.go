package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/httprobe/internal/domain"
)

const DefaultCapacity = 1000

// Store keeps the most recent alerts in a bounded ring.
type Store struct {
	mu     sync.RWMutex
	alerts []domain.Alert
	next   int
	full   bool
}

func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{alerts: make([]domain.Alert, capacity)}
}

func (m *Store) Append(ctx context.Context, a *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	if cp.Time.IsZero() {
		cp.Time = time.Now().UTC()
	}
	m.alerts[m.next] = cp
	m.next = (m.next + 1) % len(m.alerts)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *Store) Recent(ctx context.Context, limit int) ([]domain.Alert, error) {
	return m.collect(limit, func(domain.Alert) bool { return true }), nil
}

func (m *Store) ByProbe(ctx context.Context, probe string, limit int) ([]domain.Alert, error) {
	return m.collect(limit, func(a domain.Alert) bool { return a.Probe == probe }), nil
}

// collect walks the ring newest first.
func (m *Store) collect(limit int, keep func(domain.Alert) bool) []domain.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.next
	if m.full {
		n = len(m.alerts)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.Alert, 0, limit)
	for i := 1; i <= n && len(out) < limit; i++ {
		a := m.alerts[(m.next-i+len(m.alerts))%len(m.alerts)]
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
