package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

var ErrProbeNotFound = errors.New("probe not found")

// Registry holds the probes of one process by name, in insertion order.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Probe
	order  []*Probe
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Probe)}
}

func (r *Registry) Add(p *Probe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[p.Name()]; ok {
		return fmt.Errorf("duplicate probe name %q", p.Name())
	}
	r.byName[p.Name()] = p
	r.order = append(r.order, p)
	return nil
}

func (r *Registry) Get(name string) (*Probe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProbeNotFound, name)
	}
	return p, nil
}

func (r *Registry) List() []*Probe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Probe(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// StartAll starts every stopped probe. Already running probes are skipped.
func (r *Registry) StartAll() error {
	var err error
	for _, p := range r.List() {
		if e := p.Start(); e != nil && !errors.Is(e, ErrAlreadyRunning) {
			err = multierr.Append(err, fmt.Errorf("%s: %w", p.Name(), e))
		}
	}
	return err
}

// StopAll shuts every probe down concurrently and waits for alert deliveries
// already in progress, bounded by ctx.
func (r *Registry) StopAll(ctx context.Context) error {
	var (
		mu  sync.Mutex
		err error
		wg  sync.WaitGroup
	)
	for _, p := range r.List() {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e := p.Shutdown(ctx); e != nil {
				mu.Lock()
				err = multierr.Append(err, fmt.Errorf("%s: %w", p.Name(), e))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return err
}

func (r *Registry) Statuses() []Status {
	probes := r.List()
	out := make([]Status, 0, len(probes))
	for _, p := range probes {
		out = append(out, p.Status())
	}
	return out
}
