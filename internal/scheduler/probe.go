package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/hamed0406/httprobe/internal/domain"
	"github.com/hamed0406/httprobe/internal/metrics"
	"github.com/hamed0406/httprobe/internal/notify"
	"github.com/hamed0406/httprobe/internal/probe"
)

var ErrAlreadyRunning = errors.New("probe already running")

const sinkTimeout = 15 * time.Second

// Checker performs a single request for a probe configuration.
type Checker interface {
	Check(ctx context.Context, cfg *probe.Config) probe.CheckResult
}

type Option func(*Probe)

func WithLogger(l *zap.Logger) Option { return func(p *Probe) { p.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(p *Probe) { p.metrics = m } }

func WithClock(clk clock.Clock) Option { return func(p *Probe) { p.clk = clk } }

// Probe runs one probe configuration on its period until stopped. The first
// cycle runs as soon as Start is called.
type Probe struct {
	cfg     *probe.Config
	checker Checker
	sink    notify.Sink
	log     *zap.Logger
	metrics *metrics.Metrics
	clk     clock.Clock

	mu    sync.Mutex
	cur   *run
	state *AlertState
	last  *cycleResult
}

// run is one Start..Stop span. It is cancelled with the probe's mu held, so
// a delivery admitted under mu never starts after Stop returns.
type run struct {
	ctx        context.Context
	cancel     context.CancelFunc
	state      *AlertState
	delivering sync.WaitGroup
}

type cycleResult struct {
	checkedAt  time.Time
	statusCode int
	elapsed    time.Duration
	violations []string
}

func New(cfg *probe.Config, checker Checker, sink notify.Sink, opts ...Option) *Probe {
	p := &Probe{
		cfg:     cfg,
		checker: checker,
		sink:    sink,
		log:     zap.NewNop(),
		clk:     clock.New(),
		state:   NewAlertState(cfg.Threshold, cfg.Interval),
	}
	for _, o := range opts {
		o(p)
	}
	p.log = p.log.With(zap.String("probe", cfg.Name))
	return p
}

func (p *Probe) Name() string { return p.cfg.Name }

func (p *Probe) Config() *probe.Config { return p.cfg }

// Start begins periodic checking with a fresh alert state.
func (p *Probe) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{ctx: ctx, cancel: cancel, state: NewAlertState(p.cfg.Threshold, p.cfg.Interval)}
	p.cur = r
	p.state = r.state
	p.last = nil
	p.metrics.SetFailing(p.cfg.Name, false)

	p.log.Info("probe_started",
		zap.String("url", p.cfg.URL),
		zap.Duration("period", p.cfg.Period),
		zap.Int("threshold", p.cfg.Threshold),
		zap.Int("interval", p.cfg.Interval),
	)
	go p.loop(r)
	return nil
}

// Stop halts checking and never blocks on the sink, so a sink may call it. A
// request already in flight is left to finish but its result is discarded.
// No alert delivery starts after Stop returns; one already in progress keeps
// going (see Shutdown). Stop on a stopped probe is a no-op.
func (p *Probe) Stop() {
	p.stop()
}

func (p *Probe) stop() *run {
	p.mu.Lock()
	r := p.cur
	p.cur = nil
	if r != nil {
		r.cancel()
		p.metrics.SetFailing(p.cfg.Name, false)
	}
	p.mu.Unlock()
	if r == nil {
		return nil
	}
	p.log.Info("probe_stopped")
	return r
}

// Shutdown stops the probe and waits until an alert delivery that was already
// in progress returns, or ctx is done. It must not be called from the sink.
func (p *Probe) Shutdown(ctx context.Context) error {
	r := p.stop()
	if r == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.delivering.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Probe) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur != nil
}

func (p *Probe) loop(r *run) {
	ticker := time.NewTicker(p.cfg.Period)
	defer ticker.Stop()

	p.cycle(r)
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			p.cycle(r)
		}
	}
}

func (p *Probe) cycle(r *run) {
	if r.ctx.Err() != nil {
		return
	}

	res := p.checker.Check(context.WithoutCancel(r.ctx), p.cfg)
	if r.ctx.Err() != nil {
		p.log.Debug("probe_result_discarded")
		return
	}

	violations := probe.Evaluate(p.cfg, res)
	healthy := len(violations) == 0
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Message)
		p.metrics.AddViolation(p.cfg.Name, v.Kind.String())
	}
	p.metrics.ObserveCycle(p.cfg.Name, healthy, res.Elapsed)

	p.mu.Lock()
	tr := r.state.Observe(!healthy)
	snap := r.state.Snapshot()
	if p.cur == r {
		p.last = &cycleResult{
			checkedAt:  res.CheckedAt,
			statusCode: res.StatusCode,
			elapsed:    res.Elapsed,
			violations: msgs,
		}
	}
	p.mu.Unlock()

	p.log.Debug("probe_cycle",
		zap.Bool("healthy", healthy),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", res.Elapsed),
		zap.Strings("violations", msgs),
		zap.Int("failures", snap.Failures),
	)

	switch tr {
	case Recovered:
		p.metrics.SetFailing(p.cfg.Name, false)
		p.log.Info("probe_recovered", zap.Int("status", res.StatusCode))
	case Alert:
		p.emit(r, probe.NewAlert(p.cfg, res, violations, p.clk.Now()))
	}
}

func (p *Probe) emit(r *run, a domain.Alert) {
	p.mu.Lock()
	if r.ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	r.delivering.Add(1)
	p.metrics.AddAlert(p.cfg.Name)
	p.metrics.SetFailing(p.cfg.Name, true)
	p.mu.Unlock()
	defer r.delivering.Done()

	if p.sink == nil {
		return
	}
	// Delivery outlives Stop, so it gets its own deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.ctx), sinkTimeout)
	defer cancel()
	if err := p.sink.Notify(ctx, a); err != nil {
		p.metrics.AddSinkError(p.cfg.Name)
		p.log.Error("sink_error", zap.String("alert_id", a.ID), zap.Error(err))
	}
}

// Status is a point-in-time view of a probe.
type Status struct {
	Name       string        `json:"name"`
	URL        string        `json:"url"`
	Running    bool          `json:"running"`
	Alert      AlertSnapshot `json:"alert"`
	LastCheck  *time.Time    `json:"lastCheck,omitempty"`
	StatusCode int           `json:"statusCode,omitempty"`
	Elapsed    float64       `json:"elapsedTime,omitempty"` // seconds
	Violations []string      `json:"violations,omitempty"`
}

func (p *Probe) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Status{
		Name:    p.cfg.Name,
		URL:     p.cfg.URL,
		Running: p.cur != nil,
		Alert:   p.state.Snapshot(),
	}
	if l := p.last; l != nil {
		at := l.checkedAt
		s.LastCheck = &at
		s.StatusCode = l.statusCode
		s.Elapsed = l.elapsed.Seconds()
		s.Violations = append([]string(nil), l.violations...)
	}
	return s
}
