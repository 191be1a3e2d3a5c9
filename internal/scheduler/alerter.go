package scheduler

// State is the alerting state of a probe.
type State int

const (
	Healthy State = iota
	Failing
)

func (s State) String() string {
	if s == Failing {
		return "failing"
	}
	return "healthy"
}

// Transition is what a single observed cycle changed.
type Transition int

const (
	NoChange Transition = iota
	// Alert means the failure count just reached the threshold.
	Alert
	// Recovered means a healthy cycle ended a failing state.
	Recovered
)

// AlertState counts failing cycles against threshold within a window of
// interval cycles and decides when a failure becomes an alert. Alerts are
// edge-triggered: one per transition into Failing.
//
// A healthy cycle resets the count, so only an unbroken failing streak can
// reach the threshold. The window only caps the count.
type AlertState struct {
	threshold int
	interval  int
	failures  int
	state     State
}

func NewAlertState(threshold, interval int) *AlertState {
	if threshold < 1 {
		threshold = 1
	}
	if interval < threshold {
		interval = threshold
	}
	return &AlertState{threshold: threshold, interval: interval}
}

// Observe records one cycle outcome.
func (a *AlertState) Observe(failing bool) Transition {
	if !failing {
		prev := a.state
		a.failures = 0
		a.state = Healthy
		if prev == Failing {
			return Recovered
		}
		return NoChange
	}

	a.failures = min(a.failures+1, a.interval)
	if a.state == Healthy && a.failures >= a.threshold {
		a.state = Failing
		return Alert
	}
	return NoChange
}

type AlertSnapshot struct {
	State     string `json:"state"`
	Failures  int    `json:"failures"`
	Threshold int    `json:"threshold"`
	Interval  int    `json:"interval"`
}

func (a *AlertState) Snapshot() AlertSnapshot {
	return AlertSnapshot{
		State:     a.state.String(),
		Failures:  a.failures,
		Threshold: a.threshold,
		Interval:  a.interval,
	}
}
