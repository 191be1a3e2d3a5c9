package scheduler

import "testing"

func observeAll(a *AlertState, cycles string) []Transition {
	out := make([]Transition, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, a.Observe(c == 'F'))
	}
	return out
}

func TestAlertState_Sequences(t *testing.T) {
	cases := []struct {
		name                string
		threshold, interval int
		cycles              string // F = failing, . = healthy
		want                []Transition
	}{
		{
			name: "first failure alerts with defaults", threshold: 1, interval: 1,
			cycles: "F",
			want:   []Transition{Alert},
		},
		{
			name: "no repeat while still failing", threshold: 1, interval: 1,
			cycles: "FFF",
			want:   []Transition{Alert, NoChange, NoChange},
		},
		{
			name: "healthy cycles never alert", threshold: 1, interval: 1,
			cycles: "...",
			want:   []Transition{NoChange, NoChange, NoChange},
		},
		{
			name: "recovery re-arms", threshold: 1, interval: 1,
			cycles: "FF.F",
			want:   []Transition{Alert, NoChange, Recovered, Alert},
		},
		{
			name: "threshold needs an unbroken streak", threshold: 2, interval: 3,
			cycles: "F.F.FF",
			want:   []Transition{NoChange, NoChange, NoChange, NoChange, NoChange, Alert},
		},
		{
			name: "threshold three", threshold: 3, interval: 3,
			cycles: "FFFF.",
			want:   []Transition{NoChange, NoChange, Alert, NoChange, Recovered},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := observeAll(NewAlertState(tc.threshold, tc.interval), tc.cycles)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("cycle %d: got %v want %v", i, got, tc.want)
				}
			}
		})
	}
}

func TestAlertState_CountBoundedByWindow(t *testing.T) {
	a := NewAlertState(2, 2)
	observeAll(a, "FFFFF")
	if s := a.Snapshot(); s.Failures != 2 || s.State != "failing" {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestAlertState_IntervalRaisedToThreshold(t *testing.T) {
	a := NewAlertState(3, 1)
	if got := observeAll(a, "FFF"); got[2] != Alert {
		t.Fatalf("threshold unreachable with small interval: %v", got)
	}
	if s := a.Snapshot(); s.Interval != 3 {
		t.Fatalf("interval = %d", s.Interval)
	}
}
