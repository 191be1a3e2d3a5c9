package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/hamed0406/httprobe/internal/probe"
)

func TestRegistry(t *testing.T) {
	chk := &scriptedChecker{results: []probe.CheckResult{ok()}}
	r := NewRegistry()
	a := New(newConfig(t, probe.RawConfig{Name: "a", URL: "http://a.test"}), chk, nil)
	b := New(newConfig(t, probe.RawConfig{Name: "b", URL: "http://b.test"}), chk, nil)

	for _, p := range []*Probe{a, b} {
		if err := r.Add(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Add(New(a.Config(), chk, nil)); err == nil {
		t.Fatal("duplicate name accepted")
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrProbeNotFound) {
		t.Fatalf("Get(missing) = %v", err)
	}
	if got, _ := r.Get("b"); got != b {
		t.Fatal("Get(b) returned wrong probe")
	}

	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	if err := r.StartAll(); err != nil {
		t.Fatalf("StartAll with one running probe: %v", err)
	}
	for _, st := range r.Statuses() {
		if !st.Running {
			t.Fatalf("%s not running", st.Name)
		}
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if st := r.Statuses(); st[0].Name != "a" || st[0].Running || st[1].Running {
		t.Fatalf("statuses after StopAll: %+v", st)
	}
}
