package bootguard

import (
	"context"
	"testing"
	"time"
)

type fakeCell struct {
	v      uint32
	stores int
}

func (c *fakeCell) Load() (uint32, error) { return c.v, nil }
func (c *fakeCell) Store(n uint32) error  { c.v = n; c.stores++; return nil }

type fakeCause struct {
	watchdog bool
}

func (c fakeCause) WatchdogCausedReset() (bool, error) { return c.watchdog, nil }

type fakeWatchdog struct {
	armed time.Duration
	arms  int
}

func (w *fakeWatchdog) Arm(d time.Duration) error { w.armed = d; w.arms++; return nil }
func (w *fakeWatchdog) Feed() error               { return nil }
func (w *fakeWatchdog) ForceReset() error         { return nil }

func TestEvaluate_WatchdogResetSequence(t *testing.T) {
	cell := &fakeCell{}
	wd := &fakeWatchdog{}

	// k consecutive watchdog-caused resets: counter equals k, safe mode
	// flips exactly at the threshold and stays true after.
	for k := uint32(1); k <= 7; k++ {
		g := New(cell, fakeCause{watchdog: true}, wd, 5, 8*time.Second)
		st, err := g.Evaluate(context.Background())
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if st.Count != k {
			t.Errorf("after reset %d: count = %d", k, st.Count)
		}
		if want := k >= 5; st.SafeMode != want {
			t.Errorf("after reset %d: safe_mode = %v, want %v", k, st.SafeMode, want)
		}
		if st.SafeMode != (st.Count >= 5) {
			t.Errorf("invariant violated: %+v", st)
		}
	}
	if cell.stores != 7 {
		t.Errorf("counter persisted %d times, want 7", cell.stores)
	}
}

func TestEvaluate_ColdBootClearsCounter(t *testing.T) {
	cell := &fakeCell{v: 7}
	g := New(cell, fakeCause{watchdog: false}, &fakeWatchdog{}, 5, 8*time.Second)

	st, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if st.Count != 0 || st.SafeMode {
		t.Errorf("cold boot must clear state, got %+v", st)
	}
	if cell.v != 0 {
		t.Errorf("persisted counter = %d, want 0", cell.v)
	}
}

func TestEvaluate_ArmsWatchdogEvenInSafeMode(t *testing.T) {
	cell := &fakeCell{v: 9}
	wd := &fakeWatchdog{}
	g := New(cell, fakeCause{watchdog: true}, wd, 5, 8*time.Second)

	st, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !st.SafeMode {
		t.Fatalf("expected safe mode at count %d", st.Count)
	}
	if wd.arms != 1 || wd.armed != 8*time.Second {
		t.Errorf("watchdog not armed in safe mode: arms=%d timeout=%v", wd.arms, wd.armed)
	}
}
