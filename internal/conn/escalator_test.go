package conn

import (
	"context"
	"testing"
	"time"
)

type fakeResetter struct {
	feeds  int
	resets int
}

func (w *fakeResetter) Arm(time.Duration) error { return nil }
func (w *fakeResetter) Feed() error             { w.feeds++; return nil }
func (w *fakeResetter) ForceReset() error       { w.resets++; return nil }

func TestCheck_FiresPastDeadline(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	wd := &fakeResetter{}
	e := NewDeadlineEscalator(5*time.Minute, false, wd, func() time.Time { return now })
	e.halt = func() {}

	lkg := now.Add(-5*time.Minute - time.Second)
	if !e.Check(context.Background(), lkg) {
		t.Fatalf("expected escalation past deadline")
	}
	if wd.resets != 1 {
		t.Errorf("resets = %d, want 1", wd.resets)
	}
	if wd.feeds != 1 {
		t.Errorf("reboot path must feed the deadman once, feeds = %d", wd.feeds)
	}
}

func TestCheck_QuietWithinDeadline(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	wd := &fakeResetter{}
	e := NewDeadlineEscalator(5*time.Minute, false, wd, func() time.Time { return now })
	e.halt = func() {}

	// Exactly at the deadline is still within it.
	if e.Check(context.Background(), now.Add(-5*time.Minute)) {
		t.Fatalf("escalated at the deadline boundary")
	}
	if e.Check(context.Background(), now.Add(-time.Second)) {
		t.Fatalf("escalated while healthy")
	}
	if wd.resets != 0 {
		t.Errorf("resets = %d, want 0", wd.resets)
	}
}

func TestCheck_NeverFiresInSafeMode(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	wd := &fakeResetter{}
	e := NewDeadlineEscalator(5*time.Minute, true, wd, func() time.Time { return now })
	e.halt = func() {}

	// Arbitrarily long outage: Safe Mode is already the terminal state.
	if e.Check(context.Background(), now.Add(-24*time.Hour)) {
		t.Fatalf("escalated in safe mode")
	}
	if wd.resets != 0 || wd.feeds != 0 {
		t.Errorf("watchdog touched in safe mode: %+v", wd)
	}
}
