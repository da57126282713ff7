// Boot-loop guard: persisted reboot counter and Safe Mode decision.
package bootguard

import (
	"context"
	"fmt"
	"time"

	"envnode-agent/internal/hw"
	"envnode-agent/internal/logging"
)

// State is the outcome of the startup boot evaluation. SafeMode is
// always Count >= threshold; nothing else mutates these after startup.
type State struct {
	Count    uint32
	SafeMode bool
}

// Guard owns the persisted reboot counter. It runs exactly once at
// startup and gates whether connectivity may be brought up at all.
type Guard struct {
	cell      hw.CounterCell
	cause     hw.ResetCause
	wd        hw.Watchdog
	threshold uint32
	timeout   time.Duration
}

// New returns a Guard over the given counter cell and watchdog.
func New(cell hw.CounterCell, cause hw.ResetCause, wd hw.Watchdog, threshold uint32, timeout time.Duration) *Guard {
	return &Guard{cell: cell, cause: cause, wd: wd, threshold: threshold, timeout: timeout}
}

// Evaluate updates the counter from the reset cause, persists it,
// decides Safe Mode, and arms the watchdog. The watchdog is armed
// regardless of mode: even Safe Mode stays deadman-protected.
func (g *Guard) Evaluate(ctx context.Context) (State, error) {
	log := logging.FromContext(ctx)

	wdReset, err := g.cause.WatchdogCausedReset()
	if err != nil {
		// An unreadable cause counts as a cold boot: never inflate the
		// counter on ambiguity.
		log.Warn("reset cause unavailable, assuming cold boot", "err", err)
		wdReset = false
	}

	cnt, err := g.cell.Load()
	if err != nil {
		return State{}, fmt.Errorf("load reboot counter: %w", err)
	}
	if wdReset {
		cnt++
	} else {
		cnt = 0
	}
	if err := g.cell.Store(cnt); err != nil {
		return State{}, fmt.Errorf("persist reboot counter: %w", err)
	}

	st := State{Count: cnt, SafeMode: cnt >= g.threshold}
	if err := g.wd.Arm(g.timeout); err != nil {
		return st, fmt.Errorf("arm watchdog: %w", err)
	}
	log.Info("boot guard evaluated",
		"watchdog_reset", wdReset,
		"consecutive_reboots", st.Count,
		"safe_mode", st.SafeMode)
	return st, nil
}
