package conn

import (
	"context"
	"time"

	"envnode-agent/internal/hw"
	"envnode-agent/internal/logging"
)

// DeadlineEscalator forces a reboot when the node has been alive and
// looping correctly but unable to restore connectivity for longer than
// the deadline. Distinct from the watchdog, which only catches
// lockups; this catches an environment that refuses to recover.
type DeadlineEscalator struct {
	deadline time.Duration
	safeMode bool
	wd       hw.Watchdog
	now      func() time.Time
	halt     func()
}

// NewDeadlineEscalator returns an escalator over the given watchdog.
// It never fires in Safe Mode: rebooting out of Safe Mode would defeat
// the boot-loop counter.
func NewDeadlineEscalator(deadline time.Duration, safeMode bool, wd hw.Watchdog, now func() time.Time) *DeadlineEscalator {
	if now == nil {
		now = time.Now
	}
	return &DeadlineEscalator{
		deadline: deadline,
		safeMode: safeMode,
		wd:       wd,
		now:      now,
		halt:     waitForReset,
	}
}

// Check fires the last-resort reboot when lastKnownGood is older than
// the deadline. It returns true when the reboot was requested; on real
// hardware the call does not return because the device resets.
func (e *DeadlineEscalator) Check(ctx context.Context, lastKnownGood time.Time) bool {
	if e.safeMode {
		return false
	}
	unhealthy := e.now().Sub(lastKnownGood)
	if unhealthy <= e.deadline {
		return false
	}

	log := logging.FromContext(ctx)
	log.Error("no connectivity recovery within deadline, requesting reboot",
		"unhealthy_for", unhealthy,
		"deadline", e.deadline)

	// Feed once so the deadman cannot race the reboot request itself.
	if err := e.wd.Feed(); err != nil {
		log.Warn("watchdog feed before reboot failed", "err", err)
	}
	if err := e.wd.ForceReset(); err != nil {
		log.Error("force reset request failed", "err", err)
	}
	e.halt()
	return true
}

// waitForReset stands in for "spin until the hardware actually
// resets": a bounded wait with the watchdog deliberately left unfed as
// the backstop if the reboot request was lost.
func waitForReset() {
	deadline := time.Now().Add(2 * time.Minute)
	for time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
}
