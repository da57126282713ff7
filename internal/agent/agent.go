// Sample-and-publish loop orchestrating the resilience collaborators.
package agent

import (
	"context"
	"time"

	"envnode-agent/internal/logging"
	"envnode-agent/internal/sensor"
)

// Feeder acknowledges the hardware deadman timer.
type Feeder interface {
	Feed() error
}

// Connectivity reports and repairs {link, session} health once per
// tick. Implementations must evaluate both flags fresh on every call.
type Connectivity interface {
	EnsureUp(ctx context.Context) bool
	LastKnownGood() time.Time
}

// Escalator fires the last-resort reboot once the no-recovery deadline
// passes. Check returns true when it fired.
type Escalator interface {
	Check(ctx context.Context, lastKnownGood time.Time) bool
}

// Reader produces one measurement per tick.
type Reader interface {
	Read(ctx context.Context) sensor.Measurement
}

// Publisher submits one payload fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, payload []byte)
}

// Agent drives one supervision-and-sample cycle per tick. In Safe Mode
// the connectivity collaborator permanently reports unhealthy, so the
// loop degenerates into an inert watchdog-feeding holding pattern.
type Agent struct {
	wd           Feeder
	conn         Connectivity
	esc          Escalator
	reader       Reader
	pub          Publisher
	tickInterval time.Duration
}

// New wires the collaborators into an agent.
func New(wd Feeder, conn Connectivity, esc Escalator, reader Reader, pub Publisher, tickInterval time.Duration) *Agent {
	return &Agent{
		wd:           wd,
		conn:         conn,
		esc:          esc,
		reader:       reader,
		pub:          pub,
		tickInterval: tickInterval,
	}
}

// Run executes ticks until ctx is done. The loop has no terminal state
// of its own: on hardware it exits only through a reset; ctx
// cancellation exists for bench runs and orderly shutdown.
func (a *Agent) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting sample-and-publish loop", "tick_interval", a.tickInterval)
	ticker := time.NewTicker(a.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.tick(ctx) {
				return
			}
		case <-ctx.Done():
			log.Info("stopping loop")
			return
		}
	}
}

// tick runs one cycle: feed watchdog, ensure connectivity, check the
// escalation deadline, then read and publish. It returns false only
// when the escalator fired. The deadline is checked on every tick,
// including failed-recovery ticks, so a link that never re-associates
// cannot suppress escalation.
func (a *Agent) tick(ctx context.Context) bool {
	log := logging.FromContext(ctx)

	if err := a.wd.Feed(); err != nil {
		log.Error("watchdog feed failed", "err", err)
	}

	up := a.conn.EnsureUp(ctx)
	if a.esc.Check(ctx, a.conn.LastKnownGood()) {
		return false
	}
	if !up {
		// Unhealthy tick: no read, no publish; the tick cadence is the
		// retry backoff.
		return true
	}

	m := a.reader.Read(ctx)
	payload := sensor.BuildPayload(m)
	a.pub.Publish(ctx, payload)
	log.Debug("published reading", "payload", string(payload), "valid", m.Valid)
	return true
}
