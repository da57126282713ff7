// Connectivity supervision: link + broker session health and recovery.
package conn

import (
	"context"
	"time"

	"envnode-agent/internal/hw"
	"envnode-agent/internal/logging"
)

// State of the connectivity state machine, derived from the two health
// flags at the start of every tick.
type State string

const (
	StateDown         State = "down"
	StateEstablishing State = "establishing"
	StateUp           State = "up"
)

// Session is the broker-session collaborator. Up reads the shared
// status flag fresh (it has an asynchronous writer); Establish blocks
// within its own timeout and clears the flag before attempting.
type Session interface {
	Establish(ctx context.Context) error
	Up() bool
}

// Association carries the wireless association parameters.
type Association struct {
	SSID     string
	Password string
	AuthMode string
	Timeout  time.Duration
	// IPv4 optionally reports the station address for the
	// post-association log line.
	IPv4 func() (string, error)
}

// Supervisor maintains {link, session} health and performs recovery.
// It always re-evaluates both flags fresh at tick start; a verdict is
// never cached across ticks, so a session that degraded silently
// between ticks is caught on the next one.
type Supervisor struct {
	link          hw.Link
	session       Session
	assoc         Association
	safeMode      bool
	state         State
	lastKnownGood time.Time
	now           func() time.Time
}

// NewSupervisor returns a supervisor starting in the Down state with
// last-known-good initialized to now, so the no-recovery deadline is
// measured from boot when the node never gets healthy at all.
func NewSupervisor(link hw.Link, session Session, assoc Association, safeMode bool, now func() time.Time) *Supervisor {
	if now == nil {
		now = time.Now
	}
	return &Supervisor{
		link:          link,
		session:       session,
		assoc:         assoc,
		safeMode:      safeMode,
		state:         StateDown,
		lastKnownGood: now(),
		now:           now,
	}
}

// EnsureUp evaluates health for this tick and, when unhealthy and not
// in Safe Mode, performs one recovery attempt: link association, then
// session establishment. Both are synchronous and bounded by
// collaborator timeouts. Returns whether the node is Up.
func (s *Supervisor) EnsureUp(ctx context.Context) bool {
	log := logging.FromContext(ctx)

	if s.safeMode {
		// Safe Mode is terminal: the radio stays down and no recovery
		// is ever attempted.
		s.state = StateDown
		return false
	}

	if s.link.LinkStatus() && s.session.Up() {
		s.state = StateUp
		s.lastKnownGood = s.now()
		return true
	}

	prev := s.state
	s.state = StateEstablishing
	if !s.link.LinkStatus() {
		cctx, cancel := context.WithTimeout(ctx, s.assoc.Timeout)
		err := s.link.Connect(cctx, s.assoc.SSID, s.assoc.Password, s.assoc.AuthMode)
		cancel()
		if err != nil {
			log.Warn("link association failed", "ssid", s.assoc.SSID, "err", err)
			s.state = StateDown
			return false
		}
		if s.assoc.IPv4 != nil {
			if ip, err := s.assoc.IPv4(); err == nil {
				log.Info("station associated", "ssid", s.assoc.SSID, "ip", ip)
			}
		}
	}
	if !s.session.Up() {
		if err := s.session.Establish(ctx); err != nil {
			log.Warn("broker session establishment failed", "err", err)
			s.state = StateDown
			return false
		}
	}

	// Re-read both flags fresh: an establishment whose status callback
	// has not landed yet does not count as healthy.
	if s.link.LinkStatus() && s.session.Up() {
		if prev != StateUp {
			log.Info("connectivity recovered")
		}
		s.state = StateUp
		s.lastKnownGood = s.now()
		return true
	}
	s.state = StateDown
	return false
}

// State returns the current state machine position.
func (s *Supervisor) State() State {
	return s.state
}

// LastKnownGood returns the timestamp of the most recent tick where
// link and session were simultaneously healthy.
func (s *Supervisor) LastKnownGood() time.Time {
	return s.lastKnownGood
}
