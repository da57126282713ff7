package conn

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLink struct {
	up          bool
	connectErr  error
	connects    int
	onConnect   func()
	radioStates []bool
}

func (l *fakeLink) Connect(_ context.Context, _, _, _ string) error {
	l.connects++
	if l.connectErr != nil {
		return l.connectErr
	}
	if l.onConnect != nil {
		l.onConnect()
	}
	return nil
}

func (l *fakeLink) LinkStatus() bool { return l.up }

func (l *fakeLink) SetRadioEnabled(on bool) error {
	l.radioStates = append(l.radioStates, on)
	return nil
}

type fakeSession struct {
	up           bool
	establishErr error
	establishes  int
	onEstablish  func()
}

func (s *fakeSession) Establish(context.Context) error {
	s.establishes++
	if s.establishErr != nil {
		return s.establishErr
	}
	if s.onEstablish != nil {
		s.onEstablish()
	}
	return nil
}

func (s *fakeSession) Up() bool { return s.up }

// testClock steps a fake time by one second per call.
func testClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestEnsureUp_HealthyTickUpdatesLastKnownGood(t *testing.T) {
	link := &fakeLink{up: true}
	sess := &fakeSession{up: true}
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := NewSupervisor(link, sess, Association{Timeout: time.Second}, false, testClock(start))

	var prev time.Time
	for i := 0; i < 3; i++ {
		if !s.EnsureUp(context.Background()) {
			t.Fatalf("tick %d: expected Up", i)
		}
		lkg := s.LastKnownGood()
		if !lkg.After(prev) {
			t.Errorf("tick %d: last_known_good %v not monotonically increasing past %v", i, lkg, prev)
		}
		prev = lkg
	}
	if s.State() != StateUp {
		t.Errorf("state = %v, want %v", s.State(), StateUp)
	}
	if link.connects != 0 || sess.establishes != 0 {
		t.Errorf("healthy ticks must not attempt recovery")
	}
}

func TestEnsureUp_SafeModeNeverAttemptsRecovery(t *testing.T) {
	link := &fakeLink{up: false}
	sess := &fakeSession{up: false}
	s := NewSupervisor(link, sess, Association{Timeout: time.Second}, true, nil)

	for i := 0; i < 5; i++ {
		if s.EnsureUp(context.Background()) {
			t.Fatalf("safe mode must report down")
		}
	}
	if link.connects != 0 || sess.establishes != 0 {
		t.Errorf("safe mode attempted recovery: connects=%d establishes=%d", link.connects, sess.establishes)
	}
	if s.State() != StateDown {
		t.Errorf("state = %v, want %v", s.State(), StateDown)
	}
}

func TestEnsureUp_RecoverySuccess(t *testing.T) {
	link := &fakeLink{up: false}
	sess := &fakeSession{up: false}
	link.onConnect = func() { link.up = true }
	sess.onEstablish = func() { sess.up = true }
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := NewSupervisor(link, sess, Association{SSID: "lab", Timeout: time.Second}, false, testClock(start))

	before := s.LastKnownGood()
	if !s.EnsureUp(context.Background()) {
		t.Fatalf("expected recovery to succeed")
	}
	if link.connects != 1 || sess.establishes != 1 {
		t.Errorf("recovery steps: connects=%d establishes=%d", link.connects, sess.establishes)
	}
	if !s.LastKnownGood().After(before) {
		t.Errorf("last_known_good not updated on recovery")
	}
	if s.State() != StateUp {
		t.Errorf("state = %v, want %v", s.State(), StateUp)
	}
}

func TestEnsureUp_AssociationFailureSkipsSession(t *testing.T) {
	link := &fakeLink{up: false, connectErr: errors.New("no ap")}
	sess := &fakeSession{up: false}
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := testClock(start)
	s := NewSupervisor(link, sess, Association{Timeout: time.Second}, false, clock)
	before := s.LastKnownGood()

	if s.EnsureUp(context.Background()) {
		t.Fatalf("expected failure")
	}
	if sess.establishes != 0 {
		t.Errorf("session establishment attempted after failed association")
	}
	if s.State() != StateDown {
		t.Errorf("state = %v, want %v", s.State(), StateDown)
	}
	if !s.LastKnownGood().Equal(before) {
		t.Errorf("last_known_good moved on a failed tick")
	}
}

func TestEnsureUp_SilentSessionDegradeCaughtNextTick(t *testing.T) {
	link := &fakeLink{up: true}
	sess := &fakeSession{up: true}
	s := NewSupervisor(link, sess, Association{Timeout: time.Second}, false, nil)

	if !s.EnsureUp(context.Background()) {
		t.Fatalf("expected Up")
	}

	// Broker status callback clears the flag between ticks; the next
	// tick must notice and attempt re-establishment, not reuse the
	// previous verdict.
	sess.up = false
	sess.establishErr = errors.New("refused")
	if s.EnsureUp(context.Background()) {
		t.Fatalf("degraded session must report down")
	}
	if sess.establishes != 1 {
		t.Errorf("expected one re-establishment attempt, got %d", sess.establishes)
	}
}

func TestEnsureUp_EstablishWithoutFlagDoesNotCount(t *testing.T) {
	// Establish returns success but the asynchronous status flag has
	// not landed: the tick must not report healthy.
	link := &fakeLink{up: true}
	sess := &fakeSession{up: false}
	s := NewSupervisor(link, sess, Association{Timeout: time.Second}, false, nil)
	before := s.LastKnownGood()

	if s.EnsureUp(context.Background()) {
		t.Fatalf("flagless establishment must not count as Up")
	}
	if !s.LastKnownGood().Equal(before) {
		t.Errorf("last_known_good moved without verified health")
	}
}
