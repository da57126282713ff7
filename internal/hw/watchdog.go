// Hardware collaborators for the node: deadman timer, wireless link,
// persisted boot counter cell.
package hw

import "time"

// Watchdog abstracts the platform deadman timer. Once armed it cannot
// be disarmed; Feed must be called within the timeout or the hardware
// resets the device unconditionally.
type Watchdog interface {
	Arm(timeout time.Duration) error
	Feed() error
	// ForceReset requests an immediate unconditional reboot. It returns
	// only if the reboot request itself failed.
	ForceReset() error
}

// ResetCause reports how the previous boot ended.
type ResetCause interface {
	// WatchdogCausedReset is true when the last reset was fired by the
	// deadman timer rather than a cold power-up or user reset.
	WatchdogCausedReset() (bool, error)
}

// NopWatchdog is an inert stand-in for bench runs where the real
// deadman must not be armed (the debugger would lose the race).
type NopWatchdog struct{}

func (NopWatchdog) Arm(time.Duration) error { return nil }

func (NopWatchdog) Feed() error { return nil }

func (NopWatchdog) ForceReset() error { return nil }

func (NopWatchdog) WatchdogCausedReset() (bool, error) { return false, nil }
