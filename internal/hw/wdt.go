package hw

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// WDIOF_CARDRESET from <linux/watchdog.h>: the last reboot was caused
// by the watchdog card.
const wdiofCardReset = 0x0020

// WDT drives a Linux watchdog character device. Opening the device
// starts the countdown on most drivers, so the caller must begin
// feeding promptly after Arm.
type WDT struct {
	f *os.File
}

// OpenWatchdog opens the watchdog device at path (e.g. /dev/watchdog0).
func OpenWatchdog(path string) (*WDT, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open watchdog: %w", err)
	}
	return &WDT{f: f}, nil
}

// Arm sets the hardware timeout. Sub-second values are rounded up to
// one second, the device granularity.
func (w *WDT) Arm(timeout time.Duration) error {
	secs := int((timeout + time.Second - 1) / time.Second)
	if err := unix.IoctlSetPointerInt(int(w.f.Fd()), unix.WDIOC_SETTIMEOUT, secs); err != nil {
		return fmt.Errorf("set watchdog timeout: %w", err)
	}
	return nil
}

// Feed acknowledges the deadman timer.
func (w *WDT) Feed() error {
	if _, err := w.f.Write([]byte{0}); err != nil {
		return fmt.Errorf("feed watchdog: %w", err)
	}
	return nil
}

// ForceReset syncs filesystems and requests an immediate hardware
// restart. On success it does not return to the caller's loop: the
// kernel reboots.
func (w *WDT) ForceReset() error {
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}

// WatchdogCausedReset queries the device boot status for the
// card-reset flag.
func (w *WDT) WatchdogCausedReset() (bool, error) {
	status, err := unix.IoctlGetInt(int(w.f.Fd()), unix.WDIOC_GETBOOTSTATUS)
	if err != nil {
		return false, fmt.Errorf("watchdog boot status: %w", err)
	}
	return status&wdiofCardReset != 0, nil
}
