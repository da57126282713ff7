package hw

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CounterCell is the minimal get/set capability for the persisted
// reboot counter: one unsigned integer that survives a warm reset.
// Stale values left over from before a cold boot are harmless because
// a non-watchdog reset cause zeroes the counter at startup.
type CounterCell interface {
	Load() (uint32, error)
	Store(uint32) error
}

// FileCell keeps the counter in a small state file.
type FileCell struct {
	path string
}

// NewFileCell returns a cell stored under dir.
func NewFileCell(dir string) *FileCell {
	return &FileCell{path: filepath.Join(dir, "boot_count")}
}

// Load reads the counter; a missing cell reads as zero.
func (c *FileCell) Load() (uint32, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read boot counter: %w", err)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse boot counter: %w", err)
	}
	return uint32(n), nil
}

// Store writes the counter, creating the state directory if needed.
func (c *FileCell) Store(n uint32) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(strconv.FormatUint(uint64(n), 10)+"\n"), 0644); err != nil {
		return fmt.Errorf("write boot counter: %w", err)
	}
	return nil
}
