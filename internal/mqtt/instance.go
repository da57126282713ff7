package mqtt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LoadOrCreateInstanceID reads the node's instance ID from the state
// directory, or generates a new UUIDv7 and persists it on first boot.
// The broker client ID is suffixed with this so it stays stable across
// reboots and the broker can cull the half-open session left by the
// previous incarnation.
func LoadOrCreateInstanceID(stateDir string) (string, error) {
	path := filepath.Join(stateDir, "instance_id")

	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate instance ID: %w", err)
	}

	idStr := id.String()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(idStr+"\n"), 0644); err != nil {
		return "", fmt.Errorf("persist instance ID to %s: %w", path, err)
	}

	return idStr, nil
}

// ClientID combines the configured base client ID with the short form
// of the instance ID.
func ClientID(base, instanceID string) string {
	if len(instanceID) > 8 {
		instanceID = instanceID[:8]
	}
	return base + "-" + instanceID
}
