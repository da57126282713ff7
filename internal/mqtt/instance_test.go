package mqtt

import (
	"testing"

	"github.com/google/uuid"
)

func TestLoadOrCreateInstanceID_StableAcrossBoots(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrCreateInstanceID(dir)
	if err != nil {
		t.Fatalf("first boot: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("instance ID %q is not a UUID: %v", first, err)
	}

	second, err := LoadOrCreateInstanceID(dir)
	if err != nil {
		t.Fatalf("second boot: %v", err)
	}
	if first != second {
		t.Errorf("instance ID changed across boots: %q vs %q", first, second)
	}
}

func TestClientID(t *testing.T) {
	got := ClientID("envnode", "0198c5f2-aaaa-bbbb-cccc-ddddeeeeffff")
	if got != "envnode-0198c5f2" {
		t.Errorf("ClientID = %q", got)
	}
	if got := ClientID("envnode", "short"); got != "envnode-short" {
		t.Errorf("ClientID = %q", got)
	}
}
