package hw

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
)

// NMLink associates the station interface through NetworkManager and
// reads the kernel operstate for the synchronous link flag.
type NMLink struct {
	iface string
}

// NewNMLink returns a Link for the named interface (e.g. wlan0).
func NewNMLink(iface string) *NMLink {
	return &NMLink{iface: iface}
}

// Connect associates with the given SSID. NetworkManager negotiates
// the auth mode from the scan result; authMode is accepted for
// interface parity and validated by config, not passed through.
func (l *NMLink) Connect(ctx context.Context, ssid, password, _ string) error {
	args := []string{"device", "wifi", "connect", ssid, "ifname", l.iface}
	if password != "" {
		args = append(args, "password", password)
	}
	out, err := exec.CommandContext(ctx, "nmcli", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("nmcli connect %q: %v: %s", ssid, err, bytes.TrimSpace(out))
	}
	return nil
}

// LinkStatus reports whether the interface carrier is up.
func (l *NMLink) LinkStatus() bool {
	b, err := os.ReadFile("/sys/class/net/" + l.iface + "/operstate")
	return err == nil && strings.TrimSpace(string(b)) == "up"
}

// SetRadioEnabled powers the wifi radio on or off.
func (l *NMLink) SetRadioEnabled(enabled bool) error {
	state := "off"
	if enabled {
		state = "on"
	}
	out, err := exec.Command("nmcli", "radio", "wifi", state).CombinedOutput()
	if err != nil {
		return fmt.Errorf("nmcli radio wifi %s: %v: %s", state, err, bytes.TrimSpace(out))
	}
	return nil
}

// IPv4 returns the interface address in CIDR form, best-effort, for
// the post-association startup log.
func (l *NMLink) IPv4() (string, error) {
	ifc, err := net.InterfaceByName(l.iface)
	if err != nil {
		return "", err
	}
	addrs, err := ifc.Addrs()
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if ipn, ok := a.(*net.IPNet); ok && ipn.IP.To4() != nil {
			return ipn.String(), nil
		}
	}
	return "", fmt.Errorf("no IPv4 address on %s", l.iface)
}
