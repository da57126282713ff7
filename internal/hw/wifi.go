package hw

import "context"

// Link is the wireless station collaborator. Connect blocks until the
// association completes or ctx expires; LinkStatus is a cheap
// synchronous query of the current link flag.
type Link interface {
	Connect(ctx context.Context, ssid, password, authMode string) error
	LinkStatus() bool
	SetRadioEnabled(enabled bool) error
}
