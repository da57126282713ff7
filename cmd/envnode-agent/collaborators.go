package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"envnode-agent/internal/agent"
	"envnode-agent/internal/config"
	"envnode-agent/internal/conn"
	"envnode-agent/internal/hw"
	"envnode-agent/internal/mqtt"
	"envnode-agent/internal/sensor"
)

// collaborators bundles the external collaborators the supervisor
// drives. Bench mode (--print-only) swaps every hardware touchpoint
// for an inert stand-in so the agent can run on a workstation.
type collaborators struct {
	wd      hw.Watchdog
	cause   hw.ResetCause
	cell    hw.CounterCell
	link    hw.Link
	session conn.Session
	pub     agent.Publisher
	bus     sensor.Bus
	ipv4    func() (string, error)
	close   func()
}

func newCollaborators(cfg *config.Config, printOnly bool, logger *slog.Logger) (*collaborators, error) {
	if printOnly {
		return benchCollaborators(logger), nil
	}

	wdt, err := hw.OpenWatchdog(cfg.Supervisor.WatchdogDevice)
	if err != nil {
		return nil, err
	}
	bus, err := sensor.OpenI2C(cfg.Sensor.Device)
	if err != nil {
		return nil, err
	}
	nm := hw.NewNMLink(cfg.Wifi.Interface)

	instanceID, err := mqtt.LoadOrCreateInstanceID(cfg.Supervisor.StateDir)
	if err != nil {
		return nil, err
	}
	client := mqtt.New(mqtt.Config{
		Host:      cfg.Broker.Host,
		Port:      cfg.Broker.Port,
		Topic:     cfg.Broker.Topic,
		ClientID:  mqtt.ClientID(cfg.Broker.ClientID, instanceID),
		Username:  cfg.Broker.Username,
		Password:  cfg.Broker.Password,
		KeepAlive: uint16(cfg.Broker.KeepAliveSec),
	}, logger)

	return &collaborators{
		wd:      wdt,
		cause:   wdt,
		cell:    hw.NewFileCell(cfg.Supervisor.StateDir),
		link:    nm,
		session: client,
		pub:     client,
		bus:     bus,
		ipv4:    nm.IPv4,
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := client.Stop(ctx); err != nil {
				logger.Warn("mqtt disconnect failed", "err", err)
			}
			bus.Close()
		},
	}, nil
}

func benchCollaborators(logger *slog.Logger) *collaborators {
	return &collaborators{
		wd:      hw.NopWatchdog{},
		cause:   hw.NopWatchdog{},
		cell:    hw.NewFileCell(filepath.Join(os.TempDir(), "envnode")),
		link:    benchLink{},
		session: benchSession{},
		pub:     &stdoutPublisher{logger: logger},
		bus:     benchBus{},
		close:   func() {},
	}
}

// benchLink pretends the wireless link is always associated.
type benchLink struct{}

func (benchLink) Connect(context.Context, string, string, string) error { return nil }
func (benchLink) LinkStatus() bool                                      { return true }
func (benchLink) SetRadioEnabled(bool) error                            { return nil }

// benchSession pretends the broker session is always up.
type benchSession struct{}

func (benchSession) Establish(context.Context) error { return nil }
func (benchSession) Up() bool                        { return true }

// benchBus replays a fixed AHT20 measurement frame.
type benchBus struct{}

func (benchBus) Write(byte, []byte) error { return nil }

func (benchBus) Read(_ byte, buf []byte) error {
	frame := [6]byte{0x1C, 0x6A, 0x7E, 0x83, 0x4E, 0x10}
	copy(buf, frame[:])
	return nil
}

// stdoutPublisher logs payloads instead of publishing them.
type stdoutPublisher struct {
	logger *slog.Logger
}

func (p *stdoutPublisher) Publish(_ context.Context, payload []byte) {
	p.logger.Info("publish", "payload", string(payload))
}
