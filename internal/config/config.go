// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Broker holds the MQTT broker connection settings.
type Broker struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Topic        string `yaml:"topic"`
	ClientID     string `yaml:"client_id"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	KeepAliveSec int    `yaml:"keep_alive_sec"`
}

// Wifi holds wireless association settings for the station interface.
type Wifi struct {
	Interface        string `yaml:"interface"`
	SSID             string `yaml:"ssid"`
	Password         string `yaml:"password"`
	AuthMode         string `yaml:"auth_mode"`
	ConnectTimeoutMS int    `yaml:"connect_timeout_ms"`
}

// Sensor holds the I2C sensor settings.
type Sensor struct {
	Device        string `yaml:"device"`
	Address       int    `yaml:"address"`
	FailurePolicy string `yaml:"failure_policy"`
}

// Supervisor holds the resilience thresholds. These are the device's
// baked-in provisioning values, read once at startup.
type Supervisor struct {
	WatchdogDevice       string `yaml:"watchdog_device"`
	WatchdogTimeoutMS    int    `yaml:"watchdog_timeout_ms"`
	SafeRebootThreshold  int    `yaml:"safe_reboot_threshold"`
	NoRecoveryDeadlineMS int    `yaml:"no_recovery_deadline_ms"`
	TickMS               int    `yaml:"tick_ms"`
	StateDir             string `yaml:"state_dir"`
}

// Config is the root configuration for the node agent.
type Config struct {
	Broker     Broker     `yaml:"broker"`
	Wifi       Wifi       `yaml:"wifi"`
	Sensor     Sensor     `yaml:"sensor"`
	Supervisor Supervisor `yaml:"supervisor"`
}

// Load loads YAML config, validates it against a CUE schema, and
// applies defaults for omitted fields.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration correctness after defaults are applied.
// It performs declarative validation only and never mutates cfg.
func Validate(cfg *Config) error {
	if cfg.Broker.Host == "" {
		return fmt.Errorf("broker.host is required")
	}
	if cfg.Broker.Port <= 0 || cfg.Broker.Port > 65535 {
		return fmt.Errorf("broker.port %d out of range", cfg.Broker.Port)
	}
	if cfg.Broker.Topic == "" {
		return fmt.Errorf("broker.topic is required")
	}
	if cfg.Wifi.SSID == "" {
		return fmt.Errorf("wifi.ssid is required")
	}
	switch cfg.Sensor.FailurePolicy {
	case "sentinel", "non-positive":
	default:
		return fmt.Errorf("sensor.failure_policy %q must be \"sentinel\" or \"non-positive\"", cfg.Sensor.FailurePolicy)
	}
	// A tick at or above the watchdog timeout would starve the deadman
	// timer even on a perfectly healthy loop.
	if cfg.Supervisor.TickMS >= cfg.Supervisor.WatchdogTimeoutMS {
		return fmt.Errorf("supervisor.tick_ms %d must be well under watchdog_timeout_ms %d",
			cfg.Supervisor.TickMS, cfg.Supervisor.WatchdogTimeoutMS)
	}
	return nil
}

// WifiConnectTimeout returns the association timeout as a duration.
func (c *Config) WifiConnectTimeout() time.Duration {
	return time.Duration(c.Wifi.ConnectTimeoutMS) * time.Millisecond
}

// WatchdogTimeout returns the hardware watchdog timeout as a duration.
func (c *Config) WatchdogTimeout() time.Duration {
	return time.Duration(c.Supervisor.WatchdogTimeoutMS) * time.Millisecond
}

// NoRecoveryDeadline returns the last-resort reboot deadline as a duration.
func (c *Config) NoRecoveryDeadline() time.Duration {
	return time.Duration(c.Supervisor.NoRecoveryDeadlineMS) * time.Millisecond
}

// Tick returns the sample-and-publish tick period as a duration.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Supervisor.TickMS) * time.Millisecond
}
