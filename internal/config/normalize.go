package config

// ApplyDefaults fills omitted fields with the device defaults.
// It is allowed to mutate configuration and MUST be called before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Broker.Port == 0 {
		cfg.Broker.Port = 1883
	}
	if cfg.Broker.ClientID == "" {
		cfg.Broker.ClientID = "envnode"
	}
	if cfg.Broker.KeepAliveSec == 0 {
		cfg.Broker.KeepAliveSec = 30
	}

	if cfg.Wifi.Interface == "" {
		cfg.Wifi.Interface = "wlan0"
	}
	if cfg.Wifi.AuthMode == "" {
		cfg.Wifi.AuthMode = "wpa2-psk"
	}
	if cfg.Wifi.ConnectTimeoutMS == 0 {
		cfg.Wifi.ConnectTimeoutMS = 30000
	}

	if cfg.Sensor.Device == "" {
		cfg.Sensor.Device = "/dev/i2c-1"
	}
	if cfg.Sensor.Address == 0 {
		cfg.Sensor.Address = 0x38
	}
	if cfg.Sensor.FailurePolicy == "" {
		cfg.Sensor.FailurePolicy = "sentinel"
	}

	if cfg.Supervisor.WatchdogDevice == "" {
		cfg.Supervisor.WatchdogDevice = "/dev/watchdog0"
	}
	if cfg.Supervisor.WatchdogTimeoutMS == 0 {
		cfg.Supervisor.WatchdogTimeoutMS = 8000
	}
	if cfg.Supervisor.SafeRebootThreshold == 0 {
		cfg.Supervisor.SafeRebootThreshold = 5
	}
	if cfg.Supervisor.NoRecoveryDeadlineMS == 0 {
		cfg.Supervisor.NoRecoveryDeadlineMS = 300000
	}
	if cfg.Supervisor.TickMS == 0 {
		cfg.Supervisor.TickMS = 1000
	}
	if cfg.Supervisor.StateDir == "" {
		cfg.Supervisor.StateDir = "/var/lib/envnode"
	}
}
