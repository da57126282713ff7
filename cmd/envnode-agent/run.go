package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"envnode-agent/internal/agent"
	"envnode-agent/internal/bootguard"
	"envnode-agent/internal/config"
	"envnode-agent/internal/conn"
	"envnode-agent/internal/logging"
	"envnode-agent/internal/sensor"
)

var (
	runConfigPath string
	runSchemaPath string
	runPrintOnly  bool
	runVerbose    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sensor node agent",
	Long:  "run starts the sample-and-publish loop under the resilience supervisor: boot-loop guard, watchdog feeding, connectivity recovery, and deadline escalation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if runVerbose {
			level = slog.LevelDebug
		}
		logger := logging.NewWithLevel(level)

		policy, err := sensor.ParseFailurePolicy(cfg.Sensor.FailurePolicy)
		if err != nil {
			return err
		}

		collab, err := newCollaborators(cfg, runPrintOnly, logger)
		if err != nil {
			return err
		}
		defer collab.close()

		ctx := logging.NewContext(context.Background(), logger)
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		guard := bootguard.New(collab.cell, collab.cause, collab.wd,
			uint32(cfg.Supervisor.SafeRebootThreshold), cfg.WatchdogTimeout())
		state, err := guard.Evaluate(ctx)
		if err != nil {
			return err
		}

		if state.SafeMode {
			// Safe Mode prioritizes an inert, locally inspectable device
			// over connectivity: radio down, no recovery, watchdog still fed.
			if err := collab.link.SetRadioEnabled(false); err != nil {
				logger.Warn("radio power-down failed", "err", err)
			}
			logger.Warn("safe mode: radio disabled after repeated watchdog reboots, waiting for operator")
		}

		sup := conn.NewSupervisor(collab.link, collab.session, conn.Association{
			SSID:     cfg.Wifi.SSID,
			Password: cfg.Wifi.Password,
			AuthMode: cfg.Wifi.AuthMode,
			Timeout:  cfg.WifiConnectTimeout(),
			IPv4:     collab.ipv4,
		}, state.SafeMode, nil)
		esc := conn.NewDeadlineEscalator(cfg.NoRecoveryDeadline(), state.SafeMode, collab.wd, nil)
		reader := sensor.NewAHT20(collab.bus, byte(cfg.Sensor.Address), policy)

		agent.New(collab.wd, sup, esc, reader, collab.pub, cfg.Tick()).Run(ctx)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "config/agent.yaml", "Path to agent configuration YAML")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "schemas/agent.cue", "Path to CUE schema file")
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Bench mode: inert hardware collaborators, readings printed to STDOUT")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Enable debug logging")
}
