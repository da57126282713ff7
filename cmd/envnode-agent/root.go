package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "envnode-agent",
	Short: "Environmental sensor node agent",
	Long:  "envnode-agent samples an AHT20 sensor and publishes readings over MQTT, supervised by a boot-loop guard, hardware watchdog, and connectivity-recovery escalation.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
