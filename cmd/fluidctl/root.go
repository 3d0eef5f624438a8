package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fluidctl",
	Short: "fluidctl drives a FluidSynth engine over its TCP command shell",
	Long: `fluidctl supervises a FluidSynth process and talks to its command shell,
tracking which soundfonts are loaded and which instrument sits on each of
the 16 output channels.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fluidctl: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to fluidctl.toml")
	rootCmd.PersistentFlags().String("addr", "", "Engine shell address (overrides config)")
	rootCmd.PersistentFlags().Bool("stop-engine", false, "Stop a supervisor-launched engine on exit")
}
