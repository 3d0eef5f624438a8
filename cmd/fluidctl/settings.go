package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietshelf/fluidctl/internal/config"
	"github.com/quietshelf/fluidctl/internal/synth"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read an engine variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			fmt.Println(client.GetValue(args[0]))
			return nil
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write an engine variable (fire-and-forget)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			return client.SetValue(args[0], args[1])
		})
	},
}

var gainCmd = &cobra.Command{
	Use:   "gain [value]",
	Short: "Read or set master gain (0-5)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			if len(args) == 0 {
				fmt.Println(client.Gain())
				return nil
			}
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("gain must be a number: %q", args[0])
			}
			if v < 0 || v > 5 {
				return fmt.Errorf("gain out of range 0-5: %v", v)
			}
			return client.SetGain(v)
		})
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <command...>",
	Short: "Run a raw shell command and print the framed response",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			out, err := client.Exec(strings.Join(args, " "))
			if out != "" {
				fmt.Println(strings.TrimRight(out, "\n"))
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(getCmd, setCmd, gainCmd, execCmd)
}
