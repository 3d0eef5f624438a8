package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quietshelf/fluidctl/internal/config"
	"github.com/quietshelf/fluidctl/internal/synth"
)

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List the soundfonts resident in the engine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			ids, err := client.Fonts()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("no soundfonts loaded")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		})
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <sf2-path>",
	Short: "Load a soundfont and select its first instrument",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, _ := cmd.Flags().GetInt("channel")
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			client.State().SetSelectedChannel(channel)
			id, voices, err := client.InitFont(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("font %d loaded on channel %d\n", id, client.State().ActiveChannel)
			for _, voice := range voices {
				fmt.Println(voice)
			}
			return nil
		})
	},
}

var instCmd = &cobra.Command{
	Use:   "inst <font-id>",
	Short: "List the instruments of a loaded soundfont",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("font id must be an integer: %q", args[0])
		}
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			voices, err := client.Instruments(id)
			if err != nil {
				return err
			}
			for _, voice := range voices {
				fmt.Println(voice)
			}
			return nil
		})
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <descriptor>",
	Short: "Select an instrument (\"BBB-PPP Name\") on a channel",
	Long: `Select applies an instrument descriptor to a channel. The engine needs a
loaded font first, so select is usually preceded by load in the same run of
an embedding application; from the CLI, pass --font to name the loaded font
id the descriptor refers to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, _ := cmd.Flags().GetInt("channel")
		fontID, _ := cmd.Flags().GetInt("font")
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			if fontID >= 0 {
				client.State().UseFont(fontID)
			}
			client.State().SetSelectedChannel(channel)
			if err := client.SelectInstrument(args[0]); err != nil {
				return err
			}
			fmt.Printf("channel %d: %s\n", client.State().ActiveChannel, args[0])
			return nil
		})
	},
}

func init() {
	loadCmd.Flags().Int("channel", 1, "Channel (1-16) the default instrument lands on")
	selectCmd.Flags().Int("channel", 1, "Channel (1-16) to select on")
	selectCmd.Flags().Int("font", -1, "Loaded font id the descriptor belongs to")
	rootCmd.AddCommand(fontsCmd, loadCmd, instCmd, selectCmd)
}
