package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/quietshelf/fluidctl/internal/config"
	"github.com/quietshelf/fluidctl/internal/synth"
)

var reverbCmd = &cobra.Command{
	Use:   "reverb",
	Short: "Adjust the reverb unit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			if cmd.Flags().Changed("active") {
				on, _ := cmd.Flags().GetBool("active")
				if err := client.SetReverbOn(on); err != nil {
					return err
				}
			}
			for flag, set := range map[string]func(float64) error{
				"room":  client.SetReverbRoomSize,
				"damp":  client.SetReverbDamp,
				"width": client.SetReverbWidth,
				"level": client.SetReverbLevel,
			} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				v, _ := cmd.Flags().GetFloat64(flag)
				if err := set(v); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var chorusCmd = &cobra.Command{
	Use:   "chorus",
	Short: "Adjust the chorus unit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			if cmd.Flags().Changed("active") {
				on, _ := cmd.Flags().GetBool("active")
				if err := client.SetChorusOn(on); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("voices") {
				n, _ := cmd.Flags().GetInt("voices")
				if err := client.SetChorusVoices(n); err != nil {
					return err
				}
			}
			for flag, set := range map[string]func(float64) error{
				"level": client.SetChorusLevel,
				"speed": client.SetChorusSpeed,
				"depth": client.SetChorusDepth,
			} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				v, _ := cmd.Flags().GetFloat64(flag)
				if err := set(v); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all channel programs and controllers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, _ config.Config, client *synth.Client) error {
			return client.Reset()
		})
	},
}

func init() {
	reverbCmd.Flags().Bool("active", false, "Switch the reverb unit on or off")
	reverbCmd.Flags().Float64("room", 0, "Room size (0-1)")
	reverbCmd.Flags().Float64("damp", 0, "Damping (0-1)")
	reverbCmd.Flags().Float64("width", 0, "Stereo width (0-1)")
	reverbCmd.Flags().Float64("level", 0, "Output level (0-1)")

	chorusCmd.Flags().Bool("active", false, "Switch the chorus unit on or off")
	chorusCmd.Flags().Int("voices", 0, "Voice count")
	chorusCmd.Flags().Float64("level", 0, "Output level")
	chorusCmd.Flags().Float64("speed", 0, "Modulation speed")
	chorusCmd.Flags().Float64("depth", 0, "Modulation depth")

	rootCmd.AddCommand(reverbCmd, chorusCmd, resetCmd)
}
