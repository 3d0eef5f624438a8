package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietshelf/fluidctl/internal/config"
)

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fluidctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a commented default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "fluidctl.toml"
		if len(args) == 1 {
			path = args[0]
		}
		overwrite, _ := cmd.Flags().GetBool("force")
		if err := config.WriteTemplate(path, overwrite); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	initConfigCmd.Flags().Bool("force", false, "Overwrite an existing file")
	rootCmd.AddCommand(versionCmd, initConfigCmd)
}
