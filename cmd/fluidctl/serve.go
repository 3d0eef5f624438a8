package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/quietshelf/fluidctl/internal/config"
	"github.com/quietshelf/fluidctl/internal/statusapi"
	"github.com/quietshelf/fluidctl/internal/synth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local status/command API over the supervised engine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, cfg config.Config, client *synth.Client) error {
			addr := cfg.API.Addr
			if flagAddr, _ := cmd.Flags().GetString("listen"); flagAddr != "" {
				addr = flagAddr
			}
			server := statusapi.New(client, cfg.Engine.Addr)
			return server.Serve(ctx, addr)
		})
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "API listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
