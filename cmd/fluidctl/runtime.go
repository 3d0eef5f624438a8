package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quietshelf/fluidctl/internal/config"
	"github.com/quietshelf/fluidctl/internal/engine"
	"github.com/quietshelf/fluidctl/internal/logging"
	"github.com/quietshelf/fluidctl/internal/synth"
)

// loadConfig resolves the persistent flags against the config file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Engine.Addr = addr
	}
	return cfg, nil
}

// withClient brings the whole stack up for one CLI action: config, logger,
// supervised connect, typed client with startup commands, and teardown.
// The context ends on SIGINT/SIGTERM.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, cfg config.Config, client *synth.Client) error) error {
	logging.ConfigureRuntime()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sup := engine.New(cfg.Supervisor())
	conn, err := sup.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		conn.Close()
		if stopEngine, _ := cmd.Flags().GetBool("stop-engine"); stopEngine {
			sup.Stop()
		}
	}()

	client := synth.New(conn, synth.NewState())
	if err := client.RunStartup(cfg.StartupCommands); err != nil {
		log.Warn().Err(err).Msg("startup commands failed")
	}
	return fn(ctx, cfg, client)
}
