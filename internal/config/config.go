package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/quietshelf/fluidctl/internal/engine"
	"github.com/quietshelf/fluidctl/internal/shell"
)

type Config struct {
	Engine EngineConfig `toml:"engine"`
	API    APIConfig    `toml:"api"`

	// StartupCommands are raw shell commands posted fire-and-forget right
	// after the client comes up, before any typed command runs.
	StartupCommands []string `toml:"startup_commands"`

	// FontDir is handed to the embedding application's file browser; the
	// client itself never lists directories.
	FontDir string `toml:"font_dir"`
}

type EngineConfig struct {
	Addr          string   `toml:"addr"`
	LaunchCommand []string `toml:"launch_command"`
	MaxAttempts   int      `toml:"max_attempts"`
	RetryDelayMS  int      `toml:"retry_delay_ms"`
	DialTimeoutMS int      `toml:"dial_timeout_ms"`
	ReadTimeoutMS int      `toml:"read_timeout_ms"`
	Sentinel      string   `toml:"sentinel"`
}

type APIConfig struct {
	Addr string `toml:"addr"`
}

func Default() Config {
	return Config{
		Engine: EngineConfig{Addr: shell.DefaultAddr},
		API:    APIConfig{Addr: "localhost:9810"},
	}
}

// Load reads a toml config file. A missing path is not an error: the
// defaults stand alone so the CLI works with no file at all.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if cfg.Engine.Addr == "" {
		cfg.Engine.Addr = shell.DefaultAddr
	}
	if cfg.API.Addr == "" {
		cfg.API.Addr = "localhost:9810"
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Engine.Addr) == "" {
		return fmt.Errorf("engine config missing addr")
	}
	if cfg.Engine.MaxAttempts < 0 {
		return fmt.Errorf("engine max_attempts must not be negative")
	}
	if cfg.Engine.RetryDelayMS < 0 || cfg.Engine.DialTimeoutMS < 0 || cfg.Engine.ReadTimeoutMS < 0 {
		return fmt.Errorf("engine timeouts must not be negative")
	}
	if strings.TrimSpace(cfg.API.Addr) == "" {
		return fmt.Errorf("api config missing addr")
	}
	return nil
}

// Supervisor converts the file config into the engine supervisor config;
// zero values fall through to the package defaults.
func (c Config) Supervisor() engine.Config {
	return engine.Config{
		LaunchCommand: c.Engine.LaunchCommand,
		MaxAttempts:   c.Engine.MaxAttempts,
		RetryDelay:    time.Duration(c.Engine.RetryDelayMS) * time.Millisecond,
		Shell: shell.Config{
			Addr:        c.Engine.Addr,
			DialTimeout: time.Duration(c.Engine.DialTimeoutMS) * time.Millisecond,
			ReadTimeout: time.Duration(c.Engine.ReadTimeoutMS) * time.Millisecond,
			Sentinel:    c.Engine.Sentinel,
		},
	}
}
