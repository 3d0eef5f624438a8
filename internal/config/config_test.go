package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quietshelf/fluidctl/internal/shell"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.Addr != shell.DefaultAddr {
		t.Fatalf("engine addr default: %q", cfg.Engine.Addr)
	}
	if cfg.API.Addr == "" {
		t.Fatalf("api addr default missing")
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluidctl.toml")
	body := `
startup_commands = ["gain 5", "reverb 0"]
font_dir = "/home/user/sf2"

[engine]
addr = "127.0.0.1:9801"
launch_command = ["fluidsynth", "-i", "-s", "-q", "-a", "jack"]
max_attempts = 5
retry_delay_ms = 200
read_timeout_ms = 750

[api]
addr = "127.0.0.1:9911"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.Addr != "127.0.0.1:9801" {
		t.Fatalf("engine addr: %q", cfg.Engine.Addr)
	}
	if len(cfg.StartupCommands) != 2 || cfg.StartupCommands[0] != "gain 5" {
		t.Fatalf("startup commands: %v", cfg.StartupCommands)
	}
	if cfg.FontDir != "/home/user/sf2" {
		t.Fatalf("font dir: %q", cfg.FontDir)
	}

	sup := cfg.Supervisor()
	if sup.MaxAttempts != 5 {
		t.Fatalf("supervisor attempts: %d", sup.MaxAttempts)
	}
	if sup.RetryDelay != 200*time.Millisecond {
		t.Fatalf("supervisor delay: %v", sup.RetryDelay)
	}
	if sup.Shell.ReadTimeout != 750*time.Millisecond {
		t.Fatalf("shell read timeout: %v", sup.Shell.ReadTimeout)
	}
	if sup.Shell.Addr != "127.0.0.1:9801" {
		t.Fatalf("shell addr: %v", sup.Shell.Addr)
	}
}

func TestLoadRejectsBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[engine\naddr="), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty engine addr", func(c *Config) { c.Engine.Addr = " " }, true},
		{"negative attempts", func(c *Config) { c.Engine.MaxAttempts = -1 }, true},
		{"negative delay", func(c *Config) { c.Engine.RetryDelayMS = -5 }, true},
		{"empty api addr", func(c *Config) { c.API.Addr = "" }, true},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		err := Validate(cfg)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestWriteTemplateRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluidctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if cfg.Engine.Sentinel != shell.DefaultSentinel {
		t.Fatalf("template sentinel: %q", cfg.Engine.Sentinel)
	}
}
