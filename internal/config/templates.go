package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const template = `# fluidctl configuration

startup_commands = []
font_dir = ""

[engine]
addr = "localhost:9800"
launch_command = ["fluidsynth", "-i", "-s", "-q"]
max_attempts = 10
retry_delay_ms = 500
dial_timeout_ms = 2000
read_timeout_ms = 500
sentinel = ".fluidctl-eot"

[api]
addr = "localhost:9810"
`
