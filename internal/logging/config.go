package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "FLUIDCTL_LOG_LEVEL"
	EnvLogNoColor = "FLUIDCTL_LOG_NOCOLOR"
	EnvLogQuiet   = "FLUIDCTL_LOG_QUIET"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure installs the global logger once. Later calls are no-ops so
// tests and the CLI can both call it without fighting over the sink.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		level, noColor, quiet := defaults(profile)
		applyEnvOverrides(&level, &noColor, &quiet)

		var out io.Writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    noColor,
		}
		if quiet {
			out = io.Discard
		}
		log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	})
}

func defaults(profile Profile) (zerolog.Level, bool, bool) {
	switch profile {
	case ProfileTest:
		return zerolog.DebugLevel, true, false
	default:
		return zerolog.InfoLevel, false, false
	}
}

func applyEnvOverrides(level *zerolog.Level, noColor, quiet *bool) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		*level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		*noColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogQuiet)); ok {
		*quiet = v
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
