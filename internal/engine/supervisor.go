package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quietshelf/fluidctl/internal/observability"
	"github.com/quietshelf/fluidctl/internal/shell"
)

var ErrEngineUnavailable = errors.New("engine: shell unreachable after launch and retries")

type Config struct {
	// LaunchCommand is the argv used to start the engine when the initial
	// probe finds nothing listening. Empty disables launching; the
	// supervisor then only retries the dial.
	LaunchCommand []string
	MaxAttempts   int
	RetryDelay    time.Duration
	StopGrace     time.Duration
	Shell         shell.Config
}

func DefaultConfig() Config {
	return Config{}.WithDefaults()
}

func (c Config) WithDefaults() Config {
	if len(c.LaunchCommand) == 0 {
		// Headless shell server: no prompt, no MIDI autoconnect chatter.
		c.LaunchCommand = []string{"fluidsynth", "-i", "-s", "-q"}
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	if c.StopGrace <= 0 {
		c.StopGrace = 2 * time.Second
	}
	c.Shell = c.Shell.WithDefaults()
	return c
}

// Supervisor brings the engine shell up and owns the subprocess handle when
// it had to start one.
type Supervisor struct {
	cfg Config
	cmd *exec.Cmd
	log zerolog.Logger
}

func New(cfg Config) *Supervisor {
	return &Supervisor{
		cfg: cfg.WithDefaults(),
		log: log.With().Str("component", "engine").Logger(),
	}
}

// Connect probes the shell address and, if nothing answers, launches the
// engine and retries with a fixed delay between attempts. The Conn returned
// on success is the one socket the client keeps for its whole lifetime.
func (s *Supervisor) Connect(ctx context.Context) (*shell.Conn, error) {
	conn := shell.New(s.cfg.Shell)
	err := conn.Dial(ctx)
	observability.RecordConnectAttempt(err == nil)
	if err == nil {
		s.log.Debug().Str("addr", conn.Addr()).Msg("engine already running")
		return conn, nil
	}
	s.log.Info().Str("addr", conn.Addr()).Err(err).Msg("engine not reachable, launching")

	s.launch()

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if err := sleepCtx(ctx, s.cfg.RetryDelay); err != nil {
			return nil, err
		}
		err := conn.Dial(ctx)
		observability.RecordConnectAttempt(err == nil)
		if err == nil {
			s.log.Info().Str("addr", conn.Addr()).Int("attempt", attempt).
				Msg("engine shell connected")
			return conn, nil
		}
		s.log.Warn().Int("attempt", attempt).Int("max", s.cfg.MaxAttempts).Err(err).
			Msg("engine dial failed")
	}
	return nil, fmt.Errorf("%w: %s after %d attempts",
		ErrEngineUnavailable, s.cfg.Shell.Addr, s.cfg.MaxAttempts)
}

// Spawned reports whether this supervisor started the engine itself.
func (s *Supervisor) Spawned() bool { return s.cmd != nil }

func (s *Supervisor) launch() {
	if len(s.cfg.LaunchCommand) == 0 {
		return
	}
	cmd := exec.Command(s.cfg.LaunchCommand[0], s.cfg.LaunchCommand[1:]...)
	if err := cmd.Start(); err != nil {
		// The engine may still come up by other means; keep retrying the dial.
		s.log.Warn().Strs("argv", s.cfg.LaunchCommand).Err(err).Msg("engine launch failed")
		return
	}
	observability.RecordEngineSpawn()
	s.cmd = cmd
	s.log.Info().Strs("argv", s.cfg.LaunchCommand).Int("pid", cmd.Process.Pid).
		Msg("engine launched")
}

// Stop terminates a supervisor-launched engine: interrupt first, kill after
// the grace period. Failures are logged, never escalated; a process that was
// already running externally is left alone.
func (s *Supervisor) Stop() {
	if s.cmd == nil || s.cmd.Process == nil {
		return
	}
	pid := s.cmd.Process.Pid
	if err := s.cmd.Process.Signal(interruptSignal); err != nil {
		s.log.Debug().Int("pid", pid).Err(err).Msg("engine interrupt failed")
	}

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			s.log.Debug().Int("pid", pid).Err(err).Msg("engine exited with error")
		}
	case <-time.After(s.cfg.StopGrace):
		if err := s.cmd.Process.Kill(); err != nil {
			s.log.Warn().Int("pid", pid).Err(err).Msg("engine kill failed")
		}
		<-done
	}
	s.log.Info().Int("pid", pid).Msg("engine stopped")
	s.cmd = nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
