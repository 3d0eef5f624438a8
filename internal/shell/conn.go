package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quietshelf/fluidctl/internal/observability"
)

const (
	DefaultAddr     = "localhost:9800"
	DefaultSentinel = ".fluidctl-eot"

	readChunkSize = 4096
)

type Config struct {
	Addr        string
	DialTimeout time.Duration
	ReadTimeout time.Duration
	Sentinel    string
	// MaxReads bounds the blocking read loop. It is a termination guarantee
	// for a peer that streams forever without ever echoing the sentinel,
	// not a limit expected to trigger in normal operation.
	MaxReads int
}

func DefaultConfig() Config {
	return Config{}.WithDefaults()
}

func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = DefaultAddr
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 2 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 500 * time.Millisecond
	}
	if strings.TrimSpace(c.Sentinel) == "" {
		c.Sentinel = DefaultSentinel
	}
	if c.MaxReads <= 0 {
		c.MaxReads = 100000
	}
	return c
}

// Conn is the one socket to the engine shell. The engine keeps a thread per
// accepted connection, so a client must open exactly one and reuse it for
// every transaction of its lifetime.
type Conn struct {
	cfg  Config
	conn net.Conn
	log  zerolog.Logger
}

func New(cfg Config) *Conn {
	return &Conn{
		cfg: cfg.WithDefaults(),
		log: log.With().Str("component", "shell").Logger(),
	}
}

func (c *Conn) Addr() string { return c.cfg.Addr }

func (c *Conn) Connected() bool { return c.conn != nil }

// Dial opens the socket. A Conn that already dialed refuses a second
// socket for its lifetime.
func (c *Conn) Dial(ctx context.Context) error {
	if c.conn != nil {
		return ErrAlreadyConnected
	}
	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("shell: dial %s: %w", c.cfg.Addr, err)
	}
	c.conn = conn
	c.log.Debug().Str("addr", c.cfg.Addr).Msg("engine shell connected")
	return nil
}

// Post writes one newline-terminated command and returns without reading.
// This is the preferred path whenever the response is not needed.
func (c *Conn) Post(cmd string) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		observability.RecordTransaction("post", "error", 0)
		return fmt.Errorf("shell: write %q: %w", cmd, err)
	}
	observability.RecordTransaction("post", "ok", 0)
	return nil
}

// Transact writes cmd and returns the framed response. The blank echo and
// the sentinel echo are written in the same flush as the command so the
// marker always trails the command's own output.
//
// A read deadline expiring before the sentinel appears is not fatal: the
// accumulated bytes are returned as a best-effort partial result along with
// ErrTransactionTimeout.
func (c *Conn) Transact(cmd string) (string, error) {
	if c.conn == nil {
		return "", ErrNotConnected
	}
	start := time.Now()

	payload := cmd + "\necho\necho " + c.cfg.Sentinel + "\n"
	if _, err := c.conn.Write([]byte(payload)); err != nil {
		observability.RecordTransaction("blocking", "error", time.Since(start))
		return "", fmt.Errorf("shell: write %q: %w", cmd, err)
	}

	// The sentinel can straddle two physical reads, so the scan always runs
	// against the cumulative buffer.
	marker := []byte("\n" + c.cfg.Sentinel + "\n")
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)

	for i := 0; i < c.cfg.MaxReads; i++ {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			observability.RecordTransaction("blocking", "error", time.Since(start))
			return buf.String(), fmt.Errorf("shell: set read deadline: %w", err)
		}
		n, err := c.conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if idx := bytes.Index(buf.Bytes(), marker); idx >= 0 {
				observability.RecordTransaction("blocking", "ok", time.Since(start))
				return string(buf.Bytes()[:idx]), nil
			}
		}
		if err == nil {
			continue
		}
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			c.log.Warn().Str("cmd", firstWord(cmd)).Int("partial_bytes", buf.Len()).
				Msg("transaction timed out before sentinel, returning partial output")
			observability.RecordTransaction("blocking", "timeout", time.Since(start))
			return buf.String(), ErrTransactionTimeout
		}
		observability.RecordTransaction("blocking", "error", time.Since(start))
		return buf.String(), fmt.Errorf("shell: read response for %q: %w", cmd, err)
	}

	observability.RecordTransaction("blocking", "overflow", time.Since(start))
	return buf.String(), ErrSentinelNotFound
}

// Close shuts down both directions before closing the socket. Errors on an
// already-broken socket are logged and swallowed.
func (c *Conn) Close() {
	if c.conn == nil {
		return
	}
	if tcp, ok := c.conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err != nil {
			c.log.Debug().Err(err).Msg("close write")
		}
		if err := tcp.CloseRead(); err != nil {
			c.log.Debug().Err(err).Msg("close read")
		}
	}
	if err := c.conn.Close(); err != nil {
		c.log.Debug().Err(err).Msg("close socket")
	}
	c.conn = nil
}

func firstWord(cmd string) string {
	if fields := strings.Fields(cmd); len(fields) > 0 {
		return fields[0]
	}
	return cmd
}
