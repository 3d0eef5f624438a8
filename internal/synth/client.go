package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Transactor is the shell surface the client needs: fire-and-forget posts
// and blocking sentinel-framed transactions. *shell.Conn satisfies it.
type Transactor interface {
	Post(cmd string) error
	Transact(cmd string) (string, error)
}

// Client issues typed commands and keeps State consistent with what it told
// the engine. It assumes strict one-at-a-time use; callers that multiplex
// (like the status API) serialize at their own layer.
type Client struct {
	tx    Transactor
	state *State
	log   zerolog.Logger
}

func New(tx Transactor, state *State) *Client {
	if state == nil {
		state = NewState()
	}
	return &Client{
		tx:    tx,
		state: state,
		log:   log.With().Str("component", "synth").Logger(),
	}
}

func (c *Client) State() *State { return c.state }

// Exec forwards a raw shell command, blocking for the framed response.
func (c *Client) Exec(cmd string) (string, error) {
	return c.tx.Transact(cmd)
}

// RunStartup posts the configured raw startup commands in order. Failures
// abort the rest: a dead socket at construction time is not recoverable.
func (c *Client) RunStartup(cmds []string) error {
	for _, cmd := range cmds {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		if err := c.tx.Post(cmd); err != nil {
			return fmt.Errorf("startup command %q: %w", cmd, err)
		}
	}
	return nil
}

// GetValue reads an engine variable. The engine prefixes output with the
// variable name and other words, so the value is the last whitespace token.
// Transport or parse trouble degrades to "".
func (c *Client) GetValue(key string) string {
	out, err := c.tx.Transact("get " + key)
	if err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("get failed")
		return ""
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func (c *Client) GetBool(key string) bool {
	switch strings.ToLower(c.GetValue(key)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

// GetInt returns -1 when the variable is missing or unparsable.
func (c *Client) GetInt(key string) int {
	v, err := strconv.Atoi(c.GetValue(key))
	if err != nil {
		return -1
	}
	return v
}

// GetFloat returns -1 when the variable is missing or unparsable.
func (c *Client) GetFloat(key string) float64 {
	v, err := strconv.ParseFloat(c.GetValue(key), 64)
	if err != nil {
		return -1
	}
	return v
}

func (c *Client) SetValue(key, value string) error {
	return c.tx.Post(fmt.Sprintf("set %s %s", key, value))
}

// SetGain sets master gain on the 0..5 scale of the gain command. The
// synth.gain variable runs 0..10, so the variable is written at twice the
// commanded value; external tools reading the variable then agree with the
// command's scale. Gain reverses the doubling.
func (c *Client) SetGain(v float64) error {
	if err := c.tx.Post(fmt.Sprintf("gain %s", formatNum(v))); err != nil {
		return err
	}
	return c.SetValue("synth.gain", formatNum(2*v))
}

func (c *Client) Gain() float64 {
	v := c.GetFloat("synth.gain")
	if v < 0 {
		return v
	}
	return v / 2
}

func (c *Client) SetReverbOn(on bool) error {
	return c.tx.Post("reverb " + onOff(on))
}

func (c *Client) SetReverbRoomSize(v float64) error {
	return c.tx.Post("rev_setroomsize " + formatNum(v))
}

func (c *Client) SetReverbDamp(v float64) error {
	return c.tx.Post("rev_setdamp " + formatNum(v))
}

func (c *Client) SetReverbWidth(v float64) error {
	return c.tx.Post("rev_setwidth " + formatNum(v))
}

func (c *Client) SetReverbLevel(v float64) error {
	return c.tx.Post("rev_setlevel " + formatNum(v))
}

func (c *Client) SetChorusOn(on bool) error {
	return c.tx.Post("chorus " + onOff(on))
}

func (c *Client) SetChorusVoices(n int) error {
	return c.tx.Post("cho_set_nr " + strconv.Itoa(n))
}

func (c *Client) SetChorusLevel(v float64) error {
	return c.tx.Post("cho_set_level " + formatNum(v))
}

func (c *Client) SetChorusSpeed(v float64) error {
	return c.tx.Post("cho_set_speed " + formatNum(v))
}

func (c *Client) SetChorusDepth(v float64) error {
	return c.tx.Post("cho_set_depth " + formatNum(v))
}

// Reset tells the engine to reset all channel programs and controllers.
// Local channel assignments are left as-is; they are overwritten on the
// next selection, never cleared automatically.
func (c *Client) Reset() error {
	return c.tx.Post("reset")
}

func onOff(on bool) string {
	if on {
		return "1"
	}
	return "0"
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
