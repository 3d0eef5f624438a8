package synth

import (
	"fmt"
	"strconv"
	"strings"
)

// LoadFont loads a soundfont file and records the id the engine assigned.
// The engine reports the id inside a sentence ("loaded SoundFont has ID 3")
// possibly followed by warning lines, so the id is taken as the last
// all-digit token of the whole response. No digit token means the load
// failed; state is left untouched and the id -1 is returned with the error.
func (c *Client) LoadFont(path string) (int, error) {
	out, err := c.tx.Transact(fmt.Sprintf("load %q", path))
	if err != nil {
		return NoFont, fmt.Errorf("load %s: %w", path, err)
	}
	id := lastDigitToken(out)
	if id == NoFont {
		c.log.Warn().Str("path", path).Str("response", strings.TrimSpace(out)).
			Msg("load produced no font id")
		return NoFont, fmt.Errorf("%w: %s", ErrLoadFailed, path)
	}
	c.state.Fonts[id] = path
	c.state.ActiveFont = id
	c.state.ActiveFontPath = path
	c.log.Debug().Int("font", id).Str("path", path).Msg("font loaded")
	return id, nil
}

// Fonts asks the engine for its resident font list. The listing leads with
// a column header line; that line and any line whose first field is not an
// integer are skipped, the latter with a warning.
func (c *Client) Fonts() ([]int, error) {
	out, err := c.tx.Transact("fonts")
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}
	var ids []int
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "ID" {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			c.log.Warn().Str("line", strings.TrimSpace(line)).Msg("skipping unparsable font row")
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UnloadFont removes one font from the engine and the local map.
func (c *Client) UnloadFont(id int) error {
	if err := c.tx.Post("unload " + strconv.Itoa(id)); err != nil {
		return fmt.Errorf("unload %d: %w", id, err)
	}
	delete(c.state.Fonts, id)
	if c.state.ActiveFont == id {
		c.state.ActiveFont = NoFont
		c.state.ActiveFontPath = ""
	}
	return nil
}

// UnloadUnreferenced evicts every loaded font no channel slot points at.
// Only 16 fonts fit in engine memory, so this runs before each new load.
// Fonts still referenced by a channel are never touched, and a second call
// with no intervening load or select issues no commands at all.
func (c *Client) UnloadUnreferenced() error {
	refs := c.state.referencedFonts()
	for id := range c.state.Fonts {
		if refs[id] {
			continue
		}
		if err := c.tx.Post("unload " + strconv.Itoa(id)); err != nil {
			return fmt.Errorf("unload %d: %w", id, err)
		}
		delete(c.state.Fonts, id)
		if c.state.ActiveFont == id {
			c.state.ActiveFont = NoFont
			c.state.ActiveFontPath = ""
		}
		c.log.Debug().Int("font", id).Msg("unreferenced font unloaded")
	}
	return nil
}

// Instruments lists the instrument descriptors of a loaded font, one per
// line in "BBB-PPP Name" form. A negative id short-circuits to an empty
// list without touching the engine.
func (c *Client) Instruments(fontID int) ([]string, error) {
	if fontID < 0 {
		return nil, nil
	}
	out, err := c.tx.Transact("inst " + strconv.Itoa(fontID))
	if err != nil {
		return nil, fmt.Errorf("inst %d: %w", fontID, err)
	}
	var descriptors []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		descriptors = append(descriptors, line)
	}
	return descriptors, nil
}

// SelectInstrument applies a descriptor to the selected channel. The wire
// command wants the 0-based channel, the active font id, and the bank and
// program numbers from the descriptor's leading "BBB-PPP" token; the
// zero-padded token halves pass through verbatim. The select is posted
// without response verification, then the channel slot and active cursor
// are updated.
func (c *Client) SelectInstrument(descriptor string) error {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return ErrEmptyInstrument
	}
	if c.state.ActiveFont == NoFont {
		return ErrNoActiveFont
	}
	bank, prog, err := splitDescriptor(descriptor)
	if err != nil {
		return err
	}

	chan0 := c.state.SelectedChannel - 1
	if chan0 < 0 || chan0 >= ChannelCount {
		return fmt.Errorf("%w: %d", ErrChannelOutOfRange, c.state.SelectedChannel)
	}
	cmd := fmt.Sprintf("select %d %d %s %s", chan0, c.state.ActiveFont, bank, prog)
	if err := c.tx.Post(cmd); err != nil {
		return fmt.Errorf("select instrument: %w", err)
	}

	c.state.ChannelFonts[chan0] = c.state.ActiveFont
	c.state.ChannelInstruments[chan0] = descriptor
	c.state.ActiveChannel = c.state.SelectedChannel
	c.state.ActiveInstrument = descriptor
	c.log.Debug().Int("channel", c.state.SelectedChannel).Int("font", c.state.ActiveFont).
		Str("instrument", descriptor).Msg("instrument selected")
	return nil
}

// InitFont is the composite bring-up for a new font: sweep unreferenced
// fonts, load, list instruments, select the first as the default voice.
// Any failing step aborts. A load that succeeded before a later step failed
// leaves the font resident engine-side without a confirmed instrument; the
// next InitFont's sweep collects it.
func (c *Client) InitFont(path string) (int, []string, error) {
	if err := c.UnloadUnreferenced(); err != nil {
		return NoFont, nil, err
	}
	id, err := c.LoadFont(path)
	if err != nil {
		return NoFont, nil, err
	}
	voices, err := c.Instruments(id)
	if err != nil {
		return NoFont, nil, err
	}
	if len(voices) == 0 {
		return NoFont, nil, fmt.Errorf("%w: %s", ErrNoInstruments, path)
	}
	if err := c.SelectInstrument(voices[0]); err != nil {
		return NoFont, nil, err
	}
	return id, voices, nil
}

// splitDescriptor takes "BBB-PPP Name" and returns the bank and program
// halves as their original strings.
func splitDescriptor(descriptor string) (bank, prog string, err error) {
	lead := strings.Fields(descriptor)[0]
	bank, prog, ok := strings.Cut(lead, "-")
	if !ok || bank == "" || prog == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadDescriptor, descriptor)
	}
	if _, err := strconv.Atoi(bank); err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrBadDescriptor, descriptor)
	}
	if _, err := strconv.Atoi(prog); err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrBadDescriptor, descriptor)
	}
	return bank, prog, nil
}

// lastDigitToken scans whitespace tokens and returns the last one made of
// digits only, or NoFont when none exists.
func lastDigitToken(s string) int {
	id := NoFont
	for _, tok := range strings.Fields(s) {
		if n, err := strconv.Atoi(tok); err == nil && allDigits(tok) {
			id = n
		}
	}
	return id
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
