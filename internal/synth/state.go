package synth

const (
	// ChannelCount is fixed by the engine: 16 output channels, and at most
	// 16 fonts resident before loads start failing.
	ChannelCount = 16

	// NoFont marks an unassigned channel slot or an absent active font.
	NoFont = -1
)

// State is the client-side record of what the engine has loaded and where.
// Fields are exported because the whole struct is the persistence surface
// for an embedding application; every mutation still goes through Client.
type State struct {
	// Fonts maps engine-assigned font ids to the path they were loaded from.
	// An id is present exactly while the font has not been unloaded.
	Fonts map[int]string

	// ChannelFonts and ChannelInstruments are indexed by 0-based channel.
	ChannelFonts       [ChannelCount]int
	ChannelInstruments [ChannelCount]string

	// SelectedChannel is the 1-based channel the next selection applies to.
	// ActiveChannel tracks where the most recent selection actually landed;
	// the two differ whenever the caller moves the cursor without acting.
	SelectedChannel int
	ActiveChannel   int

	ActiveFont       int
	ActiveFontPath   string
	ActiveInstrument string
}

func NewState() *State {
	s := &State{
		Fonts:           make(map[int]string),
		SelectedChannel: 1,
		ActiveChannel:   1,
		ActiveFont:      NoFont,
	}
	for i := range s.ChannelFonts {
		s.ChannelFonts[i] = NoFont
	}
	return s
}

// SetSelectedChannel moves the selection cursor, clamped to 1..16.
func (s *State) SetSelectedChannel(ch int) {
	if ch < 1 {
		ch = 1
	}
	if ch > ChannelCount {
		ch = ChannelCount
	}
	s.SelectedChannel = ch
}

// UseFont points the selection cursor at an already-loaded font. An id the
// client never saw loaded is registered in Fonts with an empty path, so a
// later selection never leaves a channel slot referencing an unmapped font.
// Negative ids are ignored.
func (s *State) UseFont(id int) {
	if id < 0 {
		return
	}
	if _, ok := s.Fonts[id]; !ok {
		s.Fonts[id] = ""
	}
	s.ActiveFont = id
	s.ActiveFontPath = s.Fonts[id]
}

// referencedFonts is the set of font ids some channel slot still points at.
func (s *State) referencedFonts() map[int]bool {
	refs := make(map[int]bool, ChannelCount)
	for _, id := range s.ChannelFonts {
		if id != NoFont {
			refs[id] = true
		}
	}
	return refs
}

// Snapshot is the enumerated persistence form of State: every field listed
// once, statically, so the embedding application can marshal it however it
// likes. The core does no serialization itself.
type Snapshot struct {
	Fonts              map[int]string `toml:"fonts" json:"fonts"`
	ChannelFonts       []int          `toml:"channel_fonts" json:"channel_fonts"`
	ChannelInstruments []string       `toml:"channel_instruments" json:"channel_instruments"`
	SelectedChannel    int            `toml:"selected_channel" json:"selected_channel"`
	ActiveChannel      int            `toml:"active_channel" json:"active_channel"`
	ActiveFont         int            `toml:"active_font" json:"active_font"`
	ActiveFontPath     string         `toml:"active_font_path" json:"active_font_path"`
	ActiveInstrument   string         `toml:"active_instrument" json:"active_instrument"`
}

func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Fonts:              make(map[int]string, len(s.Fonts)),
		ChannelFonts:       make([]int, ChannelCount),
		ChannelInstruments: make([]string, ChannelCount),
		SelectedChannel:    s.SelectedChannel,
		ActiveChannel:      s.ActiveChannel,
		ActiveFont:         s.ActiveFont,
		ActiveFontPath:     s.ActiveFontPath,
		ActiveInstrument:   s.ActiveInstrument,
	}
	for id, path := range s.Fonts {
		snap.Fonts[id] = path
	}
	copy(snap.ChannelFonts, s.ChannelFonts[:])
	copy(snap.ChannelInstruments, s.ChannelInstruments[:])
	return snap
}

// Restore applies a snapshot, repairing wrong-length channel slices so the
// 16-slot invariant holds regardless of what was persisted.
func (s *State) Restore(snap Snapshot) {
	s.Fonts = make(map[int]string, len(snap.Fonts))
	for id, path := range snap.Fonts {
		s.Fonts[id] = path
	}
	for i := range s.ChannelFonts {
		s.ChannelFonts[i] = NoFont
		s.ChannelInstruments[i] = ""
	}
	for i := 0; i < len(snap.ChannelFonts) && i < ChannelCount; i++ {
		s.ChannelFonts[i] = snap.ChannelFonts[i]
	}
	for i := 0; i < len(snap.ChannelInstruments) && i < ChannelCount; i++ {
		s.ChannelInstruments[i] = snap.ChannelInstruments[i]
	}
	s.SelectedChannel = snap.SelectedChannel
	if s.SelectedChannel < 1 || s.SelectedChannel > ChannelCount {
		s.SelectedChannel = 1
	}
	s.ActiveChannel = snap.ActiveChannel
	if s.ActiveChannel < 1 || s.ActiveChannel > ChannelCount {
		s.ActiveChannel = 1
	}
	s.ActiveFont = snap.ActiveFont
	s.ActiveFontPath = snap.ActiveFontPath
	s.ActiveInstrument = snap.ActiveInstrument
}
