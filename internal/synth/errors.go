package synth

import "errors"

var (
	ErrLoadFailed        = errors.New("synth: engine reported no font id")
	ErrNoActiveFont      = errors.New("synth: no active font to select from")
	ErrEmptyInstrument   = errors.New("synth: empty instrument descriptor")
	ErrBadDescriptor     = errors.New("synth: malformed instrument descriptor")
	ErrNoInstruments     = errors.New("synth: font lists no instruments")
	ErrChannelOutOfRange = errors.New("synth: channel out of range")
)
