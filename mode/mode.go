// Package mode holds the two global modifier flags of the keypad.
package mode

// Flag names one modifier.
type Flag uint8

const (
	// Highlight swaps the rendered palette for the highlight palette.
	Highlight Flag = iota
	// Suppress replaces keycode emission with the slot colour as text and
	// pauses the status indicator.
	Suppress
)

func (f Flag) String() string {
	switch f {
	case Highlight:
		return "highlight"
	case Suppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// State is the current value of both flags. Each flag follows its key:
// set on press, cleared on release.
type State struct {
	Highlight bool
	Suppress  bool
}

// Get returns the value of f.
func (s State) Get(f Flag) bool {
	switch f {
	case Highlight:
		return s.Highlight
	case Suppress:
		return s.Suppress
	default:
		return false
	}
}

// Set assigns f and reports whether the value changed.
func (s *State) Set(f Flag, on bool) bool {
	var p *bool
	switch f {
	case Highlight:
		p = &s.Highlight
	case Suppress:
		p = &s.Suppress
	default:
		return false
	}
	if *p == on {
		return false
	}
	*p = on
	return true
}
