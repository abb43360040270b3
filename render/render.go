// Package render computes the colour of every key LED from the static
// layout, the modifier flags, the key phases and the status indicator.
package render

import (
	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/grid"
	"github.com/Alia5/padlight/keystate"
	"github.com/Alia5/padlight/mode"
)

// NoKey disables a role.
const NoKey = -1

// LED is the desired state of one key light.
type LED struct {
	On    bool
	Color color.RGB
}

// Lit returns an LED switched on with c.
func Lit(c color.RGB) LED { return LED{On: true, Color: c} }

// Dark is a switched off LED.
var Dark = LED{}

// Frame holds one LED per key.
type Frame []LED

// Roles names the keys whose LED is not derived from their slot.
type Roles struct {
	Highlight int // shows HighlightColor while the highlight flag is set, else off
	Suppress  int // off while the suppress flag is set
	Indicator int // shows the status indicator colour, off while suppressed
}

// NoRoles disables every role.
var NoRoles = Roles{Highlight: NoKey, Suppress: NoKey, Indicator: NoKey}

// Is reports whether key i has any role.
func (r Roles) Is(i int) bool {
	return i == r.Highlight || i == r.Suppress || i == r.Indicator
}

// Config is the static input of the renderer.
type Config struct {
	Slots            grid.SlotMap
	Palette          []color.RGB
	HighlightPalette []color.RGB
	Calibration      color.Calibrator
	HighlightColor   color.RGB
	// Press and Hold replace the slot colour of a pressed or held slot key.
	// nil keeps the slot colour. Hold falls back to Press.
	Press *LED
	Hold  *LED
	Roles Roles
}

// State is the dynamic input of one render pass.
type State struct {
	Mode      mode.State
	Phases    []keystate.Phase
	Indicator color.RGB
}

// Renderer turns State into Frames.
type Renderer struct {
	cfg Config
}

// New returns a renderer for cfg. A nil calibration leaves colours as is.
func New(cfg Config) *Renderer {
	if cfg.Calibration == nil {
		cfg.Calibration = color.Identity
	}
	return &Renderer{cfg: cfg}
}

// SlotColor returns the raw palette colour of slot s for the given
// highlight flag.
func (r *Renderer) SlotColor(s grid.Slot, highlight bool) (color.RGB, bool) {
	p := r.cfg.Palette
	if highlight {
		p = r.cfg.HighlightPalette
	}
	if !s.Valid() || int(s) >= len(p) {
		return color.RGB{}, false
	}
	return p[s], true
}

// Render writes the LED of every key into dst.
func (r *Renderer) Render(dst Frame, st State) {
	for i := range dst {
		dst[i] = r.key(i, st)
	}
	r.applyRoles(dst, st)
}

// Frame allocates and renders a frame of n keys.
func (r *Renderer) Frame(n int, st State) Frame {
	f := make(Frame, n)
	r.Render(f, st)
	return f
}

func (r *Renderer) key(i int, st State) LED {
	c, ok := r.SlotColor(r.cfg.Slots.At(i), st.Mode.Highlight)
	if !ok {
		return Dark
	}
	if i < len(st.Phases) && !r.cfg.Roles.Is(i) {
		if fb := r.feedback(st.Phases[i]); fb != nil {
			if !fb.On {
				return Dark
			}
			return Lit(r.cfg.Calibration.Calibrate(fb.Color))
		}
	}
	return Lit(r.cfg.Calibration.Calibrate(c))
}

func (r *Renderer) feedback(p keystate.Phase) *LED {
	switch p {
	case keystate.Pressed:
		return r.cfg.Press
	case keystate.Held:
		if r.cfg.Hold != nil {
			return r.cfg.Hold
		}
		return r.cfg.Press
	default:
		return nil
	}
}

func (r *Renderer) applyRoles(dst Frame, st State) {
	set := func(i int, l LED) {
		if i >= 0 && i < len(dst) {
			dst[i] = l
		}
	}
	roles := r.cfg.Roles
	if st.Mode.Highlight {
		set(roles.Highlight, Lit(r.cfg.HighlightColor))
	} else {
		set(roles.Highlight, Dark)
	}
	if st.Mode.Suppress {
		set(roles.Indicator, Dark)
	} else {
		set(roles.Indicator, Lit(st.Indicator))
	}
	if st.Mode.Suppress {
		set(roles.Suppress, Dark)
	}
}
