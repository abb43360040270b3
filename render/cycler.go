package render

import (
	"time"

	"github.com/Alia5/padlight/color"
)

// DefaultCycleInterval is the time each indicator colour is shown.
const DefaultCycleInterval = 2 * time.Second

// DefaultCycleColors is the indicator sequence.
var DefaultCycleColors = []color.RGB{color.Red, color.Green, color.Blue}

// Cycler steps the status indicator through its colours on a wall-clock
// interval. Suppression pauses it, and the time spent suppressed is not
// counted towards the next step.
type Cycler struct {
	colors   []color.RGB
	interval time.Duration

	phase   int
	last    time.Time
	started bool
	paused  bool
}

// NewCycler returns a cycler showing colors[0].
func NewCycler(colors []color.RGB, interval time.Duration) *Cycler {
	c := make([]color.RGB, len(colors))
	copy(c, colors)
	return &Cycler{colors: c, interval: interval}
}

// Start sets the beginning of the first interval.
func (c *Cycler) Start(now time.Time) {
	c.last = now
	c.started = true
	c.paused = false
}

// Advance moves to the next colour when an interval has elapsed since the
// last step and reports whether the colour changed.
func (c *Cycler) Advance(now time.Time, suppressed bool) bool {
	if !c.started {
		c.Start(now)
		return false
	}
	if suppressed {
		c.paused = true
		return false
	}
	if c.paused {
		c.paused = false
		c.last = now
		return false
	}
	if len(c.colors) < 2 || c.interval <= 0 {
		return false
	}
	if now.Sub(c.last) < c.interval {
		return false
	}
	c.phase = (c.phase + 1) % len(c.colors)
	c.last = now
	return true
}

// Phase returns the index of the current colour.
func (c *Cycler) Phase() int { return c.phase }

// Color returns the current colour, or off when no colours are configured.
func (c *Cycler) Color() color.RGB {
	if len(c.colors) == 0 {
		return color.Off
	}
	return c.colors[c.phase]
}
