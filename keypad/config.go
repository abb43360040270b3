package keypad

import (
	"errors"
	"fmt"
	"time"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/dispatch"
	"github.com/Alia5/padlight/grid"
	"github.com/Alia5/padlight/keystate"
	"github.com/Alia5/padlight/render"
)

// ErrConfigMismatch is wrapped by every configuration validation error.
var ErrConfigMismatch = errors.New("configuration mismatch")

// NoKey disables a role key.
const NoKey = -1

// DefaultPollInterval is the tick period of Run.
const DefaultPollInterval = 10 * time.Millisecond

// Config is the complete startup configuration of a keypad.
type Config struct {
	KeyCount         int
	Slots            grid.SlotMap
	Palette          []color.RGB
	HighlightPalette []color.RGB
	Calibration      color.Calibrator
	// Keymap holds the action of every key, indexed by key.
	Keymap []dispatch.Action

	HoldThreshold time.Duration
	// HoldThresholds overrides HoldThreshold for single keys.
	HoldThresholds map[int]time.Duration
	// RepeatKeys re-send their keycodes on every tick while held, unless
	// the host has not written the previous repeat yet.
	RepeatKeys []int

	CycleInterval time.Duration
	CycleColors   []color.RGB

	HighlightKey   int
	SuppressKey    int
	IndicatorKey   int
	HighlightColor color.RGB

	// Press and Hold replace the LED of a pressed or held slot key.
	Press *render.LED
	Hold  *render.LED

	SuppressedText dispatch.TextFormat
	PollInterval   time.Duration
}

func mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfigMismatch, fmt.Sprintf(format, args...))
}

// Validate reports the first inconsistency in c.
func (c *Config) Validate() error {
	if c.KeyCount <= 0 {
		return mismatch("key count must be positive, got %d", c.KeyCount)
	}
	if len(c.Slots) != c.KeyCount {
		return mismatch("slot map has %d entries for %d keys", len(c.Slots), c.KeyCount)
	}
	if len(c.Palette) != len(c.HighlightPalette) {
		return mismatch("palette has %d colours, highlight palette %d", len(c.Palette), len(c.HighlightPalette))
	}
	if err := c.Slots.Validate(len(c.Palette), len(c.HighlightPalette)); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigMismatch, err)
	}
	if len(c.Keymap) > c.KeyCount {
		return mismatch("keymap has %d entries for %d keys", len(c.Keymap), c.KeyCount)
	}
	for name, k := range map[string]int{"highlight": c.HighlightKey, "suppress": c.SuppressKey, "indicator": c.IndicatorKey} {
		if k != NoKey && (k < 0 || k >= c.KeyCount) {
			return mismatch("%s key %d outside [0,%d)", name, k, c.KeyCount)
		}
	}
	if c.HighlightKey != NoKey && (c.HighlightKey == c.SuppressKey || c.HighlightKey == c.IndicatorKey) {
		return mismatch("highlight key %d has a second role", c.HighlightKey)
	}
	for _, k := range c.RepeatKeys {
		if k < 0 || k >= c.KeyCount {
			return mismatch("repeat key %d outside [0,%d)", k, c.KeyCount)
		}
	}
	for k, d := range c.HoldThresholds {
		if k < 0 || k >= c.KeyCount {
			return mismatch("hold threshold for key %d outside [0,%d)", k, c.KeyCount)
		}
		if d < 0 {
			return mismatch("negative hold threshold for key %d", k)
		}
	}
	if c.HoldThreshold < 0 {
		return mismatch("negative hold threshold")
	}
	if c.IndicatorKey != NoKey && len(c.CycleColors) == 0 {
		return mismatch("indicator key %d without cycle colours", c.IndicatorKey)
	}
	if c.CycleInterval < 0 {
		return mismatch("negative cycle interval")
	}
	if c.PollInterval <= 0 {
		return mismatch("poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// Timing returns the classifier timing of every key. Every key can be held;
// whether a hold repeats is up to the dispatcher.
func (c *Config) Timing() []keystate.Timing {
	out := make([]keystate.Timing, c.KeyCount)
	for i := range out {
		out[i] = keystate.Timing{Hold: true, Threshold: c.HoldThreshold}
		if d, ok := c.HoldThresholds[i]; ok {
			out[i].Threshold = d
		}
	}
	return out
}

// Grid returns the smallest square grid holding every key.
func (c *Config) Grid() grid.Grid {
	return grid.ForKeys(c.KeyCount)
}

// RenderConfig returns the renderer settings of the layout.
func (c *Config) RenderConfig() render.Config {
	return render.Config{
		Slots:            c.Slots,
		Palette:          c.Palette,
		HighlightPalette: c.HighlightPalette,
		Calibration:      c.Calibration,
		HighlightColor:   c.HighlightColor,
		Press:            c.Press,
		Hold:             c.Hold,
		Roles: render.Roles{
			Highlight: c.HighlightKey,
			Suppress:  c.SuppressKey,
			Indicator: c.IndicatorKey,
		},
	}
}

func (c *Config) dispatchConfig() dispatch.Config {
	return dispatch.Config{
		Slots:            c.Slots,
		Actions:          c.Keymap,
		Palette:          c.Palette,
		HighlightPalette: c.HighlightPalette,
		HighlightKey:     c.HighlightKey,
		SuppressKey:      c.SuppressKey,
		IndicatorKey:     c.IndicatorKey,
		SuppressedText:   c.SuppressedText,
		RepeatKeys:       c.RepeatKeys,
	}
}
