package color

import (
	"fmt"
	"sort"
	"strings"
)

// Calibrator maps a nominal colour to the value written to an LED so that
// the lit key approximates the nominal colour.
type Calibrator interface {
	Calibrate(c RGB) RGB
}

// Channel holds the linear correction for one colour channel:
// out = (in - Offset) / Scale.
type Channel struct {
	Offset float64 `json:"offset" yaml:"offset" toml:"offset"`
	Scale  float64 `json:"scale" yaml:"scale" toml:"scale"`
}

func (ch Channel) apply(v uint8) int {
	if ch.Scale == 0 {
		return int(v)
	}
	// int() truncates toward zero, negative results are clamped afterwards
	return int((float64(v) - ch.Offset) / ch.Scale)
}

// Affine applies an independent linear correction per channel.
type Affine struct {
	R Channel `json:"r" yaml:"r" toml:"r"`
	G Channel `json:"g" yaml:"g" toml:"g"`
	B Channel `json:"b" yaml:"b" toml:"b"`
}

func (a Affine) Calibrate(c RGB) RGB {
	return Clamp(a.R.apply(c.R), a.G.apply(c.G), a.B.apply(c.B))
}

// Squash maps every channel from [0,255] linearly into [Low,High].
type Squash struct {
	Low  int `json:"low" yaml:"low" toml:"low"`
	High int `json:"high" yaml:"high" toml:"high"`
}

func (s Squash) Calibrate(c RGB) RGB {
	scale := float64(s.High-s.Low) / 255
	f := func(v uint8) int { return int(float64(v)*scale) + s.Low }
	return Clamp(f(c.R), f(c.G), f(c.B))
}

type identity struct{}

func (identity) Calibrate(c RGB) RGB { return c }

// Identity leaves colours untouched.
var Identity Calibrator = identity{}

// Built-in calibrations measured against the reference keypad.
var (
	// Manual is the hand-tuned correction and the default.
	Manual = Affine{
		R: Channel{Offset: 50, Scale: 0.95},
		G: Channel{Offset: 75, Scale: 0.92},
		B: Channel{Offset: 50, Scale: 0.95},
	}
	// Daylight was fitted from a photo taken in daylight.
	Daylight = Affine{
		R: Channel{Offset: 47, Scale: 0.77},
		G: Channel{Offset: 97, Scale: 0.49},
		B: Channel{Offset: 158, Scale: 0.44},
	}
	// Dark was fitted from a photo taken in the dark.
	Dark = Affine{
		R: Channel{Offset: 46, Scale: 0.88},
		G: Channel{Offset: 86, Scale: 0.70},
		B: Channel{Offset: 129, Scale: 0.64},
	}
	// Range keeps every channel between 70 and 200.
	Range = Squash{Low: 70, High: 200}
)

var presets = map[string]Calibrator{
	"manual":   Manual,
	"daylight": Daylight,
	"dark":     Dark,
	"squash":   Range,
	"none":     Identity,
}

// Preset returns the named built-in calibration. The empty name selects Manual.
func Preset(name string) (Calibrator, error) {
	if name == "" {
		return Manual, nil
	}
	c, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown calibration %q (known: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return c, nil
}

// PresetNames lists the built-in calibration names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
