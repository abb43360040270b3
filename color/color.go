// Package color provides the RGB value type used for key LEDs together with
// calibration transforms and text encodings of colours.
package color

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit per channel colour. Values are immutable; every transform
// returns a new RGB with channels clamped to [0,255].
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Off is the colour of an unlit LED.
var Off = RGB{}

// Clamp builds an RGB from arbitrary integers, clamping each channel to [0,255].
func Clamp(r, g, b int) RGB {
	return RGB{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Hex returns the 6-digit lowercase hex form without a prefix, e.g. "ff66cc".
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// Tuple returns the textual tuple form, e.g. "(255, 102, 204)".
func (c RGB) Tuple() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return "#" + c.Hex()
}

// IsOff reports whether all channels are zero.
func (c RGB) IsOff() bool {
	return c == Off
}

// Darken divides every channel by factor. A factor <= 0 returns c unchanged.
func Darken(c RGB, factor float64) RGB {
	if factor <= 0 {
		return c
	}
	return Clamp(
		int(float64(c.R)/factor),
		int(float64(c.G)/factor),
		int(float64(c.B)/factor),
	)
}

// ParseHex parses "#ff66cc", "ff66cc" or the short form "#f6c".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGB{}, fmt.Errorf("empty colour")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// MarshalText encodes the colour as "#rrggbb".
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts any form understood by ParseHex.
func (c *RGB) UnmarshalText(text []byte) error {
	v, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
