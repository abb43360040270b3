package layout

import (
	"fmt"
	"path/filepath"
	"sort"
)

func intp(v int) *int { return &v }

// bma is the colour picker keypad: twelve palette keys type their colour
// as "#rrggbb", key 0 switches to the highlight shades and key 4 types the
// colour as a tuple instead while showing the status indicator.
func bma() *File {
	f := &File{
		Name:           "bma",
		KeyCount:       16,
		PaletteName:    "bma",
		Calibration:    "manual",
		Slots:          []int{-1, 8, 4, 0, -1, 9, 5, 1, -1, 10, 6, 2, -1, 11, 7, 3},
		HoldThreshold:  "100ms",
		CycleInterval:  "2s",
		CycleColors:    []string{"#ff0000", "#00ff00", "#0000ff"},
		HighlightKey:   intp(0),
		SuppressKey:    intp(4),
		IndicatorKey:   intp(4),
		HighlightColor: "#00ffff",
		PressColor:     "off",
		SuppressedText: "tuple",
		PollInterval:   "10ms",
	}
	for i, s := range f.Slots {
		if s < 0 {
			continue
		}
		// ALT+3 types a literal '#' on a Mac
		f.Keys = append(f.Keys, Key{Index: i, Keycodes: []string{"ALT", "THREE"}, Text: "{hex}"})
	}
	return f
}

// arrows is a game pad: arrows, space and shifts with key repeat and
// pink/purple press feedback.
func arrows() *File {
	codes := []string{
		"SHIFT", "C", "LEFT_ARROW", "Z",
		"RIGHT_SHIFT", "RIGHT_SHIFT", "DOWN_ARROW", "UP_ARROW",
		"RIGHT_SHIFT", "RIGHT_SHIFT", "RIGHT_ARROW", "SPACE",
		"RIGHT_SHIFT", "RIGHT_SHIFT", "RIGHT_SHIFT", "RIGHT_SHIFT",
	}
	f := &File{
		Name:     "arrows",
		KeyCount: 16,
		// green, cyan, white, orange
		Palette:        []string{"#33cc00", "#00ffff", "#c8c8ff", "#ff3700"},
		Calibration:    "none",
		Slots:          []int{0, 1, 2, 1, 0, 3, 2, 2, 0, 1, 2, 3, 0, 1, 1, 1},
		HoldThreshold:  "100ms",
		PressColor:     "#ff66cc",
		HoldColor:      "#9966ff",
		SuppressedText: "hex",
		PollInterval:   "10ms",
	}
	for i, c := range codes {
		k := Key{Index: i, Keycodes: []string{c}, Repeat: true}
		if i == 3 {
			k.HoldThreshold = "750ms"
		}
		f.Keys = append(f.Keys, k)
	}
	return f
}

var builtins = map[string]func() *File{
	"bma":    bma,
	"arrows": arrows,
}

// Builtin returns a fresh copy of a built-in layout.
func Builtin(name string) (*File, error) {
	mk, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in layout %q (known: %v)", name, BuiltinNames())
	}
	return mk(), nil
}

// BuiltinNames lists the built-in layouts.
func BuiltinNames() []string {
	out := make([]string, 0, len(builtins))
	for n := range builtins {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the built-in layout of that name, or loads nameOrPath as a
// file when it has an extension.
func Resolve(nameOrPath string) (*File, error) {
	if _, ok := builtins[nameOrPath]; ok || filepath.Ext(nameOrPath) == "" {
		return Builtin(nameOrPath)
	}
	return Load(nameOrPath)
}
