// Package layout reads keypad layouts from json, yaml or toml files and
// converts them into a keypad.Config.
package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/device/keyboard"
	"github.com/Alia5/padlight/dispatch"
	"github.com/Alia5/padlight/grid"
	"github.com/Alia5/padlight/keypad"
	"github.com/Alia5/padlight/keystate"
	"github.com/Alia5/padlight/render"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// File is the on-disk layout. Colours are hex strings, durations use Go
// duration syntax and keycodes are key names understood by
// keyboard.ParseKey.
type File struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	KeyCount int    `json:"keyCount" yaml:"keyCount" toml:"keyCount"`

	// PaletteName selects a built-in palette pair when Palette is empty.
	PaletteName      string   `json:"paletteName,omitempty" yaml:"paletteName,omitempty" toml:"paletteName,omitempty"`
	Palette          []string `json:"palette,omitempty" yaml:"palette,omitempty" toml:"palette,omitempty"`
	HighlightPalette []string `json:"highlightPalette,omitempty" yaml:"highlightPalette,omitempty" toml:"highlightPalette,omitempty"`

	// Calibration names a preset. CustomCalibration takes precedence.
	Calibration       string        `json:"calibration,omitempty" yaml:"calibration,omitempty" toml:"calibration,omitempty"`
	CustomCalibration *color.Affine `json:"customCalibration,omitempty" yaml:"customCalibration,omitempty" toml:"customCalibration,omitempty"`

	// Slots assigns a palette slot to every key, -1 for none.
	Slots []int `json:"slots" yaml:"slots" toml:"slots"`
	Keys  []Key `json:"keys,omitempty" yaml:"keys,omitempty" toml:"keys,omitempty"`

	HoldThreshold string   `json:"holdThreshold,omitempty" yaml:"holdThreshold,omitempty" toml:"holdThreshold,omitempty"`
	CycleInterval string   `json:"cycleInterval,omitempty" yaml:"cycleInterval,omitempty" toml:"cycleInterval,omitempty"`
	CycleColors   []string `json:"cycleColors,omitempty" yaml:"cycleColors,omitempty" toml:"cycleColors,omitempty"`

	HighlightKey   *int   `json:"highlightKey,omitempty" yaml:"highlightKey,omitempty" toml:"highlightKey,omitempty"`
	SuppressKey    *int   `json:"suppressKey,omitempty" yaml:"suppressKey,omitempty" toml:"suppressKey,omitempty"`
	IndicatorKey   *int   `json:"indicatorKey,omitempty" yaml:"indicatorKey,omitempty" toml:"indicatorKey,omitempty"`
	HighlightColor string `json:"highlightColor,omitempty" yaml:"highlightColor,omitempty" toml:"highlightColor,omitempty"`

	// PressColor and HoldColor are "off", a hex colour, or empty to keep
	// the slot colour.
	PressColor string `json:"pressColor,omitempty" yaml:"pressColor,omitempty" toml:"pressColor,omitempty"`
	HoldColor  string `json:"holdColor,omitempty" yaml:"holdColor,omitempty" toml:"holdColor,omitempty"`

	// SuppressedText is "hex" or "tuple".
	SuppressedText string `json:"suppressedText,omitempty" yaml:"suppressedText,omitempty" toml:"suppressedText,omitempty"`
	PollInterval   string `json:"pollInterval,omitempty" yaml:"pollInterval,omitempty" toml:"pollInterval,omitempty"`
}

// Key is the action of one key.
type Key struct {
	Index         int      `json:"index" yaml:"index" toml:"index"`
	Keycodes      []string `json:"keycodes,omitempty" yaml:"keycodes,omitempty" toml:"keycodes,omitempty"`
	Text          string   `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
	Repeat        bool     `json:"repeat,omitempty" yaml:"repeat,omitempty" toml:"repeat,omitempty"`
	HoldThreshold string   `json:"holdThreshold,omitempty" yaml:"holdThreshold,omitempty" toml:"holdThreshold,omitempty"`
}

// FormatOf maps a file extension to "json", "yaml" or "toml".
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("unsupported layout extension %q", filepath.Ext(path))
	}
}

// Load reads and decodes a layout file.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses data in the given format.
func Decode(data []byte, format string) (*File, error) {
	var f File
	var err error
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&f)
	case "toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported layout format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return &f, nil
}

// Encode serialises f in the given format.
func Encode(f *File, format string) ([]byte, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml":
		return yaml.Marshal(f)
	case "toml":
		return toml.Marshal(*f)
	default:
		return nil, fmt.Errorf("unsupported layout format %q", format)
	}
}

// Config converts the file into a validated keypad configuration.
func (f *File) Config() (keypad.Config, error) {
	cfg := keypad.Config{
		KeyCount:     f.KeyCount,
		HighlightKey: roleKey(f.HighlightKey),
		SuppressKey:  roleKey(f.SuppressKey),
		IndicatorKey: roleKey(f.IndicatorKey),
	}
	if cfg.KeyCount == 0 {
		cfg.KeyCount = len(f.Slots)
	}

	var err error
	if cfg.Palette, cfg.HighlightPalette, err = f.palettes(); err != nil {
		return cfg, err
	}
	if f.CustomCalibration != nil {
		cfg.Calibration = *f.CustomCalibration
	} else if cfg.Calibration, err = color.Preset(f.Calibration); err != nil {
		return cfg, err
	}

	cfg.Slots = make(grid.SlotMap, len(f.Slots))
	for i, s := range f.Slots {
		if s < 0 {
			cfg.Slots[i] = grid.NoSlot
			continue
		}
		cfg.Slots[i] = grid.Slot(s)
	}

	if cfg.HoldThreshold, err = duration(f.HoldThreshold, keystate.DefaultHoldThreshold); err != nil {
		return cfg, fmt.Errorf("holdThreshold: %w", err)
	}
	if cfg.CycleInterval, err = duration(f.CycleInterval, render.DefaultCycleInterval); err != nil {
		return cfg, fmt.Errorf("cycleInterval: %w", err)
	}
	if cfg.PollInterval, err = duration(f.PollInterval, keypad.DefaultPollInterval); err != nil {
		return cfg, fmt.Errorf("pollInterval: %w", err)
	}

	if len(f.CycleColors) == 0 {
		cfg.CycleColors = render.DefaultCycleColors
	} else if cfg.CycleColors, err = parseColors(f.CycleColors); err != nil {
		return cfg, fmt.Errorf("cycleColors: %w", err)
	}
	cfg.HighlightColor = color.Cyan
	if f.HighlightColor != "" {
		if cfg.HighlightColor, err = color.ParseHex(f.HighlightColor); err != nil {
			return cfg, fmt.Errorf("highlightColor: %w", err)
		}
	}
	if cfg.Press, err = feedback(f.PressColor); err != nil {
		return cfg, fmt.Errorf("pressColor: %w", err)
	}
	if cfg.Hold, err = feedback(f.HoldColor); err != nil {
		return cfg, fmt.Errorf("holdColor: %w", err)
	}
	if cfg.SuppressedText, err = dispatch.ParseTextFormat(f.SuppressedText); err != nil {
		return cfg, err
	}

	if err := f.keys(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (f *File) palettes() (palette, highlights []color.RGB, err error) {
	if len(f.Palette) == 0 {
		name := f.PaletteName
		if name == "" {
			name = "bma"
		}
		p, h, ok := color.Palette(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown palette %q", name)
		}
		return p, h, nil
	}
	if palette, err = parseColors(f.Palette); err != nil {
		return nil, nil, fmt.Errorf("palette: %w", err)
	}
	if len(f.HighlightPalette) == 0 {
		return palette, palette, nil
	}
	if highlights, err = parseColors(f.HighlightPalette); err != nil {
		return nil, nil, fmt.Errorf("highlightPalette: %w", err)
	}
	return palette, highlights, nil
}

func (f *File) keys(cfg *keypad.Config) error {
	cfg.Keymap = make([]dispatch.Action, cfg.KeyCount)
	seen := map[int]bool{}
	for _, k := range f.Keys {
		if k.Index < 0 || k.Index >= cfg.KeyCount {
			return fmt.Errorf("key %d: index outside [0,%d)", k.Index, cfg.KeyCount)
		}
		if seen[k.Index] {
			return fmt.Errorf("key %d: defined twice", k.Index)
		}
		seen[k.Index] = true

		codes, err := keyboard.ParseKeys(k.Keycodes)
		if err != nil {
			return fmt.Errorf("key %d: %w", k.Index, err)
		}
		cfg.Keymap[k.Index] = dispatch.Action{Keycodes: codes, Text: k.Text}
		if k.Repeat {
			cfg.RepeatKeys = append(cfg.RepeatKeys, k.Index)
		}
		if k.HoldThreshold != "" {
			d, err := time.ParseDuration(k.HoldThreshold)
			if err != nil {
				return fmt.Errorf("key %d: holdThreshold: %w", k.Index, err)
			}
			if cfg.HoldThresholds == nil {
				cfg.HoldThresholds = map[int]time.Duration{}
			}
			cfg.HoldThresholds[k.Index] = d
		}
	}
	return nil
}

func roleKey(p *int) int {
	if p == nil {
		return keypad.NoKey
	}
	return *p
}

func duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func parseColors(in []string) ([]color.RGB, error) {
	out := make([]color.RGB, len(in))
	for i, s := range in {
		c, err := color.ParseHex(s)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

var errFeedback = errors.New(`expected "off" or a hex colour`)

func feedback(s string) (*render.LED, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "off", "none":
		return &render.LED{}, nil
	}
	c, err := color.ParseHex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFeedback, err)
	}
	l := render.Lit(c)
	return &l, nil
}
