// Package dispatch turns classified key events into host emissions and mode
// changes.
package dispatch

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/grid"
	"github.com/Alia5/padlight/keystate"
	"github.com/Alia5/padlight/mode"
)

// DefaultQueueSize bounds the number of pending emission steps.
const DefaultQueueSize = 64

// NoKey disables a role.
const NoKey = -1

// Host receives keycodes and text.
type Host interface {
	// SendKeycode presses every code at once and then releases all of them.
	SendKeycode(codes ...uint8) error
	// WriteText types s through the host keyboard layout.
	WriteText(s string) error
}

// Backlog is implemented by hosts that buffer output. Hold repeats are
// skipped while such a host still has earlier output to write.
type Backlog interface {
	Pending() int
}

// Action is what a slot key emits when pressed.
type Action struct {
	// Keycodes are sent as one chord.
	Keycodes []uint8
	// Text is typed after the chord. "{hex}" and "{rgb}" expand to the
	// slot colour of the active palette.
	Text string
}

// IsZero reports whether the action emits nothing.
func (a Action) IsZero() bool { return len(a.Keycodes) == 0 && a.Text == "" }

// TextFormat selects how a colour is typed while emission is suppressed.
type TextFormat uint8

const (
	FormatHex TextFormat = iota
	FormatTuple
)

// ParseTextFormat accepts "hex" (default) and "tuple".
func ParseTextFormat(s string) (TextFormat, error) {
	switch strings.ToLower(s) {
	case "", "hex":
		return FormatHex, nil
	case "tuple", "rgb":
		return FormatTuple, nil
	default:
		return 0, fmt.Errorf("unknown text format %q", s)
	}
}

func (f TextFormat) String() string {
	if f == FormatTuple {
		return "tuple"
	}
	return "hex"
}

// Format renders c in f.
func (f TextFormat) Format(c color.RGB) string {
	if f == FormatTuple {
		return c.Tuple()
	}
	return c.Hex()
}

// Config is the static dispatch table.
type Config struct {
	Slots            grid.SlotMap
	Actions          []Action // by key index
	Palette          []color.RGB
	HighlightPalette []color.RGB
	HighlightKey     int
	SuppressKey      int
	IndicatorKey     int
	SuppressedText   TextFormat
	// RepeatKeys re-send their keycodes on every Hold.
	RepeatKeys       []int
	QueueSize        int
}

type step struct {
	key    int
	codes  []uint8
	text   string
	repeat bool
}

func (s step) String() string {
	if s.codes != nil {
		return fmt.Sprintf("keycodes %x", s.codes)
	}
	return fmt.Sprintf("text %q", s.text)
}

// Dispatcher maps events to emissions. Emissions go through an ordered queue
// so a failing host delays them instead of dropping them.
type Dispatcher struct {
	cfg     Config
	host    Host
	logger  *slog.Logger
	queue   []step
	failing bool
	repeat  map[int]bool

	// host backlog as seen by the current tick, reset by Flush
	backlog int
	sampled bool
}

// New creates a dispatcher writing to host.
func New(cfg Config, host Host, logger *slog.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	repeat := make(map[int]bool, len(cfg.RepeatKeys))
	for _, k := range cfg.RepeatKeys {
		repeat[k] = true
	}
	return &Dispatcher{cfg: cfg, host: host, logger: logger, repeat: repeat}
}

// Dispatch handles one event of key i and reports whether it changed st.
// Emissions are queued, call Flush to send them.
func (d *Dispatcher) Dispatch(i int, ev keystate.Event, st *mode.State) bool {
	if ev == keystate.None {
		return false
	}
	switch i {
	case d.cfg.HighlightKey:
		return d.toggle(mode.Highlight, ev, st)
	case d.cfg.SuppressKey:
		return d.toggle(mode.Suppress, ev, st)
	case d.cfg.IndicatorKey:
		return false
	}

	slot := d.cfg.Slots.At(i)
	if !slot.Valid() {
		return false
	}
	var action Action
	if i < len(d.cfg.Actions) {
		action = d.cfg.Actions[i]
	}

	switch ev {
	case keystate.Press:
		c, ok := d.slotColor(slot, st.Highlight)
		if !ok {
			return false
		}
		if st.Suppress {
			d.enqueue(step{key: i, text: d.cfg.SuppressedText.Format(c)})
			return false
		}
		if len(action.Keycodes) > 0 {
			d.enqueue(step{key: i, codes: action.Keycodes})
		}
		if action.Text != "" {
			d.enqueue(step{key: i, text: expand(action.Text, c)})
		}
	case keystate.Hold:
		if st.Suppress || !d.repeat[i] || len(action.Keycodes) == 0 {
			return false
		}
		// a repeat is skipped, not queued, while the previous one is unsent
		if d.pendingFor(i) || d.hostBacklog() > 0 {
			return false
		}
		d.enqueue(step{key: i, codes: action.Keycodes, repeat: true})
	case keystate.Release:
		d.dropRepeats(i)
	}
	return false
}

func (d *Dispatcher) pendingFor(i int) bool {
	for _, s := range d.queue {
		if s.key == i {
			return true
		}
	}
	return false
}

// hostBacklog is sampled once per tick so every key held in that tick sees
// the same value.
func (d *Dispatcher) hostBacklog() int {
	if !d.sampled {
		d.sampled = true
		d.backlog = 0
		if b, ok := d.host.(Backlog); ok {
			d.backlog = b.Pending()
		}
	}
	return d.backlog
}

func (d *Dispatcher) dropRepeats(i int) {
	kept := d.queue[:0]
	for _, s := range d.queue {
		if s.key == i && s.repeat {
			continue
		}
		kept = append(kept, s)
	}
	clear(d.queue[len(kept):])
	d.queue = kept
}

func (d *Dispatcher) toggle(f mode.Flag, ev keystate.Event, st *mode.State) bool {
	switch ev {
	case keystate.Press:
		return st.Set(f, true)
	case keystate.Release:
		return st.Set(f, false)
	default:
		return false
	}
}

func (d *Dispatcher) slotColor(s grid.Slot, highlight bool) (color.RGB, bool) {
	p := d.cfg.Palette
	if highlight {
		p = d.cfg.HighlightPalette
	}
	if int(s) >= len(p) {
		return color.RGB{}, false
	}
	return p[s], true
}

func expand(tmpl string, c color.RGB) string {
	return strings.NewReplacer("{hex}", c.Hex(), "{rgb}", c.Tuple()).Replace(tmpl)
}

func (d *Dispatcher) enqueue(s step) {
	if len(d.queue) >= d.cfg.QueueSize {
		d.logger.Warn("emission queue full, dropping oldest", "key", d.queue[0].key, "step", d.queue[0].String())
		d.queue = d.queue[1:]
	}
	d.queue = append(d.queue, s)
}

// Flush sends pending steps in order. It stops at the first failure and
// keeps that step for the next call. Flush ends a tick: the next Hold samples
// the host backlog again.
func (d *Dispatcher) Flush() error {
	d.sampled = false
	for len(d.queue) > 0 {
		s := d.queue[0]
		var err error
		if s.codes != nil {
			err = d.host.SendKeycode(s.codes...)
		} else {
			err = d.host.WriteText(s.text)
		}
		if err != nil {
			if !d.failing {
				d.logger.Warn("host emission failed, will retry", "key", s.key, "step", s.String(), "pending", len(d.queue), "error", err)
			}
			d.failing = true
			return err
		}
		if d.failing {
			d.logger.Info("host emission recovered", "pending", len(d.queue)-1)
			d.failing = false
		}
		d.logger.Debug("emitted", "key", s.key, "step", s.String())
		d.queue[0] = step{}
		d.queue = d.queue[1:]
	}
	return nil
}

// Pending returns the number of queued steps.
func (d *Dispatcher) Pending() int { return len(d.queue) }
