// Package launchpad drives a Novation Launchpad X in programmer mode as the
// keypad. The keypad occupies the bottom-left pads of the 8x8 grid.
package launchpad

import (
	"fmt"
	"log/slog"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/grid"
)

// DefaultPort matches the MIDI port of a Launchpad X.
const DefaultPort = "LPX MIDI"

const gridSize = 8

// Launchpad X SysEx header: F0 00 20 29 02 0C ...
var sysexHeader = []byte{0x00, 0x20, 0x29, 0x02, 0x0C}

func sysex(cmd ...byte) gomidi.Message {
	return gomidi.SysEx(append(append([]byte(nil), sysexHeader...), cmd...))
}

// Panel is a keypad Source and LED sink backed by a Launchpad.
type Panel struct {
	grid   grid.Grid
	send   func(gomidi.Message) error
	stop   func()
	logger *slog.Logger

	mu      sync.Mutex
	down    []bool
	pressed []bool
}

// Open finds the in and out ports containing port, switches the device to
// programmer mode and starts listening for pads.
func Open(port string, g grid.Grid, logger *slog.Logger) (*Panel, error) {
	if port == "" {
		port = DefaultPort
	}
	in, err := gomidi.FindInPort(port)
	if err != nil {
		return nil, fmt.Errorf("find midi in port %q: %w", port, err)
	}
	out, err := gomidi.FindOutPort(port)
	if err != nil {
		return nil, fmt.Errorf("find midi out port %q: %w", port, err)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	p, err := newPanel(g, send, logger)
	if err != nil {
		return nil, err
	}
	// Programmer mode, full brightness.
	if err := p.send(sysex(0x0E, 0x01)); err != nil {
		return nil, fmt.Errorf("programmer mode: %w", err)
	}
	_ = p.send(sysex(0x08, 0x7F))

	stop, err := gomidi.ListenTo(in, p.onMessage)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	p.stop = stop
	logger.Info("launchpad opened", "in", in.String(), "out", out.String())
	return p, nil
}

func newPanel(g grid.Grid, send func(gomidi.Message) error, logger *slog.Logger) (*Panel, error) {
	if g.Rows > gridSize || g.Cols > gridSize {
		return nil, fmt.Errorf("%dx%d keypad does not fit the 8x8 launchpad grid", g.Rows, g.Cols)
	}
	return &Panel{
		grid:    g,
		send:    send,
		logger:  logger,
		down:    make([]bool, g.Len()),
		pressed: make([]bool, g.Len()),
	}, nil
}

// Note returns the pad note of key i. Row 0 of the keypad is its top row.
func (p *Panel) Note(i int) (uint8, bool) {
	c, ok := p.grid.Coordinate(i)
	if !ok {
		return 0, false
	}
	row := p.grid.Rows - 1 - c.Row
	return uint8((row+1)*10 + c.Col + 1), true
}

// Key returns the keypad index of a pad note.
func (p *Panel) Key(note uint8) (int, bool) {
	row, col := int(note/10)-1, int(note%10)-1
	if row < 0 || row >= p.grid.Rows || col < 0 || col >= p.grid.Cols {
		return 0, false
	}
	return p.grid.Index(grid.Coordinate{Row: p.grid.Rows - 1 - row, Col: col})
}

func (p *Panel) onMessage(msg gomidi.Message, _ int32) {
	var ch, note, vel uint8
	var down bool
	switch {
	case msg.GetNoteOn(&ch, &note, &vel):
		down = vel > 0
	case msg.GetNoteOff(&ch, &note, &vel):
		down = false
	default:
		return
	}
	i, ok := p.Key(note)
	if !ok {
		return
	}
	p.mu.Lock()
	p.down[i] = down
	p.mu.Unlock()
}

// Update snapshots the pad state for one tick.
func (p *Panel) Update() error {
	p.mu.Lock()
	copy(p.pressed, p.down)
	p.mu.Unlock()
	return nil
}

func (p *Panel) Pressed(i int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return i >= 0 && i < len(p.pressed) && p.pressed[i]
}

// SetLED sets the pad colour with an RGB lighting SysEx. Channels are
// scaled to the device's 0-127 range.
func (p *Panel) SetLED(i int, c color.RGB) error {
	note, ok := p.Note(i)
	if !ok {
		return fmt.Errorf("led %d out of range", i)
	}
	return p.send(sysex(0x03, 0x03, note, c.R>>1, c.G>>1, c.B>>1))
}

func (p *Panel) LEDOff(i int) error {
	return p.SetLED(i, color.Off)
}

// Close turns the keypad pads off and stops listening.
func (p *Panel) Close() error {
	for i := 0; i < p.grid.Len(); i++ {
		if err := p.LEDOff(i); err != nil {
			p.logger.Debug("led off failed", "key", i, "error", err)
		}
	}
	if p.stop != nil {
		p.stop()
	}
	gomidi.CloseDriver()
	return nil
}
