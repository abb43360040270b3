// Package gpio reads keypad switches wired to GPIO lines, one line per key,
// active low with pull-ups. It has no LEDs; frames are logged.
package gpio

import (
	"fmt"
	"log/slog"

	"github.com/warthog618/go-gpiocdev"

	"github.com/Alia5/padlight/color"
)

// DefaultChip is the first gpiochip.
const DefaultChip = "gpiochip0"

// Lines reads the values of a set of requested lines.
type Lines interface {
	Values(values []int) error
	Close() error
}

// Panel reads one key per GPIO line. It has no LEDs.
type Panel struct {
	lines   Lines
	values  []int
	pressed []bool
	logger  *slog.Logger
}

// Open requests offsets on chip as inputs. Offset i is key i.
func Open(chip string, offsets []int, logger *slog.Logger) (*Panel, error) {
	if chip == "" {
		chip = DefaultChip
	}
	lines, err := gpiocdev.RequestLines(chip, offsets,
		gpiocdev.AsInput,
		gpiocdev.AsActiveLow,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer("padlight"))
	if err != nil {
		return nil, fmt.Errorf("request lines %v on %s: %w", offsets, chip, err)
	}
	logger.Info("gpio keypad opened", "chip", chip, "lines", offsets)
	return New(lines, len(offsets), logger), nil
}

// New wraps already requested lines.
func New(lines Lines, n int, logger *slog.Logger) *Panel {
	return &Panel{
		lines:   lines,
		values:  make([]int, n),
		pressed: make([]bool, n),
		logger:  logger,
	}
}

// Update reads every line once. Lines are active low, so 1 means pressed.
func (p *Panel) Update() error {
	if err := p.lines.Values(p.values); err != nil {
		return fmt.Errorf("read lines: %w", err)
	}
	for i, v := range p.values {
		p.pressed[i] = v == 1
	}
	return nil
}

func (p *Panel) Pressed(i int) bool {
	return i >= 0 && i < len(p.pressed) && p.pressed[i]
}

func (p *Panel) SetLED(i int, c color.RGB) error {
	p.logger.Debug("led", "key", i, "color", c.String())
	return nil
}

func (p *Panel) LEDOff(i int) error {
	p.logger.Debug("led off", "key", i)
	return nil
}

func (p *Panel) Close() error {
	return p.lines.Close()
}
