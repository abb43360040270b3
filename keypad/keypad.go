// Package keypad runs the poll, classify, dispatch and render cycle of a key
// grid with per-key RGB LEDs.
package keypad

import (
	"context"
	"log/slog"
	"time"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/dispatch"
	"github.com/Alia5/padlight/keystate"
	"github.com/Alia5/padlight/mode"
	"github.com/Alia5/padlight/render"
)

// Source provides the physical key state. Update is called once per tick
// before any Pressed call of that tick.
type Source interface {
	Update() error
	Pressed(i int) bool
}

// LEDs drives the key lights.
type LEDs interface {
	SetLED(i int, c color.RGB) error
	LEDOff(i int) error
}

// Controller owns all keypad state. It is not safe for concurrent use; Run
// drives it from a single goroutine.
type Controller struct {
	cfg    Config
	src    Source
	leds   LEDs
	logger *slog.Logger

	classifier *keystate.Classifier
	dispatcher *dispatch.Dispatcher
	renderer   *render.Renderer
	cycler     *render.Cycler
	mode       mode.State

	events []keystate.Event
	phases []keystate.Phase
	frame  render.Frame
	shown  render.Frame
	synced []bool

	lastTick   time.Time
	started    bool
	srcFailing bool
	ledFailing bool
}

// New validates cfg and builds a controller. No I/O happens before the
// first Start or Tick.
func New(cfg Config, src Source, leds LEDs, host dispatch.Host, logger *slog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	n := cfg.KeyCount
	return &Controller{
		cfg:        cfg,
		src:        src,
		leds:       leds,
		logger:     logger,
		classifier: keystate.New(cfg.Timing()),
		dispatcher: dispatch.New(cfg.dispatchConfig(), host, logger.With("component", "dispatch")),
		renderer:   render.New(cfg.RenderConfig()),
		cycler:     render.NewCycler(cfg.CycleColors, cfg.CycleInterval),
		events:     make([]keystate.Event, n),
		phases:     make([]keystate.Phase, n),
		frame:      make(render.Frame, n),
		shown:      make(render.Frame, n),
		synced:     make([]bool, n),
	}, nil
}

// Start renders the initial frame and starts the indicator timer.
func (c *Controller) Start(now time.Time) {
	c.started = true
	c.lastTick = now
	c.cycler.Start(now)
	c.redraw()
}

// Tick runs one iteration of the loop at time now.
func (c *Controller) Tick(now time.Time) {
	if !c.started {
		c.Start(now)
	}
	dt := now.Sub(c.lastTick)
	if dt < 0 {
		dt = 0
	}
	c.lastTick = now

	dirty := c.poll(dt)
	_ = c.dispatcher.Flush()

	if c.cycler.Advance(now, c.mode.Suppress) {
		c.logger.Debug("indicator advanced", "phase", c.cycler.Phase(), "color", c.cycler.Color())
		dirty = true
	}
	if dirty || c.ledFailing {
		c.redraw()
	}
}

func (c *Controller) poll(dt time.Duration) bool {
	if err := c.src.Update(); err != nil {
		if !c.srcFailing {
			c.logger.Warn("key source update failed", "error", err)
		}
		c.srcFailing = true
		return false
	}
	if c.srcFailing {
		c.logger.Info("key source recovered")
		c.srcFailing = false
	}

	c.classifier.Update(c.src.Pressed, dt, c.events)

	dirty := false
	for i, ev := range c.events {
		if ev == keystate.None {
			continue
		}
		phase := c.classifier.Key(i).Phase
		if phase != c.phases[i] {
			c.phases[i] = phase
			dirty = true
		}
		if ev != keystate.Hold {
			c.logger.Debug("key event", "key", i, "event", ev, "slot", c.cfg.Slots.At(i))
		}
		if c.dispatcher.Dispatch(i, ev, &c.mode) {
			c.logger.Debug("mode changed", "highlight", c.mode.Highlight, "suppress", c.mode.Suppress)
			dirty = true
		}
	}
	return dirty
}

func (c *Controller) redraw() {
	c.renderer.Render(c.frame, render.State{
		Mode:      c.mode,
		Phases:    c.phases,
		Indicator: c.cycler.Color(),
	})
	c.apply()
}

// apply writes the entries of frame that differ from what the LEDs show.
func (c *Controller) apply() {
	failed := 0
	var lastErr error
	for i, want := range c.frame {
		if c.synced[i] && c.shown[i] == want {
			continue
		}
		var err error
		if want.On {
			err = c.leds.SetLED(i, want.Color)
		} else {
			err = c.leds.LEDOff(i)
		}
		if err != nil {
			c.synced[i] = false
			failed++
			lastErr = err
			continue
		}
		c.shown[i] = want
		c.synced[i] = true
	}
	if failed > 0 && !c.ledFailing {
		c.logger.Warn("led write failed, will retry", "failed", failed, "error", lastErr)
	}
	if failed == 0 && c.ledFailing {
		c.logger.Info("led writes recovered")
	}
	c.ledFailing = failed > 0
}

// Run ticks every PollInterval until ctx is cancelled, then sends pending
// emissions once more and switches every LED off.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	c.Start(time.Now())
	c.logger.Info("keypad running", "keys", c.cfg.KeyCount, "poll", c.cfg.PollInterval)
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case now := <-ticker.C:
			c.Tick(now)
		}
	}
}

func (c *Controller) shutdown() {
	if err := c.dispatcher.Flush(); err != nil {
		c.logger.Warn("dropping pending emissions", "pending", c.dispatcher.Pending(), "error", err)
	}
	for i := range c.frame {
		_ = c.leds.LEDOff(i)
	}
	c.logger.Info("keypad stopped")
}

// Mode returns the current modifier flags.
func (c *Controller) Mode() mode.State { return c.mode }

// Frame returns a copy of the last rendered frame.
func (c *Controller) Frame() render.Frame {
	out := make(render.Frame, len(c.frame))
	copy(out, c.frame)
	return out
}

// Pending returns the number of emissions waiting for the host.
func (c *Controller) Pending() int { return c.dispatcher.Pending() }
