package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/Alia5/padlight/internal/host"
	"github.com/Alia5/padlight/internal/layout"
	"github.com/Alia5/padlight/internal/log"
	"github.com/Alia5/padlight/internal/panel/gpio"
	"github.com/Alia5/padlight/internal/panel/launchpad"
	"github.com/Alia5/padlight/internal/panel/sim"
	"github.com/Alia5/padlight/keypad"
)

// ViiperConfig selects the VIIPER server and bus for the viiper host.
type ViiperConfig struct {
	Addr     string `help:"VIIPER API server address" default:"localhost:3242" env:"PADLIGHT_VIIPER_ADDR"`
	Password string `help:"VIIPER API password" env:"PADLIGHT_VIIPER_PASSWORD"`
	Bus      uint32 `help:"Bus to attach the keyboard to; 0 uses the first bus or creates one" default:"0" env:"PADLIGHT_VIIPER_BUS"`
}

// HidgConfig names the USB gadget device of the hidg host.
type HidgConfig struct {
	Device string `help:"HID gadget device" default:"/dev/hidg0" env:"PADLIGHT_HIDG_DEVICE"`
}

// GpioConfig maps keys to GPIO lines for the gpio panel.
type GpioConfig struct {
	Chip  string `help:"GPIO chip" default:"gpiochip0" env:"PADLIGHT_GPIO_CHIP"`
	Lines []int  `help:"GPIO line offset of each key, in key order" env:"PADLIGHT_GPIO_LINES"`
}

// LaunchpadConfig names the MIDI port of the launchpad panel.
type LaunchpadConfig struct {
	Port string `help:"MIDI port name (substring match)" default:"LPX MIDI" env:"PADLIGHT_LAUNCHPAD_PORT"`
}

// Run is the keypad controller command.
type Run struct {
	Layout         string        `help:"Built-in layout name or layout file" default:"bma" env:"PADLIGHT_LAYOUT"`
	Panel          string        `help:"Key and LED hardware" enum:"sim,launchpad,gpio" default:"sim" env:"PADLIGHT_PANEL"`
	Host           string        `help:"Keystroke destination" enum:"viiper,hidg,log" default:"log" env:"PADLIGHT_HOST"`
	PollInterval   time.Duration `help:"Override the layout poll interval; 0 keeps it" default:"0s" env:"PADLIGHT_POLL_INTERVAL"`
	ReportInterval time.Duration `help:"Delay between HID reports" default:"8ms" env:"PADLIGHT_REPORT_INTERVAL"`

	Viiper    ViiperConfig    `embed:"" prefix:"viiper."`
	Hidg      HidgConfig      `embed:"" prefix:"hidg."`
	Gpio      GpioConfig      `embed:"" prefix:"gpio."`
	Launchpad LaunchpadConfig `embed:"" prefix:"launchpad."`
}

// panel is a key source and LED sink that owns hardware.
type panel interface {
	keypad.Source
	keypad.LEDs
	io.Closer
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, reports log.ReportLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, reports)
}

// Start runs the controller until ctx ends or the panel asks to quit.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, reports log.ReportLogger) error {
	cfg, name, err := r.loadLayout()
	if err != nil {
		return err
	}

	w, err := r.openWriter(ctx, logger)
	if err != nil {
		return err
	}
	h := host.New(r.Host, w, host.Options{ReportInterval: r.ReportInterval, Reports: reports}, logger)
	defer func() {
		if err := h.Close(); err != nil {
			logger.Warn("closing host", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p, err := r.openPanel(ctx, cancel, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("closing panel", "error", err)
		}
	}()

	ctrl, err := keypad.New(cfg, p, p, h, logger)
	if err != nil {
		return err
	}
	logger.Info("padlight running", "layout", name, "panel", r.Panel, "host", r.Host, "keys", cfg.KeyCount)
	err = ctrl.Run(ctx)
	logger.Info("padlight stopped")
	return err
}

func (r *Run) loadLayout() (keypad.Config, string, error) {
	f, err := layout.Resolve(r.Layout)
	if err != nil {
		return keypad.Config{}, "", err
	}
	cfg, err := f.Config()
	if err != nil {
		return keypad.Config{}, "", fmt.Errorf("layout %s: %w", r.Layout, err)
	}
	if r.PollInterval > 0 {
		cfg.PollInterval = r.PollInterval
	}
	name := f.Name
	if name == "" {
		name = r.Layout
	}
	return cfg, name, nil
}

func (r *Run) openWriter(ctx context.Context, logger *slog.Logger) (host.Writer, error) {
	switch r.Host {
	case "viiper":
		return host.OpenViiper(ctx, host.ViiperOptions{
			Addr:     r.Viiper.Addr,
			Password: r.Viiper.Password,
			BusID:    r.Viiper.Bus,
		}, logger.With("host", "viiper"))
	case "hidg":
		return host.OpenHidg(r.Hidg.Device)
	case "log", "":
		return host.NewLogWriter(logger.With("host", "log")), nil
	default:
		return nil, fmt.Errorf("unknown host %q", r.Host)
	}
}

func (r *Run) openPanel(ctx context.Context, cancel context.CancelFunc, cfg keypad.Config, logger *slog.Logger) (panel, error) {
	switch r.Panel {
	case "sim", "":
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, errors.New("sim panel needs a terminal")
		}
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		p, err := sim.New(screen, cfg.Grid(), logger)
		if err != nil {
			return nil, err
		}
		go p.Run(ctx)
		go func() {
			select {
			case <-p.Done():
				cancel()
			case <-ctx.Done():
			}
		}()
		return p, nil
	case "launchpad":
		return launchpad.Open(r.Launchpad.Port, cfg.Grid(), logger)
	case "gpio":
		if len(r.Gpio.Lines) != cfg.KeyCount {
			return nil, fmt.Errorf("gpio: %d lines configured for %d keys", len(r.Gpio.Lines), cfg.KeyCount)
		}
		return gpio.Open(r.Gpio.Chip, r.Gpio.Lines, logger)
	default:
		return nil, fmt.Errorf("unknown panel %q", r.Panel)
	}
}
