package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/grid"
	"github.com/Alia5/padlight/internal/configpaths"
	"github.com/Alia5/padlight/internal/layout"
	"github.com/Alia5/padlight/keypad"
	"github.com/Alia5/padlight/mode"
	"github.com/Alia5/padlight/render"
)

// LayoutCommand groups layout subcommands.
type LayoutCommand struct {
	Init LayoutInit `cmd:"" help:"Write a built-in layout to a file for editing"`
	Show LayoutShow `cmd:"" help:"Preview the LED colours of a layout"`
}

type LayoutInit struct {
	Name   string `arg:"" optional:"" help:"Built-in layout" default:"bma"`
	Format string `help:"Output format" enum:"json,yaml,toml" default:"yaml"`
	Output string `help:"Destination file path (defaults to <name>.<ext> in the current directory)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

func (l *LayoutInit) Run() error {
	f, err := layout.Builtin(l.Name)
	if err != nil {
		return err
	}
	format := normalizeFormat(l.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", l.Format)
	}
	data, err := layout.Encode(f, format)
	if err != nil {
		return err
	}
	dest := l.Output
	if dest == "" {
		dest = l.Name + "." + configpaths.Ext(format)
	}
	return writeNew(dest, data, l.Force)
}

type LayoutShow struct {
	Layout string `arg:"" optional:"" help:"Built-in layout name or layout file" default:"bma"`

	out io.Writer `kong:"-"`
}

func (l *LayoutShow) Run() error {
	f, err := layout.Resolve(l.Layout)
	if err != nil {
		return err
	}
	cfg, err := f.Config()
	if err != nil {
		return err
	}
	out := l.out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintln(out, preview(cfg))
	return err
}

// preview draws the idle frame of cfg in normal and highlight mode side by
// side, with each key's calibrated colour as hex.
func preview(cfg keypad.Config) string {
	r := render.New(cfg.RenderConfig())
	var indicator color.RGB
	if len(cfg.CycleColors) > 0 {
		indicator = cfg.CycleColors[0]
	}
	normal := r.Frame(cfg.KeyCount, render.State{Indicator: indicator})
	high := r.Frame(cfg.KeyCount, render.State{Mode: mode.State{Highlight: true}, Indicator: indicator})

	g := cfg.Grid()
	title := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	block := func(name string, f render.Frame) string {
		return lipgloss.JoinVertical(lipgloss.Left, title.Render(name), drawFrame(g, f, cfg))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		block("normal", normal),
		lipgloss.NewStyle().PaddingLeft(4).Render(block("highlight", high)))
}

func drawFrame(g grid.Grid, f render.Frame, cfg keypad.Config) string {
	rows := make([]string, 0, g.Rows)
	for row := 0; row < g.Rows; row++ {
		cells := make([]string, 0, g.Cols)
		for col := 0; col < g.Cols; col++ {
			i, _ := g.Index(grid.Coordinate{Row: row, Col: col})
			cells = append(cells, drawKey(i, f, cfg))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func drawKey(i int, f render.Frame, cfg keypad.Config) string {
	style := lipgloss.NewStyle().Width(8).Align(lipgloss.Center).MarginRight(1)
	if i >= len(f) {
		return style.Render("")
	}
	label := roleLabel(i, cfg)
	led := f[i]
	if !led.On {
		if label == "" {
			label = "off"
		}
		return style.Foreground(lipgloss.Color("#555555")).Render(label)
	}
	if label == "" {
		label = led.Color.Hex()
	}
	fg := "#000000"
	if int(led.Color.R)+int(led.Color.G)+int(led.Color.B) < 200 {
		fg = "#ffffff"
	}
	return style.Background(lipgloss.Color(led.Color.String())).Foreground(lipgloss.Color(fg)).Render(label)
}

func roleLabel(i int, cfg keypad.Config) string {
	var roles []string
	if i == cfg.HighlightKey {
		roles = append(roles, "hl")
	}
	if i == cfg.SuppressKey {
		roles = append(roles, "sup")
	}
	if i == cfg.IndicatorKey {
		roles = append(roles, "ind")
	}
	return strings.Join(roles, "/")
}
