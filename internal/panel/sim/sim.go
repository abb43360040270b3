// Package sim is a terminal stand-in for the keypad hardware. Keys are
// pressed with the mouse or with the keyboard rows 1234/qwer/asdf/zxcv, and
// LEDs are drawn as true-colour cells.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/grid"
)

// TapDuration is how long a keyboard tap holds a key. Terminals report no
// key release, so auto-repeat events extend the hold.
const TapDuration = 150 * time.Millisecond

const (
	cellW   = 7
	cellH   = 3
	originX = 2
	originY = 2
)

var keyRows = []string{"1234567890", "qwertyuiop", "asdfghjkl;", "zxcvbnm,./"}

// Panel is a keypad drawn on a terminal screen, played with the keyboard or
// the mouse.
type Panel struct {
	screen tcell.Screen
	grid   grid.Grid
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	mouseKey int
	until    []time.Time
	pressed  []bool
	leds     []color.RGB
	lit      []bool

	quit     chan struct{}
	quitOnce sync.Once
}

// New initialises screen and draws an unlit keypad of g's size.
func New(screen tcell.Screen, g grid.Grid, logger *slog.Logger) (*Panel, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	n := g.Len()
	p := &Panel{
		screen:   screen,
		grid:     g,
		logger:   logger,
		now:      time.Now,
		mouseKey: -1,
		until:    make([]time.Time, n),
		pressed:  make([]bool, n),
		leds:     make([]color.RGB, n),
		lit:      make([]bool, n),
		quit:     make(chan struct{}),
	}
	p.redraw()
	return p, nil
}

// Done is closed when the user asks to quit.
func (p *Panel) Done() <-chan struct{} { return p.quit }

// Run reads terminal events until ctx ends or the user quits.
func (p *Panel) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan tcell.Event, 64)
	go p.pump(ctx, events)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.handle(ev)
		}
	}
}

// pump forwards terminal events until the screen is finalised or ctx ends.
func (p *Panel) pump(ctx context.Context, events chan<- tcell.Event) {
	defer close(events)
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Close restores the terminal.
func (p *Panel) Close() error {
	p.screen.Fini()
	return nil
}

func (p *Panel) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			p.quitOnce.Do(func() { close(p.quit) })
			return
		}
		if ev.Key() != tcell.KeyRune {
			return
		}
		if i, ok := p.runeKey(ev.Rune()); ok {
			p.mu.Lock()
			p.until[i] = p.now().Add(TapDuration)
			p.mu.Unlock()
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		p.mu.Lock()
		if ev.Buttons()&tcell.Button1 != 0 {
			if p.mouseKey < 0 {
				if i, ok := p.keyAt(x, y); ok {
					p.mouseKey = i
				}
			}
		} else {
			p.mouseKey = -1
		}
		p.mu.Unlock()
	case *tcell.EventResize:
		p.screen.Sync()
		p.redraw()
	}
}

func (p *Panel) runeKey(r rune) (int, bool) {
	r = unicode.ToLower(r)
	for row := 0; row < p.grid.Rows && row < len(keyRows); row++ {
		col := strings.IndexRune(keyRows[row], r)
		if col < 0 || col >= p.grid.Cols {
			continue
		}
		return p.grid.Index(grid.Coordinate{Row: row, Col: col})
	}
	return 0, false
}

func (p *Panel) keyAt(x, y int) (int, bool) {
	if x < originX || y < originY {
		return 0, false
	}
	col, dx := (x-originX)/(cellW+1), (x-originX)%(cellW+1)
	row, dy := (y-originY)/(cellH+1), (y-originY)%(cellH+1)
	if dx == cellW || dy == cellH {
		return 0, false
	}
	return p.grid.Index(grid.Coordinate{Row: row, Col: col})
}

// Update snapshots the key state for one tick.
func (p *Panel) Update() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for i := range p.pressed {
		p.pressed[i] = i == p.mouseKey || now.Before(p.until[i])
	}
	return nil
}

func (p *Panel) Pressed(i int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return i >= 0 && i < len(p.pressed) && p.pressed[i]
}

func (p *Panel) SetLED(i int, c color.RGB) error {
	return p.set(i, c, true)
}

func (p *Panel) LEDOff(i int) error {
	return p.set(i, color.Off, false)
}

// LED returns the colour shown on key i and whether it is lit.
func (p *Panel) LED(i int) (color.RGB, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.leds) {
		return color.Off, false
	}
	return p.leds[i], p.lit[i]
}

func (p *Panel) set(i int, c color.RGB, on bool) error {
	p.mu.Lock()
	if i < 0 || i >= len(p.leds) {
		p.mu.Unlock()
		return fmt.Errorf("led %d out of range", i)
	}
	p.leds[i], p.lit[i] = c, on
	p.mu.Unlock()
	p.drawKey(i)
	p.screen.Show()
	return nil
}

func (p *Panel) redraw() {
	p.screen.Clear()
	title := "padlight: click or type keys, Esc quits"
	for x, r := range title {
		p.screen.SetContent(originX+x, 0, r, nil, tcell.StyleDefault)
	}
	for i := 0; i < p.grid.Len(); i++ {
		p.drawKey(i)
	}
	p.screen.Show()
}

func (p *Panel) drawKey(i int) {
	c, ok := p.grid.Coordinate(i)
	if !ok {
		return
	}
	p.mu.Lock()
	led, lit := p.leds[i], p.lit[i]
	p.mu.Unlock()

	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorGray)
	if lit {
		bg := tcell.NewRGBColor(int32(led.R), int32(led.G), int32(led.B))
		fg := tcell.ColorBlack
		if int(led.R)+int(led.G)+int(led.B) < 200 {
			fg = tcell.ColorWhite
		}
		style = tcell.StyleDefault.Background(bg).Foreground(fg)
	}
	x0 := originX + c.Col*(cellW+1)
	y0 := originY + c.Row*(cellH+1)
	label := []rune(p.label(c))
	for dy := 0; dy < cellH; dy++ {
		for dx := 0; dx < cellW; dx++ {
			r := ' '
			if dy == cellH/2 {
				if k := dx - (cellW-len(label))/2; k >= 0 && k < len(label) {
					r = label[k]
				}
			}
			p.screen.SetContent(x0+dx, y0+dy, r, nil, style)
		}
	}
}

func (p *Panel) label(c grid.Coordinate) string {
	if c.Row < len(keyRows) && c.Col < len(keyRows[c.Row]) {
		return string(keyRows[c.Row][c.Col])
	}
	return c.String()
}
