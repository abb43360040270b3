package sim

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/grid"
)

func newTestPanel(t *testing.T) (*Panel, tcell.SimulationScreen, *time.Time) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	p, err := New(screen, grid.Square(4), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	now := time.Unix(1000, 0)
	p.now = func() time.Time { return now }
	return p, screen, &now
}

func pressedKeys(p *Panel) []int {
	var out []int
	for i := 0; i < 16; i++ {
		if p.Pressed(i) {
			out = append(out, i)
		}
	}
	return out
}

func TestKeyboardTaps(t *testing.T) {
	p, _, now := newTestPanel(t)

	p.handle(tcell.NewEventKey(tcell.KeyRune, '1', tcell.ModNone))
	p.handle(tcell.NewEventKey(tcell.KeyRune, 'V', tcell.ModNone))
	require.NoError(t, p.Update())
	assert.Equal(t, []int{0, 15}, pressedKeys(p))

	*now = now.Add(TapDuration / 2)
	p.handle(tcell.NewEventKey(tcell.KeyRune, '1', tcell.ModNone))
	*now = now.Add(TapDuration / 2)
	require.NoError(t, p.Update())
	assert.Equal(t, []int{0}, pressedKeys(p), "auto-repeat extends the hold")

	*now = now.Add(TapDuration)
	require.NoError(t, p.Update())
	assert.Empty(t, pressedKeys(p))
}

func TestRunesOutsideGrid(t *testing.T) {
	p, _, _ := newTestPanel(t)
	p.handle(tcell.NewEventKey(tcell.KeyRune, '5', tcell.ModNone))
	p.handle(tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModNone))
	require.NoError(t, p.Update())
	assert.Empty(t, pressedKeys(p))
}

func TestMousePressAndRelease(t *testing.T) {
	p, _, _ := newTestPanel(t)

	// Inside the cell of row 1, column 1.
	x, y := originX+(cellW+1)+1, originY+(cellH+1)+1
	p.handle(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	require.NoError(t, p.Update())
	assert.Equal(t, []int{5}, pressedKeys(p))

	// Dragging keeps the first key.
	p.handle(tcell.NewEventMouse(originX, originY, tcell.Button1, tcell.ModNone))
	require.NoError(t, p.Update())
	assert.Equal(t, []int{5}, pressedKeys(p))

	p.handle(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
	require.NoError(t, p.Update())
	assert.Empty(t, pressedKeys(p))

	// The gap between cells is not a key.
	p.handle(tcell.NewEventMouse(originX+cellW, originY, tcell.Button1, tcell.ModNone))
	require.NoError(t, p.Update())
	assert.Empty(t, pressedKeys(p))
}

func TestQuitKeys(t *testing.T) {
	p, _, _ := newTestPanel(t)
	p.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	p.handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	select {
	case <-p.Done():
	default:
		t.Fatal("escape did not quit")
	}
	// Run returns at once after quitting.
	p.Run(context.Background())
}

func TestLEDs(t *testing.T) {
	p, screen, _ := newTestPanel(t)
	pink := color.RGB{R: 255, G: 102, B: 204}

	require.NoError(t, p.SetLED(3, pink))
	c, lit := p.LED(3)
	assert.True(t, lit)
	assert.Equal(t, pink, c)

	require.NoError(t, p.LEDOff(3))
	_, lit = p.LED(3)
	assert.False(t, lit)
	assert.Error(t, p.SetLED(16, pink))

	cells, w, _ := screen.GetContents()
	label := cells[(originY+cellH/2)*w+originX+cellW/2]
	assert.Equal(t, []rune{'1'}, label.Runes)
}

func TestPumpStopsWhenNobodyReads(t *testing.T) {
	p, screen, _ := newTestPanel(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tcell.Event)
	done := make(chan struct{})
	go func() {
		p.pump(ctx, events)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event pump still blocked after cancel")
	}
	_, ok := <-events
	assert.False(t, ok, "events is closed")
}
