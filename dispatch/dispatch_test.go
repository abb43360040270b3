package dispatch_test

import (
	"testing"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/device/keyboard"
	"github.com/Alia5/padlight/dispatch"
	"github.com/Alia5/padlight/grid"
	th "github.com/Alia5/padlight/internal/testing"
	"github.com/Alia5/padlight/keystate"
	"github.com/Alia5/padlight/mode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(t *testing.T, actions []dispatch.Action, format dispatch.TextFormat) (*dispatch.Dispatcher, *th.Host) {
	t.Helper()
	host := &th.Host{}
	return dispatch.New(dispatchConfig(actions, format), host, nil), host
}

func dispatchConfig(actions []dispatch.Action, format dispatch.TextFormat) dispatch.Config {
	return dispatch.Config{
		Slots:            grid.SlotMap{grid.NoSlot, 8, 4, 0, grid.NoSlot, 9, 5, 1, grid.NoSlot, 10, 6, 2, grid.NoSlot, 11, 7, 3},
		Actions:          actions,
		Palette:          color.BMA,
		HighlightPalette: color.BMAHighlights,
		HighlightKey:     0,
		SuppressKey:      4,
		IndicatorKey:     4,
		SuppressedText:   format,
		RepeatKeys:       []int{1, 2, 3},
		QueueSize:        4,
	}
}

// backlogHost reports two buffered reports for every chord it accepted.
type backlogHost struct {
	*th.Host
	pending int
}

func (b *backlogHost) SendKeycode(codes ...uint8) error {
	b.pending += 2
	return b.Host.SendKeycode(codes...)
}

func (b *backlogHost) Pending() int { return b.pending }

// key 15 carries slot 3
const slot3Key = 15

func TestSlotPressSendsKeycodeOnce(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[slot3Key] = dispatch.Action{Keycodes: []uint8{keyboard.KeyF}}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)

	var st mode.State
	d.Dispatch(slot3Key, keystate.Press, &st)
	require.NoError(t, d.Flush())
	assert.Equal(t, [][]uint8{{keyboard.KeyF}}, host.Codes)
	assert.Empty(t, host.Texts)

	d.Dispatch(slot3Key, keystate.Release, &st)
	require.NoError(t, d.Flush())
	assert.Len(t, host.Codes, 1)
}

func TestSuppressedPressWritesHex(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[slot3Key] = dispatch.Action{Keycodes: []uint8{keyboard.KeyF}}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)

	st := mode.State{Suppress: true}
	d.Dispatch(slot3Key, keystate.Press, &st)
	require.NoError(t, d.Flush())
	assert.Empty(t, host.Codes)
	assert.Equal(t, []string{color.BMA[3].Hex()}, host.Texts)
}

func TestSuppressedTupleUsesActivePalette(t *testing.T) {
	d, host := newDispatcher(t, make([]dispatch.Action, 16), dispatch.FormatTuple)

	st := mode.State{Suppress: true, Highlight: true}
	d.Dispatch(3, keystate.Press, &st)
	require.NoError(t, d.Flush())
	assert.Equal(t, []string{color.BMAHighlights[0].Tuple()}, host.Texts)
}

func TestChordThenTemplate(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[3] = dispatch.Action{Keycodes: []uint8{keyboard.KeyLeftAlt, keyboard.Key3}, Text: "{hex}"}
	actions[7] = dispatch.Action{Text: "rgb{rgb}"}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)

	var st mode.State
	d.Dispatch(3, keystate.Press, &st)
	d.Dispatch(7, keystate.Press, &st)
	require.NoError(t, d.Flush())
	assert.Equal(t, []string{
		"keys e220",
		"text ff66cc",
		"text rgb(255, 153, 0)",
	}, host.Snapshot())
}

func TestModeKeys(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[0] = dispatch.Action{Keycodes: []uint8{keyboard.KeyA}}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)

	var st mode.State
	assert.True(t, d.Dispatch(0, keystate.Press, &st))
	assert.True(t, st.Highlight)
	assert.False(t, d.Dispatch(0, keystate.Hold, &st))
	assert.True(t, d.Dispatch(0, keystate.Release, &st))
	assert.False(t, st.Highlight)

	assert.True(t, d.Dispatch(4, keystate.Press, &st))
	assert.True(t, st.Suppress)
	assert.True(t, d.Dispatch(4, keystate.Release, &st))
	assert.False(t, st.Suppress)

	require.NoError(t, d.Flush())
	assert.Empty(t, host.Snapshot(), "mode keys never emit")
}

func TestNoSlotNeverDispatches(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[8] = dispatch.Action{Keycodes: []uint8{keyboard.KeyA}}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)
	var st mode.State
	d.Dispatch(8, keystate.Press, &st)
	d.Dispatch(99, keystate.Press, &st)
	require.NoError(t, d.Flush())
	assert.Empty(t, host.Snapshot())
}

func TestHoldRepeats(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[1] = dispatch.Action{Keycodes: []uint8{keyboard.KeyLeft}}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)

	var st mode.State
	d.Dispatch(1, keystate.Press, &st)
	require.NoError(t, d.Flush())
	d.Dispatch(1, keystate.Hold, &st)
	require.NoError(t, d.Flush())
	d.Dispatch(1, keystate.Hold, &st)
	require.NoError(t, d.Flush())
	assert.Len(t, host.Codes, 3)

	st.Suppress = true
	d.Dispatch(1, keystate.Hold, &st)
	require.NoError(t, d.Flush())
	assert.Len(t, host.Codes, 3, "suppressed holds emit nothing")
}

func TestHoldRepeatsEveryHeldKey(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[1] = dispatch.Action{Keycodes: []uint8{keyboard.KeyLeft}}
	actions[2] = dispatch.Action{Keycodes: []uint8{keyboard.KeySpace}}
	actions[5] = dispatch.Action{Keycodes: []uint8{keyboard.KeyA}}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)

	var st mode.State
	for i := 0; i < 3; i++ {
		d.Dispatch(1, keystate.Hold, &st)
		d.Dispatch(2, keystate.Hold, &st)
		d.Dispatch(5, keystate.Hold, &st)
		require.NoError(t, d.Flush())
	}
	assert.Equal(t, [][]uint8{
		{keyboard.KeyLeft}, {keyboard.KeySpace},
		{keyboard.KeyLeft}, {keyboard.KeySpace},
		{keyboard.KeyLeft}, {keyboard.KeySpace},
	}, host.Codes, "keys outside RepeatKeys do not repeat")
}

func TestHoldWaitsForHostBacklog(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[1] = dispatch.Action{Keycodes: []uint8{keyboard.KeyLeft}}
	actions[2] = dispatch.Action{Keycodes: []uint8{keyboard.KeySpace}}
	host := &backlogHost{Host: &th.Host{}}
	d := dispatch.New(dispatchConfig(actions, dispatch.FormatHex), host, nil)

	var st mode.State
	hold := func() {
		d.Dispatch(1, keystate.Hold, &st)
		d.Dispatch(2, keystate.Hold, &st)
		require.NoError(t, d.Flush())
	}

	hold()
	assert.Len(t, host.Codes, 2, "both keys repeat while the host is idle")
	hold()
	assert.Len(t, host.Codes, 2, "no repeat while reports are buffered")

	host.pending = 0
	hold()
	assert.Len(t, host.Codes, 4)
}

func TestReleaseDropsQueuedRepeats(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[1] = dispatch.Action{Keycodes: []uint8{keyboard.KeyLeft}}
	actions[2] = dispatch.Action{Keycodes: []uint8{keyboard.KeyB}}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)

	var st mode.State
	host.Fail(100)
	d.Dispatch(2, keystate.Press, &st)
	d.Dispatch(1, keystate.Hold, &st)
	assert.ErrorIs(t, d.Flush(), th.ErrInjected)
	assert.Equal(t, 2, d.Pending())

	d.Dispatch(1, keystate.Release, &st)
	d.Dispatch(2, keystate.Release, &st)
	assert.Equal(t, 1, d.Pending(), "presses survive their release")

	host.Fail(0)
	require.NoError(t, d.Flush())
	assert.Equal(t, [][]uint8{{keyboard.KeyB}}, host.Codes)
}

func TestRetryKeepsOrder(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	actions[1] = dispatch.Action{Keycodes: []uint8{keyboard.KeyA}}
	actions[2] = dispatch.Action{Keycodes: []uint8{keyboard.KeyB}}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)

	var st mode.State
	host.Fail(2)
	d.Dispatch(1, keystate.Press, &st)
	assert.ErrorIs(t, d.Flush(), th.ErrInjected)
	d.Dispatch(2, keystate.Press, &st)
	assert.ErrorIs(t, d.Flush(), th.ErrInjected)
	assert.Equal(t, 2, d.Pending())

	d.Dispatch(1, keystate.Hold, &st)
	assert.Equal(t, 2, d.Pending(), "holds are not queued behind pending steps")

	require.NoError(t, d.Flush())
	assert.Equal(t, [][]uint8{{keyboard.KeyA}, {keyboard.KeyB}}, host.Codes)
	assert.Zero(t, d.Pending())
}

func TestQueueDropsOldest(t *testing.T) {
	actions := make([]dispatch.Action, 16)
	for i := range actions {
		actions[i] = dispatch.Action{Keycodes: []uint8{uint8(keyboard.KeyA + i)}}
	}
	d, host := newDispatcher(t, actions, dispatch.FormatHex)

	var st mode.State
	host.Fail(100)
	for _, k := range []int{1, 2, 3, 5, 6} {
		d.Dispatch(k, keystate.Press, &st)
	}
	assert.Equal(t, 4, d.Pending())

	host.Fail(0)
	require.NoError(t, d.Flush())
	assert.Equal(t, [][]uint8{{keyboard.KeyA + 2}, {keyboard.KeyA + 3}, {keyboard.KeyA + 5}, {keyboard.KeyA + 6}}, host.Codes)
}

func TestParseTextFormat(t *testing.T) {
	f, err := dispatch.ParseTextFormat("")
	require.NoError(t, err)
	assert.Equal(t, dispatch.FormatHex, f)
	f, err = dispatch.ParseTextFormat("Tuple")
	require.NoError(t, err)
	assert.Equal(t, dispatch.FormatTuple, f)
	assert.Equal(t, "tuple", f.String())
	_, err = dispatch.ParseTextFormat("csv")
	assert.Error(t, err)
}
