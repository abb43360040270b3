package host_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/device/keyboard"
	"github.com/Alia5/padlight/dispatch"
	"github.com/Alia5/padlight/grid"
	"github.com/Alia5/padlight/internal/host"
	"github.com/Alia5/padlight/internal/log"
	"github.com/Alia5/padlight/keystate"
	"github.com/Alia5/padlight/mode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	states []keyboard.InputState
	fail   int
	calls  int
	closed bool
}

func (w *recordingWriter) WriteReport(st keyboard.InputState) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.fail > 0 {
		w.fail--
		return nil, errors.New("endpoint stalled")
	}
	w.states = append(w.states, st)
	return st.MarshalBinary()
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *recordingWriter) written() []keyboard.InputState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]keyboard.InputState(nil), w.states...)
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func fastOptions() host.Options {
	return host.Options{ReportInterval: time.Millisecond, RetryDelay: time.Millisecond}
}

func TestSendKeycodeWritesChordThenRelease(t *testing.T) {
	w := &recordingWriter{}
	h := host.New("test", w, fastOptions(), quietLogger())
	defer h.Close()

	require.NoError(t, h.SendKeycode(keyboard.KeyLeftAlt, keyboard.Key3))
	assert.Eventually(t, func() bool { return len(w.written()) == 2 }, time.Second, time.Millisecond)

	got := w.written()
	assert.Equal(t, keyboard.Chord(keyboard.KeyLeftAlt, keyboard.Key3), got[0])
	assert.True(t, got[1].IsReleased())
	assert.Equal(t, "test", h.Name())
}

func TestWriteText(t *testing.T) {
	w := &recordingWriter{}
	h := host.New("test", w, fastOptions(), quietLogger())
	defer h.Close()

	require.NoError(t, h.WriteText("ff"))
	assert.Eventually(t, func() bool { return len(w.written()) == 4 }, time.Second, time.Millisecond)
	want, err := keyboard.TypeString("ff")
	require.NoError(t, err)
	assert.Equal(t, want, w.written())

	assert.Error(t, h.WriteText("é"))
}

func TestBusyWhenEmissionDoesNotFit(t *testing.T) {
	opts := fastOptions()
	opts.QueueSize = 1
	w := &recordingWriter{}
	h := host.New("test", w, opts, quietLogger())
	defer h.Close()

	assert.ErrorIs(t, h.SendKeycode(keyboard.KeyA), host.ErrBusy)
	assert.Equal(t, 0, h.Pending())
}

func TestFailedWritesRetryInOrder(t *testing.T) {
	w := &recordingWriter{fail: 3}
	var reports bytes.Buffer
	opts := fastOptions()
	opts.Reports = log.NewReport(&reports)
	h := host.New("test", w, opts, quietLogger())
	defer h.Close()

	require.NoError(t, h.SendKeycode(keyboard.KeyA))
	require.NoError(t, h.SendKeycode(keyboard.KeyB))
	assert.Eventually(t, func() bool { return len(w.written()) == 4 }, time.Second, time.Millisecond)

	got := w.written()
	assert.Equal(t, []uint8{keyboard.KeyA}, got[0].Keys())
	assert.Equal(t, []uint8{keyboard.KeyB}, got[2].Keys())
	assert.Contains(t, reports.String(), "test report: 3 bytes, hex: 00 01 04")
}

func TestCloseReleasesAndClosesWriter(t *testing.T) {
	w := &recordingWriter{}
	h := host.New("test", w, fastOptions(), quietLogger())
	require.NoError(t, h.SendKeycode(keyboard.KeyA))
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	got := w.written()
	require.NotEmpty(t, got)
	assert.True(t, got[len(got)-1].IsReleased())
	assert.Contains(t, got, keyboard.Chord(keyboard.KeyA))
	assert.True(t, w.closed)
	assert.Error(t, h.SendKeycode(keyboard.KeyA))
}

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	w := host.NewLogWriter(slog.New(slog.NewTextHandler(&buf, nil)))
	report, err := w.WriteReport(keyboard.Chord(keyboard.KeyLeftAlt, keyboard.Key3))
	require.NoError(t, err)
	assert.Equal(t, []byte{keyboard.ModLeftAlt, 1, keyboard.Key3}, report)
	assert.Contains(t, buf.String(), "LEFT_ALT+")
	require.NoError(t, w.Close())
}

func TestHeldRepeatKeepsUpWithWriter(t *testing.T) {
	w := &recordingWriter{}
	h := host.New("test", w, host.Options{}, quietLogger())
	t.Cleanup(func() { _ = h.Close() })

	d := dispatch.New(dispatch.Config{
		Slots:            grid.SlotMap{0, 0},
		Actions:          []dispatch.Action{{}, {Keycodes: []uint8{keyboard.KeyLeft}}},
		Palette:          []color.RGB{color.Red},
		HighlightPalette: []color.RGB{color.Red},
		HighlightKey:     dispatch.NoKey,
		SuppressKey:      dispatch.NoKey,
		IndicatorKey:     dispatch.NoKey,
		RepeatKeys:       []int{1},
	}, h, quietLogger())

	var st mode.State
	maxPending := 0
	d.Dispatch(1, keystate.Press, &st)
	for i := 0; i < 40; i++ {
		require.NoError(t, d.Flush())
		maxPending = max(maxPending, h.Pending())
		time.Sleep(10 * time.Millisecond)
		d.Dispatch(1, keystate.Hold, &st)
	}
	d.Dispatch(1, keystate.Release, &st)
	require.NoError(t, d.Flush())

	assert.LessOrEqual(t, maxPending, 2, "at most one tap is buffered")
	require.Eventually(t, func() bool { return h.Pending() == 0 }, 100*time.Millisecond, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	got := w.written()
	require.NotEmpty(t, got)
	assert.Equal(t, keyboard.Release(), got[len(got)-1])
	presses := 0
	for _, report := range got {
		if !report.IsReleased() {
			presses++
		}
	}
	assert.GreaterOrEqual(t, presses, 5, "held key kept repeating")
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, w.written(), len(got), "writer is idle after release")
}
