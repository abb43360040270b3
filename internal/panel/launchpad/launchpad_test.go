package launchpad

import (
	"io"
	"log/slog"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/grid"
)

func newTestPanel(t *testing.T) (*Panel, *[]gomidi.Message) {
	t.Helper()
	var sent []gomidi.Message
	p, err := newPanel(grid.Square(4), func(m gomidi.Message) error {
		sent = append(sent, m)
		return nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return p, &sent
}

func TestNoteMapping(t *testing.T) {
	p, _ := newTestPanel(t)
	tests := []struct {
		key  int
		note uint8
	}{
		{key: 0, note: 41},
		{key: 3, note: 44},
		{key: 12, note: 11},
		{key: 15, note: 14},
	}
	for _, tt := range tests {
		note, ok := p.Note(tt.key)
		require.True(t, ok)
		assert.Equal(t, tt.note, note, "key %d", tt.key)
		key, ok := p.Key(tt.note)
		require.True(t, ok)
		assert.Equal(t, tt.key, key)
	}

	_, ok := p.Note(16)
	assert.False(t, ok)
	for _, note := range []uint8{15, 51, 19, 91, 0} {
		_, ok := p.Key(note)
		assert.False(t, ok, "note %d", note)
	}
}

func TestPadsDriveKeys(t *testing.T) {
	p, _ := newTestPanel(t)

	p.onMessage(gomidi.NoteOn(0, 41, 100), 0)
	p.onMessage(gomidi.NoteOn(0, 14, 20), 0)
	p.onMessage(gomidi.NoteOn(0, 88, 100), 0)
	assert.False(t, p.Pressed(0), "state changes only on Update")
	require.NoError(t, p.Update())
	assert.True(t, p.Pressed(0))
	assert.True(t, p.Pressed(15))

	p.onMessage(gomidi.NoteOn(0, 41, 0), 0)
	p.onMessage(gomidi.NoteOff(0, 14), 0)
	require.NoError(t, p.Update())
	assert.False(t, p.Pressed(0))
	assert.False(t, p.Pressed(15))
}

func TestSetLEDSendsRGBSysEx(t *testing.T) {
	p, sent := newTestPanel(t)
	require.NoError(t, p.SetLED(0, color.RGB{R: 255, G: 102, B: 204}))
	require.NoError(t, p.LEDOff(15))
	require.Len(t, *sent, 2)

	assert.Equal(t, []byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x0C, 0x03, 0x03, 41, 127, 51, 102, 0xF7}, (*sent)[0].Bytes())
	assert.Equal(t, []byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x0C, 0x03, 0x03, 14, 0, 0, 0, 0xF7}, (*sent)[1].Bytes())
	assert.Error(t, p.SetLED(16, color.Off))
}

func TestGridTooLarge(t *testing.T) {
	_, err := newPanel(grid.Square(9), nil, slog.Default())
	assert.ErrorContains(t, err, "does not fit")
}
