package keyboard_test

import (
	"testing"

	"github.com/Alia5/padlight/device/keyboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    uint8
		wantErr bool
	}{
		{in: "LEFT_ARROW", want: keyboard.KeyLeft},
		{in: "left-arrow", want: keyboard.KeyLeft},
		{in: "SHIFT", want: keyboard.KeyLeftShift},
		{in: "RIGHT_SHIFT", want: keyboard.KeyRightShift},
		{in: "alt", want: keyboard.KeyLeftAlt},
		{in: "THREE", want: keyboard.Key3},
		{in: "3", want: keyboard.Key3},
		{in: " space ", want: keyboard.KeySpace},
		{in: "0x2c", want: keyboard.KeySpace},
		{in: "0xzz", wantErr: true},
		{in: "HYPER", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := keyboard.ParseKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeys(t *testing.T) {
	codes, err := keyboard.ParseKeys([]string{"ALT", "THREE"})
	require.NoError(t, err)
	assert.Equal(t, []uint8{keyboard.KeyLeftAlt, keyboard.Key3}, codes)

	_, err = keyboard.ParseKeys([]string{"ALT", "NOPE"})
	assert.ErrorContains(t, err, "NOPE")
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, "LEFT_ARROW", keyboard.KeyName(keyboard.KeyLeft))
	assert.Equal(t, "THREE", keyboard.KeyName(keyboard.Key3))
	assert.Equal(t, "0x64", keyboard.KeyName(0x64))
	assert.Contains(t, keyboard.KeyNames(), "SPACE")
}

func TestChordFoldsModifiers(t *testing.T) {
	st := keyboard.Chord(keyboard.KeyLeftAlt, keyboard.Key3)
	assert.Equal(t, uint8(keyboard.ModLeftAlt), st.Modifiers)
	assert.Equal(t, []uint8{keyboard.Key3}, st.Keys())

	st = keyboard.Chord(keyboard.KeyRightShift)
	assert.Equal(t, uint8(keyboard.ModRightShift), st.Modifiers)
	assert.Empty(t, st.Keys())
	assert.False(t, st.IsReleased())
	assert.True(t, keyboard.Release().IsReleased())
}

func TestMarshalBinary(t *testing.T) {
	st := keyboard.PressKeyWithMod(keyboard.ModLeftShift, keyboard.KeyB, keyboard.KeyA)
	b, err := st.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{keyboard.ModLeftShift, 2, keyboard.KeyA, keyboard.KeyB}, b)

	rel := keyboard.Release()
	b, err = rel.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, b)
}

func TestBootReport(t *testing.T) {
	st := keyboard.PressKeyWithMod(keyboard.ModLeftCtrl, keyboard.KeyC)
	assert.Equal(t, [8]byte{keyboard.ModLeftCtrl, 0, keyboard.KeyC, 0, 0, 0, 0, 0}, st.BootReport())

	many := keyboard.Chord(keyboard.KeyA, keyboard.KeyB, keyboard.KeyC, keyboard.KeyD,
		keyboard.KeyE, keyboard.KeyF, keyboard.KeyG)
	r := many.BootReport()
	assert.Equal(t, [8]byte{0, 0, keyboard.KeyA, keyboard.KeyB, keyboard.KeyC, keyboard.KeyD, keyboard.KeyE, keyboard.KeyF}, r)
}

func TestTypeString(t *testing.T) {
	states, err := keyboard.TypeString("#a")
	require.NoError(t, err)
	require.Len(t, states, 4)
	assert.Equal(t, keyboard.PressKeyWithMod(keyboard.ModLeftShift, keyboard.Key3), states[0])
	assert.True(t, states[1].IsReleased())
	assert.Equal(t, keyboard.Chord(keyboard.KeyA), states[2])
	assert.True(t, states[3].IsReleased())

	states, err = keyboard.TypeString("(255, 102, 204)")
	require.NoError(t, err)
	assert.Len(t, states, 30)

	_, err = keyboard.TypeString("é")
	assert.Error(t, err)
}

func TestTap(t *testing.T) {
	states := keyboard.Tap(keyboard.KeySpace)
	require.Len(t, states, 2)
	assert.Equal(t, []uint8{keyboard.KeySpace}, states[0].Keys())
	assert.True(t, states[1].IsReleased())
}
