package keyboard

// InputState is one keyboard report: the modifier byte plus a 256-bit
// bitmap of pressed usages.
type InputState struct {
	Modifiers uint8     // bit 0-7: LCtrl, LShift, LAlt, LGui, RCtrl, RShift, RAlt, RGui
	KeyBitmap [32]uint8 // 256 bits for HID usage codes 0x00-0xFF
}

// Chord builds the state with every code held at once. Modifier usages
// (0xE0-0xE7) are folded into the modifier byte.
func Chord(codes ...uint8) InputState {
	var st InputState
	for _, c := range codes {
		if IsModifier(c) {
			st.Modifiers |= ModifierBit(c)
			continue
		}
		st.KeyBitmap[c/8] |= 1 << (c % 8)
	}
	return st
}

// PressKeyWithMod returns the state with modifiers and keys held.
func PressKeyWithMod(modifiers uint8, keys ...uint8) InputState {
	st := Chord(keys...)
	st.Modifiers |= modifiers
	return st
}

// Release returns the state with nothing held.
func Release() InputState {
	return InputState{}
}

// Keys returns the pressed non-modifier usages in ascending order.
func (st InputState) Keys() []uint8 {
	var keys []uint8
	for i := 0; i < 256; i++ {
		if st.KeyBitmap[i/8]&(1<<uint(i%8)) != 0 {
			keys = append(keys, uint8(i))
		}
	}
	return keys
}

// IsReleased reports whether nothing is held.
func (st InputState) IsReleased() bool {
	return st == InputState{}
}

// MarshalBinary encodes the state in the variable-length stream format of a
// VIIPER keyboard device.
//
//	Byte 0: Modifiers
//	Byte 1: Key count
//	Bytes 2+: Key codes
func (st *InputState) MarshalBinary() ([]byte, error) {
	keys := st.Keys()
	b := make([]byte, 2+len(keys))
	b[0] = st.Modifiers
	b[1] = uint8(len(keys))
	copy(b[2:], keys)
	return b, nil
}

// BootReport encodes the state as an 8-byte boot protocol report. Keys past
// the sixth are dropped.
//
//	Byte 0: Modifiers
//	Byte 1: Reserved
//	Bytes 2-7: Key codes
func (st InputState) BootReport() [8]byte {
	var r [8]byte
	r[0] = st.Modifiers
	for i, k := range st.Keys() {
		if i == 6 {
			break
		}
		r[2+i] = k
	}
	return r
}
