package keyboard

import "fmt"

// CharToKey maps ASCII characters to usages on a US layout.
// Characters listed in ShiftChars need the Shift modifier.
var CharToKey = map[byte]uint8{
	'a': KeyA, 'b': KeyB, 'c': KeyC, 'd': KeyD, 'e': KeyE, 'f': KeyF, 'g': KeyG,
	'h': KeyH, 'i': KeyI, 'j': KeyJ, 'k': KeyK, 'l': KeyL, 'm': KeyM, 'n': KeyN,
	'o': KeyO, 'p': KeyP, 'q': KeyQ, 'r': KeyR, 's': KeyS, 't': KeyT, 'u': KeyU,
	'v': KeyV, 'w': KeyW, 'x': KeyX, 'y': KeyY, 'z': KeyZ,

	'A': KeyA, 'B': KeyB, 'C': KeyC, 'D': KeyD, 'E': KeyE, 'F': KeyF, 'G': KeyG,
	'H': KeyH, 'I': KeyI, 'J': KeyJ, 'K': KeyK, 'L': KeyL, 'M': KeyM, 'N': KeyN,
	'O': KeyO, 'P': KeyP, 'Q': KeyQ, 'R': KeyR, 'S': KeyS, 'T': KeyT, 'U': KeyU,
	'V': KeyV, 'W': KeyW, 'X': KeyX, 'Y': KeyY, 'Z': KeyZ,

	'1': Key1, '2': Key2, '3': Key3, '4': Key4, '5': Key5,
	'6': Key6, '7': Key7, '8': Key8, '9': Key9, '0': Key0,

	'!': Key1, '@': Key2, '#': Key3, '$': Key4, '%': Key5,
	'^': Key6, '&': Key7, '*': Key8, '(': Key9, ')': Key0,

	'-': KeyMinus, '=': KeyEqual, '[': KeyLeftBrace, ']': KeyRightBrace,
	'\\': KeyBackslash, ';': KeySemicolon, '\'': KeyApostrophe, '`': KeyGrave,
	',': KeyComma, '.': KeyPeriod, '/': KeySlash,

	'_': KeyMinus, '+': KeyEqual, '{': KeyLeftBrace, '}': KeyRightBrace,
	'|': KeyBackslash, ':': KeySemicolon, '"': KeyApostrophe, '~': KeyGrave,
	'<': KeyComma, '>': KeyPeriod, '?': KeySlash,

	' ': KeySpace, '\n': KeyEnter, '\r': KeyEnter, '\t': KeyTab,
}

// ShiftChars holds the characters typed with Shift held.
var ShiftChars = map[byte]bool{
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,

	'!': true, '@': true, '#': true, '$': true, '%': true,
	'^': true, '&': true, '*': true, '(': true, ')': true,

	'_': true, '+': true, '{': true, '}': true, '|': true,
	':': true, '"': true, '~': true, '<': true, '>': true, '?': true,
}

// TypeChar returns the press and release states that type c.
func TypeChar(c byte) (press, release InputState, err error) {
	code, ok := CharToKey[c]
	if !ok {
		return InputState{}, InputState{}, fmt.Errorf("no key for character %q", c)
	}
	var mods uint8
	if ShiftChars[c] {
		mods = ModLeftShift
	}
	return PressKeyWithMod(mods, code), Release(), nil
}

// TypeString returns alternating press/release states that type s on a US
// layout. Nothing is returned when any character cannot be typed.
//
//	states, _ := TypeString("#ff")
//	// [Shift+3, release, f, release, f, release]
func TypeString(s string) ([]InputState, error) {
	states := make([]InputState, 0, 2*len(s))
	for i := 0; i < len(s); i++ {
		press, release, err := TypeChar(s[i])
		if err != nil {
			return nil, err
		}
		states = append(states, press, release)
	}
	return states, nil
}

// Tap returns the press and release states of a chord.
func Tap(codes ...uint8) []InputState {
	return []InputState{Chord(codes...), Release()}
}
