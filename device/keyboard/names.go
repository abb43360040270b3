package keyboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// usageNames follows the CircuitPython Keycode naming so layouts written for
// Keybow style keypads carry over unchanged.
var usageNames = map[string]uint8{
	"A": KeyA, "B": KeyB, "C": KeyC, "D": KeyD, "E": KeyE, "F": KeyF, "G": KeyG,
	"H": KeyH, "I": KeyI, "J": KeyJ, "K": KeyK, "L": KeyL, "M": KeyM, "N": KeyN,
	"O": KeyO, "P": KeyP, "Q": KeyQ, "R": KeyR, "S": KeyS, "T": KeyT, "U": KeyU,
	"V": KeyV, "W": KeyW, "X": KeyX, "Y": KeyY, "Z": KeyZ,

	"ONE": Key1, "TWO": Key2, "THREE": Key3, "FOUR": Key4, "FIVE": Key5,
	"SIX": Key6, "SEVEN": Key7, "EIGHT": Key8, "NINE": Key9, "ZERO": Key0,

	"ENTER":              KeyEnter,
	"ESCAPE":             KeyEscape,
	"BACKSPACE":          KeyBackspace,
	"TAB":                KeyTab,
	"SPACE":              KeySpace,
	"MINUS":              KeyMinus,
	"EQUALS":             KeyEqual,
	"LEFT_BRACKET":       KeyLeftBrace,
	"RIGHT_BRACKET":      KeyRightBrace,
	"BACKSLASH":          KeyBackslash,
	"SEMICOLON":          KeySemicolon,
	"QUOTE":              KeyApostrophe,
	"GRAVE_ACCENT":       KeyGrave,
	"COMMA":              KeyComma,
	"PERIOD":             KeyPeriod,
	"FORWARD_SLASH":      KeySlash,
	"CAPS_LOCK":          KeyCapsLock,
	"PRINT_SCREEN":       KeyPrintScreen,
	"SCROLL_LOCK":        KeyScrollLock,
	"PAUSE":              KeyPause,
	"INSERT":             KeyInsert,
	"HOME":               KeyHome,
	"PAGE_UP":            KeyPageUp,
	"DELETE":             KeyDelete,
	"END":                KeyEnd,
	"PAGE_DOWN":          KeyPageDown,
	"RIGHT_ARROW":        KeyRight,
	"LEFT_ARROW":         KeyLeft,
	"DOWN_ARROW":         KeyDown,
	"UP_ARROW":           KeyUp,
	"MUTE":               KeyMute,
	"VOLUME_INCREMENT":   KeyVolumeUp,
	"VOLUME_DECREMENT":   KeyVolumeDown,
	"LEFT_CONTROL":       KeyLeftCtrl,
	"LEFT_SHIFT":         KeyLeftShift,
	"LEFT_ALT":           KeyLeftAlt,
	"LEFT_GUI":           KeyLeftGUI,
	"RIGHT_CONTROL":      KeyRightCtrl,
	"RIGHT_SHIFT":        KeyRightShift,
	"RIGHT_ALT":          KeyRightAlt,
	"RIGHT_GUI":          KeyRightGUI,
	"F1":                 KeyF1,
	"F2":                 KeyF2,
	"F3":                 KeyF3,
	"F4":                 KeyF4,
	"F5":                 KeyF5,
	"F6":                 KeyF6,
	"F7":                 KeyF7,
	"F8":                 KeyF8,
	"F9":                 KeyF9,
	"F10":                KeyF10,
	"F11":                KeyF11,
	"F12":                KeyF12,
}

// aliases resolve to a canonical name in usageNames.
var aliases = map[string]string{
	"1": "ONE", "2": "TWO", "3": "THREE", "4": "FOUR", "5": "FIVE",
	"6": "SIX", "7": "SEVEN", "8": "EIGHT", "9": "NINE", "0": "ZERO",

	"RETURN":       "ENTER",
	"SPACEBAR":     "SPACE",
	"SHIFT":        "LEFT_SHIFT",
	"CONTROL":      "LEFT_CONTROL",
	"CTRL":         "LEFT_CONTROL",
	"ALT":          "LEFT_ALT",
	"OPTION":       "LEFT_ALT",
	"GUI":          "LEFT_GUI",
	"COMMAND":      "LEFT_GUI",
	"WINDOWS":      "LEFT_GUI",
	"RIGHT_OPTION": "RIGHT_ALT",
	"LEFT":         "LEFT_ARROW",
	"RIGHT":        "RIGHT_ARROW",
	"UP":           "UP_ARROW",
	"DOWN":         "DOWN_ARROW",
}

var codeNames map[uint8]string

func init() {
	codeNames = make(map[uint8]string, len(usageNames))
	for name, code := range usageNames {
		codeNames[code] = name
	}
}

// ParseKey resolves a key name ("LEFT_ARROW", "shift", "3") or a hex usage
// ("0x2c") to its HID usage code.
func ParseKey(name string) (uint8, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if strings.HasPrefix(n, "0X") {
		v, err := strconv.ParseUint(n[2:], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid key code %q: %w", name, err)
		}
		return uint8(v), nil
	}
	n = strings.ReplaceAll(n, "-", "_")
	if a, ok := aliases[n]; ok {
		n = a
	}
	code, ok := usageNames[n]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return code, nil
}

// ParseKeys resolves every name with ParseKey.
func ParseKeys(names []string) ([]uint8, error) {
	out := make([]uint8, 0, len(names))
	for _, n := range names {
		c, err := ParseKey(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// KeyName returns the canonical name of code, or its hex form when unnamed.
func KeyName(code uint8) string {
	if n, ok := codeNames[code]; ok {
		return n
	}
	return fmt.Sprintf("0x%02x", code)
}

// KeyNames lists every canonical key name in sorted order.
func KeyNames() []string {
	out := make([]string, 0, len(usageNames))
	for n := range usageNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
