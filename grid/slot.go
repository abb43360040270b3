package grid

import "fmt"

// Slot is the semantic role of a key: an index into the colour palettes
// and the key's action identity.
type Slot int

// NoSlot marks a key without a role. Its LED stays off and it is never
// dispatched.
const NoSlot Slot = -1

// Valid reports whether s names a palette entry.
func (s Slot) Valid() bool { return s >= 0 }

// SlotMap assigns a slot to every key index.
type SlotMap []Slot

// At returns the slot of key i, or NoSlot when i is out of range.
func (m SlotMap) At(i int) Slot {
	if i < 0 || i >= len(m) {
		return NoSlot
	}
	return m[i]
}

// Validate checks that every assigned slot indexes a palette of each of the
// given lengths.
func (m SlotMap) Validate(paletteLens ...int) error {
	for i, s := range m {
		if s == NoSlot {
			continue
		}
		if s < 0 {
			return fmt.Errorf("key %d: invalid slot %d", i, s)
		}
		for _, n := range paletteLens {
			if int(s) >= n {
				return fmt.Errorf("key %d: slot %d outside palette of %d colours", i, s, n)
			}
		}
	}
	return nil
}
