// Package keystate turns raw per-key samples into press, hold and release
// events.
//
// Every key runs the machine Idle -> Pressed -> Held and returns to Idle on
// release. Detection is edge triggered: a false->true sample is a press on
// that very tick. Keys with hold enabled enter Held once they have been down
// for their threshold and then report Hold on every tick until released.
package keystate

import "time"

// Event is what a key reported on one tick.
type Event uint8

const (
	None Event = iota
	Press
	Hold
	Release
)

func (e Event) String() string {
	switch e {
	case None:
		return "none"
	case Press:
		return "press"
	case Hold:
		return "hold"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// Phase is the classifier state of a key.
type Phase uint8

const (
	Idle Phase = iota
	Pressed
	Held
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Held:
		return "held"
	default:
		return "unknown"
	}
}

// DefaultHoldThreshold is the time a key must be down before it repeats.
const DefaultHoldThreshold = 100 * time.Millisecond

// Timing configures hold detection for one key.
type Timing struct {
	// Hold enables the Held phase. Keys without it only ever press and
	// release.
	Hold bool
	// Threshold is the pressed duration after which the key is held.
	Threshold time.Duration
}

// Key is the runtime state of one key.
type Key struct {
	Phase   Phase
	Pressed bool
	// HeldFor accumulates the time the key has been down, including the
	// interval of the tick that pressed it.
	HeldFor time.Duration
}

// Classifier holds the state of every key.
type Classifier struct {
	keys   []Key
	timing []Timing
}

// New creates a classifier for len(timing) keys, all idle.
func New(timing []Timing) *Classifier {
	t := make([]Timing, len(timing))
	copy(t, timing)
	return &Classifier{
		keys:   make([]Key, len(timing)),
		timing: t,
	}
}

// Len returns the number of keys.
func (c *Classifier) Len() int { return len(c.keys) }

// Key returns the state of key i.
func (c *Classifier) Key(i int) Key { return c.keys[i] }

// Step feeds one sample for key i taken dt after the previous tick.
func (c *Classifier) Step(i int, pressed bool, dt time.Duration) Event {
	k := &c.keys[i]
	tm := c.timing[i]

	if !pressed {
		if k.Phase == Idle {
			return None
		}
		*k = Key{}
		return Release
	}

	k.Pressed = true
	k.HeldFor += dt
	switch k.Phase {
	case Idle:
		k.Phase = Pressed
		k.HeldFor = dt
		return Press
	case Pressed:
		if tm.Hold && k.HeldFor >= tm.Threshold {
			k.Phase = Held
			return Hold
		}
		return None
	default:
		return Hold
	}
}

// Update classifies one snapshot. sample(i) reports whether key i is down.
// events must have room for Len() entries; one event per key is written.
func (c *Classifier) Update(sample func(i int) bool, dt time.Duration, events []Event) {
	for i := range c.keys {
		events[i] = c.Step(i, sample(i), dt)
	}
}

// Reset returns every key to Idle without emitting events.
func (c *Classifier) Reset() {
	for i := range c.keys {
		c.keys[i] = Key{}
	}
}
