package testing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Alia5/padlight/color"
	"github.com/Alia5/padlight/render"
)

// ErrInjected is returned by fakes told to fail.
var ErrInjected = errors.New("injected failure")

// Host records everything sent to it. Fail makes the next n calls fail.
type Host struct {
	mu    sync.Mutex
	Calls []string
	Codes [][]uint8
	Texts []string
	fail  int
}

// Fail makes the next n calls return ErrInjected.
func (h *Host) Fail(n int) {
	h.mu.Lock()
	h.fail = n
	h.mu.Unlock()
}

func (h *Host) SendKeycode(codes ...uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fail > 0 {
		h.fail--
		return ErrInjected
	}
	c := append([]uint8(nil), codes...)
	h.Codes = append(h.Codes, c)
	h.Calls = append(h.Calls, fmt.Sprintf("keys %x", c))
	return nil
}

func (h *Host) WriteText(s string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fail > 0 {
		h.fail--
		return ErrInjected
	}
	h.Texts = append(h.Texts, s)
	h.Calls = append(h.Calls, "text "+s)
	return nil
}

// Snapshot returns a copy of the recorded calls.
func (h *Host) Snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.Calls...)
}

// Source is a key source whose state tests set directly.
type Source struct {
	mu      sync.Mutex
	down    map[int]bool
	Updates int
	Err     error
}

// NewSource returns a source with every key up.
func NewSource() *Source {
	return &Source{down: map[int]bool{}}
}

// Set changes the physical state of key i.
func (s *Source) Set(i int, down bool) {
	s.mu.Lock()
	s.down[i] = down
	s.mu.Unlock()
}

func (s *Source) Update() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Updates++
	return s.Err
}

func (s *Source) Pressed(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.down[i]
}

// LEDs records the last state written to each LED.
type LEDs struct {
	mu     sync.Mutex
	State  map[int]render.LED
	Writes int
	// FailKey makes writes to that index fail while non-negative.
	FailKey int
}

// NewLEDs returns a sink with no LED written yet.
func NewLEDs() *LEDs {
	return &LEDs{State: map[int]render.LED{}, FailKey: -1}
}

func (l *LEDs) SetLED(i int, c color.RGB) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i == l.FailKey {
		return ErrInjected
	}
	l.Writes++
	l.State[i] = render.Lit(c)
	return nil
}

func (l *LEDs) LEDOff(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i == l.FailKey {
		return ErrInjected
	}
	l.Writes++
	l.State[i] = render.Dark
	return nil
}

// Get returns the last state written to key i.
func (l *LEDs) Get(i int) render.LED {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.State[i]
}
