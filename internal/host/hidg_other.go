//go:build !linux

package host

import (
	"errors"

	"github.com/Alia5/padlight/device/keyboard"
)

const DefaultHidgPath = "/dev/hidg0"

// Hidg is only available on Linux.
type Hidg struct{}

func OpenHidg(string) (*Hidg, error) {
	return nil, errors.New("hidg host requires linux")
}

func (g *Hidg) WriteReport(keyboard.InputState) ([]byte, error) {
	return nil, errors.New("hidg host requires linux")
}

func (g *Hidg) Close() error { return nil }
