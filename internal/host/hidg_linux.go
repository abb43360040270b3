package host

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Alia5/padlight/device/keyboard"
)

// DefaultHidgPath is the first HID function of a configured USB gadget.
const DefaultHidgPath = "/dev/hidg0"

const (
	hidgAttempts = 3
	hidgBackoff  = time.Millisecond
)

// Hidg writes boot keyboard reports to a Linux USB HID gadget device.
type Hidg struct {
	fd   int
	path string
}

// OpenHidg opens path non-blocking for writing.
func OpenHidg(path string) (*Hidg, error) {
	if path == "" {
		path = DefaultHidgPath
	}
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Hidg{fd: fd, path: path}, nil
}

// WriteReport writes the 8-byte boot report. A full endpoint (EAGAIN) is
// retried a few times before the error is returned to the pacer.
func (g *Hidg) WriteReport(st keyboard.InputState) ([]byte, error) {
	report := st.BootReport()
	var err error
	for attempt := 0; attempt < hidgAttempts; attempt++ {
		var n int
		n, err = unix.Write(g.fd, report[:])
		if err == nil {
			if n != len(report) {
				return nil, fmt.Errorf("%s: short write %d/%d", g.path, n, len(report))
			}
			return report[:], nil
		}
		if !errors.Is(err, unix.EAGAIN) {
			break
		}
		time.Sleep(hidgBackoff)
	}
	return nil, fmt.Errorf("%s: %w", g.path, err)
}

func (g *Hidg) Close() error {
	return unix.Close(g.fd)
}
