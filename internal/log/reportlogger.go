package log

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"
)

// ReportLogger records every HID report written to a host.
type ReportLogger interface {
	Log(host string, report []byte)
}

type reportLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewReport creates a ReportLogger writing to w. A nil w discards reports.
func NewReport(w io.Writer) ReportLogger {
	return &reportLogger{w: w, now: time.Now}
}

// Log writes one line with a timestamp, the host name and a hex dump.
func (r *reportLogger) Log(host string, report []byte) {
	if r.w == nil || len(report) == 0 {
		return
	}
	line := fmt.Sprintf("%s %s report: %d bytes, hex: %s\n",
		r.now().Format("2006/01/02 15:04:05.000"),
		host,
		len(report),
		HexDump(report))

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}

// HexDump returns the bytes as space separated hex pairs.
func HexDump(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	s := hex.EncodeToString(b)
	out := make([]byte, 0, len(s)+len(b)-1)
	for i := 0; i < len(s); i += 2 {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, s[i], s[i+1])
	}
	return string(out)
}
