// Package host delivers keypad emissions to the computer as USB keyboard
// reports.
//
// A Host turns keycode chords and text into press/release report pairs and
// hands them to a background writer that sends one report per interval. The
// caller never blocks: when the queue cannot take a whole emission, ErrBusy
// is returned and nothing is queued.
package host

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/padlight/device/keyboard"
	"github.com/Alia5/padlight/internal/log"
)

// ErrBusy reports a full report queue. Callers retry later.
var ErrBusy = errors.New("host busy")

const (
	DefaultReportInterval = 8 * time.Millisecond
	DefaultQueueSize      = 256
	DefaultRetryDelay     = 250 * time.Millisecond
)

// Writer sends one report to the USB host and returns the bytes written.
type Writer interface {
	WriteReport(st keyboard.InputState) ([]byte, error)
	Close() error
}

// Options tunes a Host. Zero values select the defaults.
type Options struct {
	ReportInterval time.Duration
	QueueSize      int
	RetryDelay     time.Duration
	// Reports receives every written report.
	Reports log.ReportLogger
}

// Host paces keyboard reports to a Writer. Pending exposes the backlog so
// hold repeats can wait for the writer.
type Host struct {
	name    string
	w       Writer
	queue   chan keyboard.InputState
	opts    Options
	logger  *slog.Logger
	reports log.ReportLogger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New starts the writer goroutine for w. Close stops it.
func New(name string, w Writer, opts Options, logger *slog.Logger) *Host {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = DefaultReportInterval
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	reports := opts.Reports
	if reports == nil {
		reports = log.NewReport(nil)
	}
	h := &Host{
		name:    name,
		w:       w,
		queue:   make(chan keyboard.InputState, opts.QueueSize),
		opts:    opts,
		logger:  logger.With("host", name),
		reports: reports,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go h.run()
	return h
}

// Name returns the host kind.
func (h *Host) Name() string { return h.name }

// SendKeycode queues a chord of codes followed by a release.
func (h *Host) SendKeycode(codes ...uint8) error {
	return h.enqueue(keyboard.Tap(codes...))
}

// WriteText queues s typed through the US layout.
func (h *Host) WriteText(s string) error {
	states, err := keyboard.TypeString(s)
	if err != nil {
		return err
	}
	return h.enqueue(states)
}

// Pending returns the number of queued reports.
func (h *Host) Pending() int { return len(h.queue) }

// enqueue is all-or-nothing. The keypad loop is the only producer, so free
// capacity cannot shrink between the check and the sends.
func (h *Host) enqueue(states []keyboard.InputState) error {
	select {
	case <-h.stop:
		return errors.New("host closed")
	default:
	}
	if cap(h.queue)-len(h.queue) < len(states) {
		return ErrBusy
	}
	for _, st := range states {
		h.queue <- st
	}
	return nil
}

func (h *Host) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.opts.ReportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case st := <-h.queue:
			if !h.write(st) {
				return
			}
		}
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}
	}
}

// write retries st until it is written or the host is closed.
func (h *Host) write(st keyboard.InputState) bool {
	failing := false
	for {
		report, err := h.w.WriteReport(st)
		if err == nil {
			h.reports.Log(h.name, report)
			h.logger.Log(context.Background(), log.LevelTrace, "report", "hex", log.HexDump(report))
			if failing {
				h.logger.Info("host writes recovered")
			}
			return true
		}
		if !failing {
			h.logger.Warn("host write failed, retrying", "error", err)
			failing = true
		}
		select {
		case <-h.stop:
			return false
		case <-time.After(h.opts.RetryDelay):
		}
	}
}

// Close stops the writer, makes one attempt at every queued report, releases
// every key and closes the Writer.
func (h *Host) Close() error {
	h.closeOnce.Do(func() {
		close(h.stop)
		<-h.done
		for len(h.queue) > 0 {
			h.writeOnce(<-h.queue)
			time.Sleep(h.opts.ReportInterval)
		}
		h.writeOnce(keyboard.Release())
		h.closeErr = h.w.Close()
	})
	return h.closeErr
}

func (h *Host) writeOnce(st keyboard.InputState) {
	report, err := h.w.WriteReport(st)
	if err != nil {
		h.logger.Debug("dropping report on close", "error", err)
		return
	}
	h.reports.Log(h.name, report)
}
