package host

import (
	"log/slog"
	"strings"

	"github.com/Alia5/padlight/device/keyboard"
)

// LogWriter is a dry-run Writer that logs every report.
type LogWriter struct{ logger *slog.Logger }

func NewLogWriter(logger *slog.Logger) *LogWriter { return &LogWriter{logger: logger} }

func (w *LogWriter) WriteReport(st keyboard.InputState) ([]byte, error) {
	report, err := st.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if st.IsReleased() {
		w.logger.Debug("release")
		return report, nil
	}
	names := make([]string, 0, 8)
	for bit := uint8(0); bit < 8; bit++ {
		if st.Modifiers&(1<<bit) != 0 {
			names = append(names, keyboard.KeyName(keyboard.KeyLeftCtrl+bit))
		}
	}
	for _, k := range st.Keys() {
		names = append(names, keyboard.KeyName(k))
	}
	w.logger.Info("press", "keys", strings.Join(names, "+"))
	return report, nil
}

func (w *LogWriter) Close() error { return nil }
