package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// InitSlog installs the process-wide slog handler. pretty selects the
// text handler, otherwise JSON.
func InitSlog(pretty bool) {
	InitSlogWriter(pretty, os.Stderr)
}

// InitSlogWriter is InitSlog with an explicit destination; the CLI uses
// it to tee diagnostics into the append-only run log while keeping the
// console echo.
func InitSlogWriter(pretty bool, w io.Writer) {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var handler slog.Handler
	if pretty {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// OpenLogFile opens the append-only log sink and returns a writer that
// echoes to stderr as well.
func OpenLogFile(path string) (io.Writer, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return io.MultiWriter(os.Stderr, f), f, nil
}
