// Package logging builds the zap logger used across passman. The TUI owns the
// terminal, so logs go to a file, to stderr only when asked, or nowhere.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the log destination and level
type Options struct {
	File    string
	Level   string
	Verbose bool
	// Interactive is set when the TUI owns the terminal. Verbose output then
	// only goes to File.
	Interactive bool
	// Stderr is the writer used for verbose logging without a file
	Stderr io.Writer
}

// New returns a logger and a cleanup function that flushes and closes it
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger := zap.New(zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			level,
		))
		return logger, func() {
			_ = logger.Sync()
			_ = f.Close()
		}, nil
	case opts.Verbose && !opts.Interactive:
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		logger := zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(w),
			level,
		))
		return logger, func() { _ = logger.Sync() }, nil
	default:
		return zap.NewNop(), func() {}, nil
	}
}
