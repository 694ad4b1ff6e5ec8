package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the operator logger.
type Options struct {
	// Out receives human readable log lines. Defaults to stderr.
	Out     io.Writer
	Verbose bool
	Quiet   bool
	// ErrorLog, when set, receives warnings and errors as JSON lines.
	ErrorLog string
}

// NewLogger builds the operator logger. The returned func flushes and
// closes the error log and must be called before exit.
func NewLogger(opts Options) (*zap.Logger, func(), error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zapcore.InfoLevel
	switch {
	case opts.Quiet:
		level = zapcore.WarnLevel
	case opts.Verbose:
		level = zapcore.DebugLevel
	}

	console := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "message",
		LevelKey:         "level",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	})
	cores := []zapcore.Core{
		zapcore.NewCore(console, zapcore.AddSync(out), level),
	}

	closeFile := func() {}
	if opts.ErrorLog != "" {
		if dir := filepath.Dir(opts.ErrorLog); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, nil, fmt.Errorf("failed to create error log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.ErrorLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open error log: %w", err)
		}
		closeFile = func() { f.Close() }

		file := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			MessageKey:  "message",
			LevelKey:    "level",
			EncodeLevel: zapcore.CapitalLevelEncoder,
			TimeKey:     "time",
			EncodeTime:  zapcore.ISO8601TimeEncoder,
		})
		cores = append(cores, zapcore.NewCore(file, zapcore.AddSync(f), zapcore.WarnLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	cleanup := func() {
		_ = logger.Sync()
		closeFile()
	}
	return logger, cleanup, nil
}
