package cli

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for --log-file.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// newLogger builds the text logger for one command and installs it as the
// slog default. The returned func releases the log file, if any.
func newLogger(opts *RootOptions, stderr io.Writer) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	w := stderr
	closeFn := func() {}
	if opts.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
		}
		w = lj
		closeFn = func() { _ = lj.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn
}
