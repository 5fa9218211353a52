// Package logging builds the process-wide logr.Logger backed by zap.
//
// Interactive terminals get a human-readable console encoder; everything else
// (daemons, CI, pipes) gets JSON lines.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options controls logger construction.
type Options struct {
	// Verbosity enables V(n) logs up to n. Zero logs info and errors only.
	Verbosity int
	// Format is FormatAuto (the default), FormatJSON or FormatConsole.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// ParseLevel maps a level name to a verbosity.
func ParseLevel(level string) (int, error) {
	switch level {
	case "", "info":
		return 0, nil
	case "debug":
		return 1, nil
	case "trace":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want info, debug or trace)", level)
}

// ValidateFormat checks a --log-format value.
func ValidateFormat(format string) error {
	switch format {
	case "", FormatAuto, FormatJSON, FormatConsole:
		return nil
	}
	return fmt.Errorf("unknown log format %q (want auto, json or console)", format)
}

// New returns a logr.Logger writing to opts.Output.
func New(opts Options) logr.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	console := opts.Format == FormatConsole
	if opts.Format == "" || opts.Format == FormatAuto {
		console = isTerminal(out)
	}
	if console {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	// logr V(n) maps to zap level -n.
	level := zap.NewAtomicLevelAt(zapcore.Level(-opts.Verbosity))
	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)

	return zapr.NewLogger(zap.New(core, zap.AddCaller()))
}

// Must is New for callers that want the zap logger flushed on exit.
func Must(opts Options) (logr.Logger, func()) {
	log := New(opts)
	return log, func() {
		if u, ok := log.GetSink().(zapr.Underlier); ok {
			_ = u.GetUnderlying().Sync()
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
