// Package observability configures the process-wide diagnostic logger.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls InitLogger
type Options struct {
	// Level is a zerolog level name; empty means warn
	Level string

	// Format is "console" or "json"
	Format string

	// Out defaults to stderr so diagnostics never mix with chat output
	Out io.Writer
}

// InitLogger builds the diagnostic logger, installs it as the global zerolog logger
// and returns it. An unknown level falls back to warn.
func InitLogger(app string, opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}

	if level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
	}

	var w io.Writer = out
	if !strings.EqualFold(opts.Format, "json") {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(out),
		}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
