package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration options
type Config struct {
	Level  string // trace, debug, info, warn, error, disabled
	Format string // console or json
	Output io.Writer
}

// New builds the process logger. A nil Output writes to stderr.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var writer io.Writer = output
	if strings.ToLower(cfg.Format) != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := parseLevel(cfg.Level)
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Component tags a logger the way every package expects its logs tagged.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// Nop returns a disabled logger for tests and library callers that pass none.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "disabled", "none", "off":
		return zerolog.Disabled
	case "warning":
		return zerolog.WarnLevel
	}
	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		return l
	}
	return zerolog.InfoLevel
}
