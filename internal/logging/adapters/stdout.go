package adapters

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"realestate-agent/internal/logging/types"
)

// StdoutAdapter renders entries through zerolog, as JSON or console text
type StdoutAdapter struct {
	name   string
	logger zerolog.Logger
	mu     sync.Mutex
}

// StdoutConfig represents configuration for the stdout adapter
type StdoutConfig struct {
	Format    string    `yaml:"format"`    // json or text
	Colorized bool      `yaml:"colorized"` // text format only
	Writer    io.Writer `yaml:"-"`         // defaults to os.Stdout
}

func NewStdoutAdapter(name string, config StdoutConfig) *StdoutAdapter {
	out := config.Writer
	if out == nil {
		out = os.Stdout
	}

	if strings.ToLower(config.Format) == "text" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    !config.Colorized,
		}
	}

	return &StdoutAdapter{
		name:   name,
		logger: zerolog.New(out),
	}
}

// Write writes a log entry
func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	event := a.logger.WithLevel(toZerologLevel(entry.Level)).
		Time(zerolog.TimestampFieldName, entry.Timestamp)
	if len(entry.Fields) > 0 {
		event = event.Fields(entry.Fields)
	}
	event.Msg(entry.Message)
	return nil
}

func (a *StdoutAdapter) Close() error {
	return nil
}

func (a *StdoutAdapter) Health() error {
	return nil
}

func (a *StdoutAdapter) Name() string {
	return a.name
}

func toZerologLevel(level types.LogLevel) zerolog.Level {
	switch level {
	case types.DebugLevel:
		return zerolog.DebugLevel
	case types.WarnLevel:
		return zerolog.WarnLevel
	case types.ErrorLevel:
		return zerolog.ErrorLevel
	case types.FatalLevel:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
