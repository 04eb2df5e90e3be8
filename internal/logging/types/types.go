package types

import (
	"context"
	"strings"
	"time"
)

// LogLevel orders entries by severity; an entry below the logger's level is dropped
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
	FatalLevel: "fatal",
}

// String renders the level as it appears in LOG_LEVEL; unknown values render as "info"
func (l LogLevel) String() string {
	if l < DebugLevel || l > FatalLevel {
		return levelNames[InfoLevel]
	}
	return levelNames[l]
}

// ParseLevel is the inverse of String. It also accepts "warning" and falls
// back to InfoLevel for anything it does not recognise.
func ParseLevel(s string) LogLevel {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return WarnLevel
	}
	for level, name := range levelNames {
		if name == s {
			return LogLevel(level)
		}
	}
	return InfoLevel
}

// LogEntry is what adapters receive; Fields is a private copy per entry
type LogEntry struct {
	Level     LogLevel
	Message   string
	Timestamp time.Time
	Fields    map[string]interface{}
	Context   context.Context
}

// LogAdapter writes entries to one destination
type LogAdapter interface {
	Name() string
	Write(entry *LogEntry) error
	// Health reports whether the destination can still accept entries
	Health() error
	Close() error
}

// LevelLogger emits entries at a fixed or explicit level
type LevelLogger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, fields ...map[string]interface{})
	Fatal(message string, fields ...map[string]interface{})
	Log(level LogLevel, message string, fields ...map[string]interface{})
}

// AdapterRegistry manages the destinations behind a logger
type AdapterRegistry interface {
	AddAdapter(adapter LogAdapter) error
	RemoveAdapter(adapterName string) error
	// Health joins the errors of every unhealthy adapter
	Health() error
	Close() error
}

// Logger is the request- and component-scoped logger handed around the service.
// Derived loggers share adapters and level with their parent.
type Logger interface {
	LevelLogger
	AdapterRegistry

	WithContext(ctx context.Context) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// AdapterConfig selects an adapter implementation by Type; Options are type specific
type AdapterConfig struct {
	Name    string
	Type    string
	Options map[string]interface{}
}
