// Package logging provides structured logging using bolt.
package logging

import (
	"os"
	"sync"

	"github.com/felixgeelhaar/bolt/v3"
)

var (
	defaultLogger *bolt.Logger
	once          sync.Once
)

// Config configures the logger.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format is the output format (json or console).
	Format string

	// NoColor disables color output for console format.
	NoColor bool

	// Output is the output destination.
	Output *os.File
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: os.Stderr,
	}
}

var levels = map[string]bolt.Level{
	"trace": bolt.TRACE,
	"debug": bolt.DEBUG,
	"info":  bolt.INFO,
	"warn":  bolt.WARN,
	"error": bolt.ERROR,
}

func parseLevel(s string) bolt.Level {
	if lvl, ok := levels[s]; ok {
		return lvl
	}
	return bolt.INFO
}

// New builds a logger from the configuration without touching the
// package default.
func New(config Config) *bolt.Logger {
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	var handler bolt.Handler
	if config.Format == "json" {
		handler = bolt.NewJSONHandler(output)
	} else {
		handler = bolt.NewConsoleHandler(output)
	}

	return bolt.New(handler).SetLevel(parseLevel(config.Level))
}

// Init initializes the default logger with the given configuration.
// Subsequent calls are no-ops.
func Init(config Config) {
	once.Do(func() {
		defaultLogger = New(config)
	})
}

// Get returns the default logger, initializing if necessary.
func Get() *bolt.Logger {
	if defaultLogger == nil {
		Init(DefaultConfig())
	}
	return defaultLogger
}

// SetLevel changes the log level of the default logger.
func SetLevel(level string) {
	Get().SetLevel(parseLevel(level))
}

// Event wraps a bolt.Event so Fields can be chained onto it.
type Event struct {
	event *bolt.Event
}

// Add applies a field to the event and returns the wrapper for chaining.
func (e *Event) Add(f Field) *Event {
	e.event = f(e.event)
	return e
}

// Msg sends the log event with a message.
func (e *Event) Msg(msg string) {
	e.event.Msg(msg)
}

// Send sends the log event without a message.
func (e *Event) Send() {
	e.event.Send()
}

// Trace returns an Event for trace level logging.
func Trace() *Event {
	return &Event{event: Get().Trace()}
}

// Debug returns an Event for debug level logging.
func Debug() *Event {
	return &Event{event: Get().Debug()}
}

// Info returns an Event for info level logging.
func Info() *Event {
	return &Event{event: Get().Info()}
}

// Warn returns an Event for warn level logging.
func Warn() *Event {
	return &Event{event: Get().Warn()}
}

// Error returns an Event for error level logging.
func Error() *Event {
	return &Event{event: Get().Error()}
}

// Fatal returns an Event for fatal level logging.
func Fatal() *Event {
	return &Event{event: Get().Fatal()}
}
