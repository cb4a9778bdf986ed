// Package logger provides verbose logging for the ssp CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow sync and import steps.
// Messages are emitted through zerolog, as console lines by default or as
// JSON lines when SetJSON(true) is called.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	jsonOut bool
	output  io.Writer = os.Stderr
	log               = build()
)

// build constructs the zerolog logger for the current settings. Callers hold mu.
func build() zerolog.Logger {
	level := zerolog.Disabled
	if verbose {
		level = zerolog.DebugLevel
	}
	if jsonOut {
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	cw := zerolog.ConsoleWriter{
		Out:          output,
		NoColor:      true,
		TimeFormat:   time.RFC3339,
		PartsExclude: []string{zerolog.TimestampFieldName},
		FormatLevel: func(i any) string {
			return "[" + strings.ToUpper(fmt.Sprint(i)) + "]"
		},
	}
	return zerolog.New(cw).Level(level)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSON switches between console lines and JSON lines.
func SetJSON(j bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOut = j
	log = build()
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build()
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug().Msgf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if jsonOut {
		log.Info().Str("section", name).Send()
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info().Msgf(format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn().Msgf(format, args...)
}
