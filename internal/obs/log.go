// Package obs sets up the process-wide logger, grounded on
// avular-robotics-avular-packages' internal/cli/root.go logging setup,
// adopted since the teacher's own packages only use the standard
// library's log.Printf.
package obs

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger from a verbosity count
// (0=error, 1=warn, 2=info, 3=debug and above), matching the "-v" flag
// convention of the operator CLI (SPEC_FULL.md §2.1).
func Setup(verbosity int) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	switch {
	case verbosity <= 0:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbosity == 1:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case verbosity == 2:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// SetupLevel configures the global logger from a named level string
// (as loaded from config/env), falling back to info on an unknown name.
func SetupLevel(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
