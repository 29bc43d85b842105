// Package detector chooses between pretty and JSON log rendering based on
// the process environment, adapted from traiproject-same's
// cli/internal/adapters/detector/env.go (TUI-vs-linear detection) to this
// project's pretty-vs-JSON logging split.
package detector

import (
	"os"

	"golang.org/x/term"
)

// LogFormat is the rendering mode chosen for structured log output.
type LogFormat int

const (
	// FormatPretty is the default human-oriented single-line format.
	FormatPretty LogFormat = iota
	// FormatJSON is slog's JSON handler, for CI log aggregation.
	FormatJSON
)

// DetectLogFormat picks JSON when stdout is not a terminal or the CI
// environment variable is set, and pretty otherwise.
func DetectLogFormat() LogFormat {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return FormatJSON
	}
	return FormatPretty
}

// ResolveLogFormat applies an explicit --json override on top of
// auto-detection; userOverride is nil when the flag was not set.
func ResolveLogFormat(autoDetected LogFormat, userOverride *bool) LogFormat {
	if userOverride == nil {
		return autoDetected
	}
	if *userOverride {
		return FormatJSON
	}
	return FormatPretty
}
