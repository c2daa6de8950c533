package logger

import (
	"github.com/fatih/color" // Colored console output for the level printers
)

// Level printers built on fatih/color. Each behaves like fmt.Printf with the
// text colored for its level, so call sites carry their own "[LEVEL]" prefix
// and trailing newline.

// Info prints progress messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn prints recoverable problems in bright magenta.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error prints fatal problems in red. The CLI prints exactly one of these
// before exiting non-zero.
var Error = color.New(color.FgRed).PrintfFunc()

// Step prints the banner for a pipeline step in bold blue so that the long
// output of builds can be visually split by step.
var Step = color.New(color.FgBlue, color.Bold).PrintfFunc()

// Debug prints in cyan when debug logging is enabled and is a no-op otherwise.
// It starts as a no-op so packages can log before Init runs (tests, mostly).
var Debug = func(format string, a ...any) {}

// Init enables or disables debug output.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
