package main

import (
	"fmt"
	"os"
)

// ANSI escapes for terminal output. --no-color suppresses all of them.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// tint wraps s in an ANSI escape unless color output is disabled.
func tint(code, s string) string {
	if noColor {
		return s
	}
	return code + s + ansiReset
}

// emit writes one glyph-prefixed line to stderr. Status chatter goes to
// stderr so stdout stays clean for command output.
func emit(code, glyph, format string, args ...any) {
	fmt.Fprintln(os.Stderr, tint(code, glyph+" "+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { emit(ansiGreen, "✓", format, args...) }
func printError(format string, args ...any)   { emit(ansiRed, "✗", format, args...) }
func printWarning(format string, args ...any) { emit(ansiYellow, "⚠", format, args...) }
func printStep(format string, args ...any)    { emit(ansiCyan, "→", format, args...) }

// printStatus renders one "Label: value" line of a status report.
func printStatus(label, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", tint(ansiBold, label+":"), fmt.Sprintf(format, args...))
}
