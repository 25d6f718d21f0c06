package main

import (
	"fmt"
	"io"
	"os"
)

// ANSI escape sequences used by the CLI.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// Human-facing messages go to stderr so stdout stays clean for piped
// JSON. Tests swap the writer to capture output.
var cliOut io.Writer = os.Stderr

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

// notify prints one prefixed, colorized line.
func notify(color, prefix, format string, args ...any) {
	fmt.Fprintln(cliOut, colorize(color, prefix+" "+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { notify(colorGreen, "✓", format, args...) }
func printError(format string, args ...any)   { notify(colorRed, "✗", format, args...) }
func printWarning(format string, args ...any) { notify(colorYellow, "⚠", format, args...) }
func printStep(format string, args ...any)    { notify(colorCyan, "→", format, args...) }

// printStatus renders one aligned "Label: value" line for status output.
func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(cliOut, "  %s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}
