package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔═══════════════════════════════════════════════════════╗
    ║ ██╗   ██╗██╗  ██╗ █████╗ ██████╗  ██████╗██╗  ██╗     ║
    ║ ██║   ██║██║ ██╔╝██╔══██╗██╔══██╗██╔════╝██║  ██║     ║
    ║ ██║   ██║█████╔╝ ███████║██████╔╝██║     ███████║     ║
    ║ ╚██╗ ██╔╝██╔═██╗ ██╔══██║██╔══██╗██║     ██╔══██║     ║
    ║  ╚████╔╝ ██║  ██╗██║  ██║██║  ██║╚██████╗██║  ██║     ║
    ║   ╚═══╝  ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝     ║
    ║          WALL HARVESTER - INCREMENTAL ARCHIVER         ║
    ╚═══════════════════════════════════════════════════════╝
`

// Message prefixes
const (
	PrefixSuccess = "[+]"
	PrefixStatus  = "[.]"
	PrefixFailure = "[-]"
)

var (
	mu      sync.Mutex
	out     io.Writer = os.Stdout
	quiet   bool
	noColor bool
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if noColor {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// SetOutput redirects all terminal output to w
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

// IsQuietMode reports whether quiet mode is on
func IsQuietMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return quiet
}

// SetNoColor disables ANSI colors
func SetNoColor(n bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = n
}

func printf(always bool, format string, args ...interface{}) {
	mu.Lock()
	w, q := out, quiet
	mu.Unlock()
	if q && !always {
		return
	}
	fmt.Fprintf(w, format, args...)
}

func withArg(msg string, args []interface{}) string {
	if len(args) > 0 && fmt.Sprintf("%v", args[0]) != "" {
		return msg + ": " + fmt.Sprintf("%v", args[0])
	}
	return msg
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	printf(false, "%s", Cyan(ASCIILogo))
}

// PrintError prints a failure line in red. It is shown in quiet mode too.
func PrintError(msg string, args ...interface{}) {
	printf(true, "%s\n", Red(PrefixFailure+" "+withArg(msg, args)))
}

// PrintSuccess prints a success line in green
func PrintSuccess(msg string) {
	printf(false, "%s\n", Green(PrefixSuccess+" "+msg))
}

// PrintStatus prints a neutral status line
func PrintStatus(msg string) {
	printf(false, "%s %s\n", Cyan(PrefixStatus), msg)
}

// PrintInfo prints an info message in cyan
func PrintInfo(label string, value string) {
	printf(false, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	printf(false, "%s\n", Yellow(withArg(msg, args)))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	printf(false, "%s\n", Magenta(msg))
}
