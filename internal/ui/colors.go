// Package ui holds the terminal styling shared by the CLI output.
package ui

import "os"

// ANSI escape sequences used across the CLI
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[97m"
)

// Plain disables styling, following the NO_COLOR convention
var Plain = os.Getenv("NO_COLOR") != ""

func paint(style, s string) string {
	if Plain {
		return s
	}
	return style + s + ColorReset
}

// Bold renders s in bold
func Bold(s string) string { return paint(ColorBold, s) }

// Success marks extracted listings and totals
func Success(s string) string { return paint(ColorGreen, s) }

// Info marks stage arrows and notices
func Info(s string) string { return paint(ColorDim+ColorYellow, s) }

// Error renders s in red
func Error(s string) string { return paint(ColorRed, s) }
