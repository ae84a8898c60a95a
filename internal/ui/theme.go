// Package ui provides the ANSI color palette and console print helpers used
// by every user-facing message in the archiver.
package ui

import (
	"os"
	"strings"
)

// ANSI color codes - exported for use across packages.
var (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[91m"
	ColorGreen  = "\033[92m"
	ColorYellow = "\033[93m"
	ColorBlue   = "\033[94m"
	ColorPurple = "\033[95m"
	ColorCyan   = "\033[96m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

// Unicode symbols
var (
	SymbolCheck    = "✓"
	SymbolCross    = "✗"
	SymbolArrow    = "→"
	SymbolDownload = "⬇"
	SymbolInfo     = "ℹ"
	SymbolWarning  = "⚠"
	SymbolNotice   = "▪"
	SymbolWait     = "…"
)

func init() {
	InitColorPalette()
}

// InitColorPalette upgrades the basic palette when the terminal advertises
// richer color support. NO_COLOR disables everything.
func InitColorPalette() {
	if os.Getenv("NO_COLOR") != "" {
		ColorReset = ""
		ColorRed = ""
		ColorGreen = ""
		ColorYellow = ""
		ColorBlue = ""
		ColorPurple = ""
		ColorCyan = ""
		ColorGray = ""
		ColorBold = ""
		return
	}
	if SupportsTruecolor() {
		ColorRed = "\033[38;2;224;108;117m"
		ColorGreen = "\033[38;2;152;195;121m"
		ColorYellow = "\033[38;2;229;192;123m"
		ColorBlue = "\033[38;2;97;175;239m"
		ColorPurple = "\033[38;2;198;120;221m"
		ColorCyan = "\033[38;2;86;182;194m"
		return
	}
	if Supports256Color() {
		ColorRed = "\033[38;5;168m"
		ColorGreen = "\033[38;5;150m"
		ColorYellow = "\033[38;5;222m"
		ColorBlue = "\033[38;5;111m"
		ColorPurple = "\033[38;5;183m"
		ColorCyan = "\033[38;5;159m"
	}
}

// SupportsTruecolor checks if the terminal supports 24-bit color.
func SupportsTruecolor() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
	return strings.Contains(colorTerm, "truecolor") ||
		strings.Contains(colorTerm, "24bit") ||
		strings.Contains(term, "truecolor") ||
		strings.Contains(term, "24bit")
}

// Supports256Color checks if the terminal supports 256 colors.
func Supports256Color() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "256color")
}
