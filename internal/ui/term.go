package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/javiermolinar/notecal/internal/config"
)

// Color definitions for consistent styling across the UI.
var (
	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Slot times: cyan
	colorTime = color.New(color.FgCyan)

	// Warnings: yellow to make it pop
	colorWarn = color.New(color.FgYellow)

	// Success: green
	colorOK = color.New(color.FgGreen)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
	lipgloss.SetColorProfile(termenv.Ascii)
}

// EnableColor forces color output even when stdout is not a terminal.
func EnableColor() {
	color.NoColor = false
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// applyColorMode sets terminal colors from the configured mode.
// "auto" leaves the libraries' own terminal detection in place.
func applyColorMode(mode string) {
	switch mode {
	case config.ColorNever:
		DisableColor()
	case config.ColorAlways:
		EnableColor()
	}
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatTime(s string) string {
	return colorTime.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

func formatOK(s string) string {
	return colorOK.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// swatch renders a block in a group's calendar color.
func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■")
}

// fit truncates s to width terminal cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
