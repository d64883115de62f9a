// Package cli holds the terminal styling shared by the knobula commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#C8873A") // Knobula brass
	AccentColor  = lipgloss.Color("#FFB347") // Tube glow
	MutedColor   = lipgloss.Color("#888888") // Gray
	TextColor    = lipgloss.Color("#FFFFFF") // White
	GoodColor    = lipgloss.Color("#00AA00")
	WarnColor    = lipgloss.Color("#FFA500")
	BadColor     = lipgloss.Color("#D03030")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(BadColor)

	HeadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				Italic(true)
)

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("Knobula"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// KeyValue renders "key: value" with the key padded to width.
func KeyValue(key string, width int, value string) string {
	pad := max(0, width-lipgloss.Width(key))
	return KeyStyle.Render(key+":") + strings.Repeat(" ", pad+1) + ValueStyle.Render(value)
}

// PrintKeyValues writes aligned key-value rows.
func PrintKeyValues(w io.Writer, rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}
	for _, r := range rows {
		fmt.Fprintln(w, KeyValue(r[0], width, r[1]))
	}
}
