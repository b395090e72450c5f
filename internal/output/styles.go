package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for decode output
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - true flags
	ErrorColor   = lipgloss.Color("#FF5555") // Red - skipped fields
	WarningColor = lipgloss.Color("#FFA500") // Orange - out-of-range enums
	MutedColor   = lipgloss.Color("#626262") // Gray - offsets, secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

var (
	// HeaderTitleStyle is for the revision name
	HeaderTitleStyle = lipgloss.NewStyle().Foreground(TextColor).Bold(true).PaddingLeft(2)

	// HeaderSubtitleStyle is for the catalog description
	HeaderSubtitleStyle = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)

	// HeaderParamKeyStyle is for parameter keys (e.g., "Length:")
	HeaderParamKeyStyle = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)

	// HeaderParamValueStyle is for parameter values
	HeaderParamValueStyle = lipgloss.NewStyle().Foreground(TextColor)

	// OffsetStyle is for the position and raw index columns
	OffsetStyle = lipgloss.NewStyle().Foreground(MutedColor)

	// PathStyle is for field paths
	PathStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)

	// ValueStyle is for decoded values
	ValueStyle = lipgloss.NewStyle().Foreground(TextColor)

	// TrueStyle is for flags that are set
	TrueStyle = lipgloss.NewStyle().Foreground(SuccessColor)

	// WarningStyle is for out-of-range values and their messages
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)

	// SkippedStyle is for fields cut off by the end of the frame
	SkippedStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	// SectionTitleStyle is for "Warnings" and "Skipped" headers
	SectionTitleStyle = lipgloss.NewStyle().Foreground(MutedColor).Bold(true)
)

// Markers
const (
	WarningMarker = "!"
	SkippedMarker = "✗"
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// HeaderBorderStyle returns the border style for the decode header
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2) // Account for border characters
}
