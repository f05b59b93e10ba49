// ABOUTME: Colors and lipgloss styles for the monitor
// ABOUTME: Each dispatch outcome gets its own color
package monitor

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/netcmd/internal/event"
)

type Theme struct {
	Primary    lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Stream     lipgloss.Color
	Dim        lipgloss.Color
}

var DefaultTheme = Theme{
	Primary:    lipgloss.Color("#7C3AED"), // Purple
	Background: lipgloss.Color("#1E1E2E"), // Dark gray
	Foreground: lipgloss.Color("#CDD6F4"), // Light gray
	Success:    lipgloss.Color("#A6E3A1"), // Green
	Warning:    lipgloss.Color("#F9E2AF"), // Yellow
	Error:      lipgloss.Color("#F38BA8"), // Red
	Stream:     lipgloss.Color("#94E2D5"), // Cyan
	Dim:        lipgloss.Color("#6C7086"), // Dim gray
}

// LightTheme follows the firmware index page palette.
var LightTheme = Theme{
	Primary:    lipgloss.Color("#0E5F8A"),
	Background: lipgloss.Color("#F4F4F4"),
	Foreground: lipgloss.Color("#333333"),
	Success:    lipgloss.Color("#2E7D32"),
	Warning:    lipgloss.Color("#B58900"),
	Error:      lipgloss.Color("#C62828"),
	Stream:     lipgloss.Color("#00838F"),
	Dim:        lipgloss.Color("#888888"),
}

func GetTheme(name string) Theme {
	if name == "light" {
		return LightTheme
	}
	return DefaultTheme
}

func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Padding(0, 1)
}

func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.Primary).
		Foreground(t.Background).
		Padding(0, 1)
}

func (t Theme) DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Dim)
}

func (t Theme) OutcomeStyle(o event.Outcome) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch o {
	case event.OutcomeOK:
		return style.Foreground(t.Success)
	case event.OutcomeManual:
		return style.Foreground(t.Stream)
	case event.OutcomeTimeout:
		return style.Foreground(t.Warning)
	case event.OutcomeError:
		return style.Foreground(t.Error)
	default:
		return style.Foreground(t.Dim)
	}
}
