// ABOUTME: View rendering for the monitor
// ABOUTME: Header with counters, scrolling event list, status bar with key hints
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/harper/netcmd/internal/event"
)

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.renderStatusBar())
	return sb.String()
}

func (m Model) renderHeader() string {
	parts := []string{"netcmd monitor"}
	for _, o := range []event.Outcome{
		event.OutcomeOK, event.OutcomeManual, event.OutcomeError,
		event.OutcomeTimeout, event.OutcomeIndex, event.OutcomeDropped,
	} {
		parts = append(parts, fmt.Sprintf("%s %d", m.theme.OutcomeStyle(o).Render(string(o)), m.counts[o]))
	}
	return m.theme.HeaderStyle().Render(strings.Join(parts, "  "))
}

func (m Model) renderEvents() string {
	events := m.visible()
	if len(events) == 0 {
		return m.theme.DimStyle().Render("waiting for requests...")
	}

	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, m.formatEvent(e))
	}
	return strings.Join(lines, "\n")
}

func (m Model) formatEvent(e event.Event) string {
	route := "/" + e.Route
	if len(e.Args) > 0 {
		route += "/" + strings.Join(e.Args, "/")
	}

	line := fmt.Sprintf("%s %-7s %-32s %-21s %6dB %v",
		m.theme.DimStyle().Render(e.Time.Format("15:04:05")),
		m.theme.OutcomeStyle(e.Outcome).Render(string(e.Outcome)),
		route,
		e.Remote,
		e.Bytes,
		e.Duration.Round(100*time.Microsecond),
	)
	if e.Error != "" {
		line += "  " + m.theme.OutcomeStyle(event.OutcomeError).Render(e.Error)
	}
	return line
}

func (m Model) renderStatusBar() string {
	status := m.status
	if m.lastErr != "" {
		status += ": " + m.lastErr
	}

	var flags []string
	if m.paused {
		flags = append(flags, "paused")
	}
	if m.errorsOnly {
		flags = append(flags, "errors only")
	}
	if len(flags) > 0 {
		status += " [" + strings.Join(flags, ", ") + "]"
	}

	content := fmt.Sprintf("%s | p: pause, e: errors, c: clear, q: quit", status)
	style := m.theme.StatusBarStyle()
	if m.width > 2 {
		style = style.Width(m.width)
	}
	return style.Render(content)
}
