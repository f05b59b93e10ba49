// ABOUTME: Update logic for the monitor (event stream messages and key bindings)
// ABOUTME: Implements the Elm architecture Update function
package monitor

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/netcmd/internal/event"
)

type EventMsg struct {
	Event event.Event
}

type StreamErrorMsg struct {
	Err error
}

type ConnectedMsg struct{}

func (m Model) connect() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		if err := c.Connect(context.Background()); err != nil {
			return StreamErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	if m.client == nil {
		return nil
	}
	c := m.client
	return func() tea.Msg {
		select {
		case e := <-c.Events():
			return EventMsg{Event: e}
		case err := <-c.Errors():
			return StreamErrorMsg{Err: err}
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.client != nil {
				_ = m.client.Close()
			}
			return m, tea.Quit

		case "p", " ":
			m.paused = !m.paused
			if !m.paused {
				m.refresh()
			}
			return m, nil

		case "e":
			m.errorsOnly = !m.errorsOnly
			m.refresh()
			return m, nil

		case "c":
			m.events = nil
			m.counts = make(map[event.Outcome]int)
			m.refresh()
			return m, nil
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ConnectedMsg:
		m.status = "connected"
		m.lastErr = ""
		return m, m.waitForEvent()

	case EventMsg:
		m.record(msg.Event)
		if !m.paused {
			m.refresh()
		}
		return m, m.waitForEvent()

	case StreamErrorMsg:
		m.status = "disconnected"
		m.lastErr = msg.Err.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) record(e event.Event) {
	m.counts[e.Outcome]++
	m.events = append(m.events, e)
	if len(m.events) > MaxEvents {
		m.events = m.events[len(m.events)-MaxEvents:]
	}
}

// updateSizes leaves one line for the header and one for the status bar.
func (m *Model) updateSizes() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderEvents())
	m.viewport.GotoBottom()
}
