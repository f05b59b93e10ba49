// ABOUTME: Monitor model: recent dispatch events, per-outcome counters and view state
// ABOUTME: Implements the Elm architecture Model for bubbletea
package monitor

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/netcmd/internal/event"
)

// MaxEvents bounds the scrollback.
const MaxEvents = 500

type Model struct {
	client *EventClient
	theme  Theme

	viewport viewport.Model
	width    int
	height   int

	events     []event.Event
	counts     map[event.Outcome]int
	status     string
	lastErr    string
	paused     bool
	errorsOnly bool
}

// NewModel builds a monitor reading from client. A nil client gives a model
// that only renders what it is fed, which the tests use.
func NewModel(client *EventClient, t Theme) Model {
	return Model{
		client:   client,
		theme:    t,
		viewport: viewport.New(80, 20),
		counts:   make(map[event.Outcome]int),
		status:   "connecting",
	}
}

func (m Model) Init() tea.Cmd {
	if m.client == nil {
		return nil
	}
	return m.connect()
}

// Events returns the retained events, oldest first.
func (m Model) Events() []event.Event {
	return m.events
}

func (m Model) Count(o event.Outcome) int {
	return m.counts[o]
}

func (m Model) Status() string {
	return m.status
}

func (m Model) Paused() bool {
	return m.paused
}

func (m Model) ErrorsOnly() bool {
	return m.errorsOnly
}

// visible applies the errors-only filter.
func (m Model) visible() []event.Event {
	if !m.errorsOnly {
		return m.events
	}
	out := make([]event.Event, 0, len(m.events))
	for _, e := range m.events {
		if e.Outcome == event.OutcomeError || e.Outcome == event.OutcomeTimeout {
			out = append(out, e)
		}
	}
	return out
}
