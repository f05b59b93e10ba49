// ABOUTME: Unit tests for monitor update logic and rendering
// ABOUTME: Feeds messages straight into Update without a live stream
package monitor

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/netcmd/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sample(id string, o event.Outcome) EventMsg {
	return EventMsg{Event: event.Event{
		ID: id, Time: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Remote: "10.0.0.9:4000", Route: "echo", Args: []string{"a", "b"},
		Outcome: o, Bytes: 3, Duration: time.Millisecond,
	}}
}

func TestInitWithoutClient(t *testing.T) {
	m := NewModel(nil, DefaultTheme)
	assert.Nil(t, m.Init())
	assert.Equal(t, "connecting", m.Status())
}

func TestEventsAreCountedAndRendered(t *testing.T) {
	m := NewModel(nil, DefaultTheme)
	m = feed(t, m,
		tea.WindowSizeMsg{Width: 120, Height: 30},
		ConnectedMsg{},
		sample("1", event.OutcomeOK),
		sample("2", event.OutcomeOK),
		sample("3", event.OutcomeError),
	)

	assert.Equal(t, "connected", m.Status())
	assert.Len(t, m.Events(), 3)
	assert.Equal(t, 2, m.Count(event.OutcomeOK))
	assert.Equal(t, 1, m.Count(event.OutcomeError))

	view := m.View()
	assert.Contains(t, view, "netcmd monitor")
	assert.Contains(t, view, "/echo/a/b")
	assert.Contains(t, view, "10.0.0.9:4000")
}

func TestErrorsOnlyFilter(t *testing.T) {
	m := NewModel(nil, DefaultTheme)
	ok := sample("1", event.OutcomeOK)
	ok.Event.Route = "fine"
	bad := sample("2", event.OutcomeTimeout)
	bad.Event.Route = "slow"
	bad.Event.Error = "handler timed out after 1s"

	m = feed(t, m, tea.WindowSizeMsg{Width: 120, Height: 30}, ok, bad, key("e"))

	assert.True(t, m.ErrorsOnly())
	view := m.View()
	assert.NotContains(t, view, "/fine")
	assert.Contains(t, view, "/slow")
	assert.Contains(t, view, "errors only")

	m = feed(t, m, key("e"))
	assert.Contains(t, m.View(), "/fine")
}

func TestPauseFreezesView(t *testing.T) {
	m := NewModel(nil, DefaultTheme)
	m = feed(t, m, tea.WindowSizeMsg{Width: 120, Height: 30}, key("p"))
	require.True(t, m.Paused())

	late := sample("1", event.OutcomeOK)
	late.Event.Route = "late"
	m = feed(t, m, late)

	assert.Equal(t, 1, m.Count(event.OutcomeOK))
	assert.NotContains(t, m.View(), "/late")

	m = feed(t, m, key("p"))
	assert.Contains(t, m.View(), "/late")
}

func TestClear(t *testing.T) {
	m := NewModel(nil, DefaultTheme)
	m = feed(t, m, sample("1", event.OutcomeOK), key("c"))

	assert.Empty(t, m.Events())
	assert.Equal(t, 0, m.Count(event.OutcomeOK))
	assert.Contains(t, m.View(), "waiting for requests")
}

func TestScrollbackIsBounded(t *testing.T) {
	m := NewModel(nil, DefaultTheme)
	for i := 0; i < MaxEvents+10; i++ {
		m = feed(t, m, sample(fmt.Sprint(i), event.OutcomeIndex))
	}

	require.Len(t, m.Events(), MaxEvents)
	assert.Equal(t, "10", m.Events()[0].ID)
	assert.Equal(t, MaxEvents+10, m.Count(event.OutcomeIndex))
}

func TestStreamError(t *testing.T) {
	m := NewModel(nil, DefaultTheme)
	m = feed(t, m, ConnectedMsg{}, StreamErrorMsg{Err: errors.New("read: connection reset")})

	assert.Equal(t, "disconnected", m.Status())
	assert.Contains(t, m.View(), "connection reset")
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}} {
		m := NewModel(nil, DefaultTheme)
		_, cmd := m.Update(k)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestGetTheme(t *testing.T) {
	assert.Equal(t, LightTheme, GetTheme("light"))
	assert.Equal(t, DefaultTheme, GetTheme("anything"))
}
