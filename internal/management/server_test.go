package management

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harper/netcmd/internal/config"
	"github.com/harper/netcmd/internal/db"
	"github.com/harper/netcmd/internal/endpoint"
	"github.com/harper/netcmd/internal/event"
	ws "github.com/harper/netcmd/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	reg      *endpoint.Registry
	inFlight int64
}

func (f *fakeDispatcher) InFlight() int64              { return f.inFlight }
func (f *fakeDispatcher) Registry() *endpoint.Registry { return f.reg }

func newDispatcher(t *testing.T) *fakeDispatcher {
	t.Helper()
	reg := endpoint.NewRegistry()
	noop := func(*endpoint.Context, []string) (string, error) { return "", nil }
	require.NoError(t, reg.Add("echo", "Echoes arguments", false, noop))
	require.NoError(t, reg.Add("livecam.jpeg", "Camera stream", true, noop))
	return &fakeDispatcher{reg: reg, inFlight: 2}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(&config.Config{}, newDispatcher(t), nil, ws.NewHub(0))

	rec := get(t, srv, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.EqualValues(t, 2, health["endpoints"])
	assert.EqualValues(t, 2, health["in_flight"])
	assert.Equal(t, false, health["request_log"])
	assert.EqualValues(t, 0, health["subscribers"])
}

func TestConfigEndpoint(t *testing.T) {
	cfg := &config.Config{
		Server:     config.ServerConfig{Port: 80, Backlog: 1},
		Management: config.ManagementConfig{Port: 8082},
	}
	srv := NewServer(cfg, newDispatcher(t), nil, nil)

	rec := get(t, srv, "/api/config")
	require.Equal(t, http.StatusOK, rec.Code)

	var got config.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 80, got.Server.Port)
	assert.Equal(t, 8082, got.Management.Port)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEndpointsEndpoint(t *testing.T) {
	srv := NewServer(&config.Config{}, newDispatcher(t), nil, nil)

	rec := get(t, srv, "/api/endpoints")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "echo", list[0]["name"])
	assert.Equal(t, false, list[0]["manualSocket"])
	assert.Equal(t, "livecam.jpeg", list[1]["name"])
	assert.Equal(t, true, list[1]["manualSocket"])
}

func TestRequestsAndRoutes(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "requests.sqlite"))
	require.NoError(t, err)
	defer database.Close()

	now := time.Now()
	database.Observe(event.Event{ID: "1", Time: now, Route: "echo", Outcome: event.OutcomeOK})
	database.Observe(event.Event{ID: "2", Time: now.Add(time.Second), Route: "echo", Outcome: event.OutcomeError, Error: "boom"})
	database.Observe(event.Event{ID: "3", Time: now.Add(2 * time.Second), Route: "nope", Outcome: event.OutcomeIndex})

	srv := NewServer(&config.Config{}, newDispatcher(t), database, nil)

	rec := get(t, srv, "/api/requests?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []event.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "3", events[0].ID)
	assert.Equal(t, "boom", events[1].Error)

	rec = get(t, srv, "/api/routes")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats []db.RouteStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "echo", stats[0].Route)
	assert.Equal(t, int64(1), stats[0].Errors)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/requests?limit=zero").Code)
}

type failingLog struct{}

func (failingLog) RecentRequests(int) ([]event.Event, error) { return nil, stderrors.New("disk") }
func (failingLog) RouteStats() ([]db.RouteStat, error)        { return nil, stderrors.New("disk") }

func TestRequestLogUnavailable(t *testing.T) {
	disabled := NewServer(&config.Config{}, newDispatcher(t), nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, disabled, "/api/requests").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, disabled, "/api/routes").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, disabled, "/api/events").Code)

	broken := NewServer(&config.Config{}, newDispatcher(t), failingLog{}, nil)
	assert.Equal(t, http.StatusInternalServerError, get(t, broken, "/api/requests").Code)
	assert.Equal(t, http.StatusInternalServerError, get(t, broken, "/api/routes").Code)
}

func TestEventsStream(t *testing.T) {
	hub := ws.NewHub(0)
	srv := httptest.NewServer(NewServer(&config.Config{}, newDispatcher(t), nil, hub))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/events", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Observe(event.Event{ID: "live", Route: "echo", Outcome: event.OutcomeOK})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e event.Event
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, "live", e.ID)
}
