// ABOUTME: Management API for health, configuration, endpoint listing and request history
// ABOUTME: Served on its own port, separate from the single-shot command socket

package management

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/harper/netcmd/internal/config"
	"github.com/harper/netcmd/internal/db"
	"github.com/harper/netcmd/internal/endpoint"
	"github.com/harper/netcmd/internal/event"
	"github.com/harper/netcmd/internal/logger"
)

var log = logger.Tagged("management")

// Dispatcher is the part of the command server the API reports on.
type Dispatcher interface {
	InFlight() int64
	Registry() *endpoint.Registry
}

// RequestLog is the history backing /api/requests and /api/routes.
type RequestLog interface {
	RecentRequests(limit int) ([]event.Event, error)
	RouteStats() ([]db.RouteStat, error)
}

// Events is the live stream mounted at /api/events.
type Events interface {
	http.Handler
	Clients() int
}

type Server struct {
	config     *config.Config
	dispatcher Dispatcher
	requests   RequestLog
	events     Events
	mux        *http.ServeMux
}

// NewServer wires the API. requests and events may be nil when the request
// log or the live stream is disabled.
func NewServer(cfg *config.Config, d Dispatcher, requests RequestLog, events Events) *Server {
	s := &Server{
		config:     cfg,
		dispatcher: d,
		requests:   requests,
		events:     events,
		mux:        http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/config", s.handleConfig)
	s.mux.HandleFunc("/api/endpoints", s.handleEndpoints)
	s.mux.HandleFunc("/api/requests", s.handleRequests)
	s.mux.HandleFunc("/api/routes", s.handleRoutes)
	s.mux.HandleFunc("/api/events", s.handleEvents)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":      "healthy",
		"endpoints":   s.dispatcher.Registry().Len(),
		"in_flight":   s.dispatcher.InFlight(),
		"request_log": s.requests != nil,
	}
	if s.events != nil {
		health["subscribers"] = s.events.Clients()
	}
	writeJSON(w, health)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.config)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type endpointResponse struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		ManualSocket bool   `json:"manualSocket"`
	}

	list := s.dispatcher.Registry().List()
	response := make([]endpointResponse, 0, len(list))
	for _, ep := range list {
		response = append(response, endpointResponse{
			Name:         ep.Name,
			Description:  ep.Description,
			ManualSocket: ep.ManualSocket,
		})
	}
	writeJSON(w, response)
}

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.requests == nil {
		http.Error(w, "request log disabled", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := s.requests.RecentRequests(limit)
	if err != nil {
		log.Error("recent requests: %v", err)
		http.Error(w, "failed to get requests", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.requests == nil {
		http.Error(w, "request log disabled", http.StatusServiceUnavailable)
		return
	}

	stats, err := s.requests.RouteStats()
	if err != nil {
		log.Error("route stats: %v", err)
		http.Error(w, "failed to get route stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.Error(w, "event stream disabled", http.StatusServiceUnavailable)
		return
	}
	s.events.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	// Enable CORS for browser dashboards
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("encode response: %v", err)
	}
}
