// ABOUTME: Ordered endpoint registry with case-insensitive first-match lookup
// ABOUTME: Duplicate names are kept; the first registration wins on lookup

package endpoint

import (
	"strings"
	"sync"

	"github.com/harper/netcmd/internal/errors"
	"github.com/harper/netcmd/internal/logger"
)

var log = logger.Tagged("registry")

type Registry struct {
	mu        sync.RWMutex
	endpoints []Endpoint
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends ep. A name that is already registered is accepted but
// shadowed by the earlier registration.
func (r *Registry) Register(ep Endpoint) error {
	if strings.TrimSpace(ep.Name) == "" {
		return errors.NewRegistrationError(ep.Name, "name must not be empty")
	}
	if strings.Contains(ep.Name, "/") {
		return errors.NewRegistrationError(ep.Name, "name must be a single path segment")
	}
	if ep.Handler == nil {
		return errors.NewRegistrationError(ep.Name, "handler must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.endpoints {
		if strings.EqualFold(existing.Name, ep.Name) {
			log.Warn("endpoint %q registered twice, requests keep going to the first registration", ep.Name)
			break
		}
	}

	r.endpoints = append(r.endpoints, ep)
	return nil
}

// Add registers a function handler.
func (r *Registry) Add(name, description string, manual bool, fn ActionFunc) error {
	if fn == nil {
		return errors.NewRegistrationError(name, "handler must not be nil")
	}
	return r.Register(New(name, description, manual, fn))
}

// Match returns the first endpoint whose name equals route, ignoring case.
func (r *Registry) Match(route string) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ep := range r.endpoints {
		if strings.EqualFold(ep.Name, route) {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// List returns every endpoint in registration order.
func (r *Registry) List() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}
