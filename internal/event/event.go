// ABOUTME: Dispatch events emitted once per accepted connection
// ABOUTME: Consumed by the SQLite request log, the websocket hub and the terminal monitor

package event

import (
	"time"

	"github.com/harper/netcmd/internal/logger"
)

type Outcome string

const (
	// OutcomeIndex means no route matched and the index page was served.
	OutcomeIndex   Outcome = "index"
	OutcomeOK      Outcome = "ok"
	OutcomeManual  Outcome = "manual"
	OutcomeError   Outcome = "error"
	OutcomeTimeout Outcome = "timeout"
	// OutcomeDropped means the peer sent nothing before the read failed.
	OutcomeDropped Outcome = "dropped"
)

type Event struct {
	ID        string        `json:"id"`
	Time      time.Time     `json:"time"`
	Remote    string        `json:"remote"`
	Route     string        `json:"route"`
	Args      []string      `json:"args"`
	Outcome   Outcome       `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	ErrorType string        `json:"error_type,omitempty"`
	Bytes     int           `json:"bytes"`
	Duration  time.Duration `json:"duration_ns"`
}

// ShortID is the id prefix used in log lines.
func (e Event) ShortID() string {
	if len(e.ID) > 8 {
		return e.ID[:8]
	}
	return e.ID
}

// Observer receives every completed event. The server calls Observe from a
// single delivery goroutine, in completion order.
type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Fanout delivers to each observer in order. A panicking observer is logged
// and does not stop delivery to the rest.
type Fanout []Observer

func (f Fanout) Observe(e Event) {
	for _, o := range f {
		deliver(o, e)
	}
}

func deliver(o Observer, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[%s] event observer panicked: %v", e.ShortID(), r)
		}
	}()
	o.Observe(e)
}
