// ABOUTME: On-board push button state exposed as ButtonStatus
// ABOUTME: Button edges arrive on a channel; the handler reads the last state under a lock

package apps

import (
	"fmt"
	"strings"
	"sync"

	"github.com/harper/netcmd/internal/device"
	"github.com/harper/netcmd/internal/endpoint"
)

type ButtonWeb struct {
	// Presses delivers button edges, true for pushed. May be nil.
	Presses <-chan bool
	// Indicator mirrors the button state. May be nil.
	Indicator device.Indicator

	mu      sync.Mutex
	pushed  bool
	started bool
}

func NewButtonWeb(presses <-chan bool, ind device.Indicator) *ButtonWeb {
	return &ButtonWeb{Presses: presses, Indicator: ind}
}

// Initialize starts following Presses until the channel is closed.
func (b *ButtonWeb) Initialize() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started || b.Presses == nil {
		return nil
	}
	b.started = true

	go func() {
		for pushed := range b.Presses {
			b.Set(pushed)
		}
	}()
	return nil
}

func (b *ButtonWeb) Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		endpoint.New("ButtonStatus", "Outputs the status of the on-board push button", false, b.status),
	}
}

// Set records the button state, logging transitions.
func (b *ButtonWeb) Set(pushed bool) {
	b.mu.Lock()
	changed := b.pushed != pushed
	b.pushed = pushed
	b.mu.Unlock()

	if changed {
		if pushed {
			log.Info("button pushed")
		} else {
			log.Info("button released")
		}
	}
	if b.Indicator != nil {
		b.Indicator.Set(pushed)
	}
}

func (b *ButtonWeb) Pushed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pushed
}

func (b *ButtonWeb) status(_ *endpoint.Context, args []string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fmt.Sprintf("Button status is %t, arguments: %s", b.pushed, strings.Join(args, ",")), nil
}
