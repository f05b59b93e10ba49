// ABOUTME: Status indicator pulsed once for every dispatched request
// ABOUTME: LogIndicator stands in for the on-board LED when running off-device

package device

import (
	"sync/atomic"
	"time"

	"github.com/harper/netcmd/internal/endpoint"
	"github.com/harper/netcmd/internal/logger"
)

// DefaultPulse is how long the indicator stays lit per request.
const DefaultPulse = 50 * time.Millisecond

// Indicator is a binary output such as an LED.
type Indicator interface {
	Set(on bool)
}

// PulseHook returns a dispatch hook that lights ind for d before each
// matched request is handed to its worker.
func PulseHook(ind Indicator, d time.Duration) func(endpoint.Endpoint) {
	return func(endpoint.Endpoint) {
		ind.Set(true)
		if d > 0 {
			time.Sleep(d)
		}
		ind.Set(false)
	}
}

// LogIndicator writes state changes to the debug log and counts pulses.
type LogIndicator struct {
	log    logger.Logger
	on     atomic.Bool
	pulses atomic.Int64
}

func NewLogIndicator() *LogIndicator {
	return &LogIndicator{log: logger.Tagged("led")}
}

func (l *LogIndicator) Set(on bool) {
	if on && !l.on.Load() {
		l.pulses.Add(1)
	}
	l.on.Store(on)
	if on {
		l.log.Debug("on")
	} else {
		l.log.Debug("off")
	}
}

func (l *LogIndicator) On() bool { return l.on.Load() }

// Pulses is the number of off to on transitions seen.
func (l *LogIndicator) Pulses() int64 { return l.pulses.Load() }
