// ABOUTME: Exclusive ownership of a single peripheral shared by concurrent handlers
// ABOUTME: Non-blocking: a second caller is told the device is busy instead of queueing

package device

import (
	stderrors "errors"
	"sync"
)

// ErrBusy is returned by TryAcquire while another handler holds the device.
var ErrBusy = stderrors.New("device busy")

type Exclusive struct {
	name string
	mu   sync.Mutex
	held bool
}

func NewExclusive(name string) *Exclusive {
	return &Exclusive{name: name}
}

func (e *Exclusive) Name() string { return e.name }

// TryAcquire takes the device or returns ErrBusy. The returned release is
// safe to call more than once.
func (e *Exclusive) TryAcquire() (release func(), err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.held {
		return nil, ErrBusy
	}
	e.held = true

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			e.held = false
			e.mu.Unlock()
		})
	}, nil
}

func (e *Exclusive) Held() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held
}
