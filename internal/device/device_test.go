package device

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/harper/netcmd/internal/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExclusive(t *testing.T) {
	cam := NewExclusive("camera")
	assert.Equal(t, "camera", cam.Name())

	release, err := cam.TryAcquire()
	require.NoError(t, err)
	assert.True(t, cam.Held())

	_, err = cam.TryAcquire()
	assert.ErrorIs(t, err, ErrBusy)

	release()
	release()
	assert.False(t, cam.Held())

	again, err := cam.TryAcquire()
	require.NoError(t, err)
	again()
}

func TestExclusiveUnderContention(t *testing.T) {
	cam := NewExclusive("camera")
	var winners atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := cam.TryAcquire(); err == nil {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	// nobody released, so exactly one caller got it
	assert.Equal(t, int32(1), winners.Load())
}

func TestPulseHook(t *testing.T) {
	led := NewLogIndicator()
	hook := PulseHook(led, 0)

	hook(endpoint.Endpoint{Name: "echo"})
	hook(endpoint.Endpoint{Name: "echo"})

	assert.Equal(t, int64(2), led.Pulses())
	assert.False(t, led.On())
}

func TestLogIndicatorCountsTransitions(t *testing.T) {
	led := NewLogIndicator()
	led.Set(true)
	led.Set(true)
	assert.True(t, led.On())
	led.Set(false)
	assert.Equal(t, int64(1), led.Pulses())
}
