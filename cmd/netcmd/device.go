// ABOUTME: Builds the device: indicator, programs and the endpoint registry
// ABOUTME: Shared by serve and endpoints so both see the same route table

package main

import (
	"github.com/harper/netcmd/internal/apps"
	"github.com/harper/netcmd/internal/device"
	"github.com/harper/netcmd/internal/endpoint"
)

type deviceSet struct {
	registry *endpoint.Registry
	led      *device.LogIndicator
	presses  chan bool
}

func newDevice() (*deviceSet, error) {
	led := device.NewLogIndicator()
	// no physical button off-device; the channel stays open and idle
	presses := make(chan bool)

	reg := endpoint.NewRegistry()
	programs := apps.Defaults(
		apps.NewButtonWeb(presses, led),
		apps.NewCameraControl(apps.NewTestPattern(), led),
	)
	if err := apps.RegisterAll(reg, programs...); err != nil {
		return nil, err
	}

	return &deviceSet{registry: reg, led: led, presses: presses}, nil
}

// close stops the button follower.
func (d *deviceSet) close() {
	close(d.presses)
}
