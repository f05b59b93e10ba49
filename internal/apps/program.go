// ABOUTME: Device programs: groups of endpoints that share setup and peripheral state
// ABOUTME: RegisterAll initializes each program and registers its endpoints in order

package apps

import (
	"fmt"

	"github.com/harper/netcmd/internal/endpoint"
	"github.com/harper/netcmd/internal/logger"
)

var log = logger.Tagged("apps")

// Program is a unit of device functionality exposed over the command socket.
type Program interface {
	// Initialize runs once before any endpoint is reachable.
	Initialize() error
	Endpoints() []endpoint.Endpoint
}

// RegisterAll initializes programs in order and registers their endpoints.
// It stops at the first failure.
func RegisterAll(reg *endpoint.Registry, programs ...Program) error {
	for _, p := range programs {
		if err := p.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize %T: %w", p, err)
		}
		for _, ep := range p.Endpoints() {
			if err := reg.Register(ep); err != nil {
				return fmt.Errorf("failed to register %T: %w", p, err)
			}
			log.Debug("registered %s (%T)", ep.Name, p)
		}
	}
	return nil
}

// Defaults is the stock program set: the test page, button status, echo and
// the camera stream.
func Defaults(button *ButtonWeb, camera *CameraControl) []Program {
	return []Program{
		BasicPage{},
		button,
		Echo{},
		camera,
	}
}
