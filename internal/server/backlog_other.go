//go:build !unix

package server

import "net"

// applyBacklog is a no-op where listen(2) cannot be re-issued; the
// platform default backlog applies.
func applyBacklog(ln net.Listener, backlog int) error {
	log.Debug("listen backlog %d not applied on this platform", backlog)
	return nil
}
