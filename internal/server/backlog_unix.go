//go:build unix

package server

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// applyBacklog re-issues listen(2) on the bound socket so the kernel queue
// holds at most backlog pending connections instead of the runtime's
// somaxconn default.
func applyBacklog(ln net.Listener, backlog int) error {
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		return nil
	}

	raw, err := tl.SyscallConn()
	if err != nil {
		return fmt.Errorf("failed to get raw listener: %w", err)
	}

	var listenErr error
	if err := raw.Control(func(fd uintptr) {
		listenErr = unix.Listen(int(fd), backlog)
	}); err != nil {
		return fmt.Errorf("failed to control listener: %w", err)
	}
	if listenErr != nil {
		return fmt.Errorf("failed to set listen backlog: %w", listenErr)
	}
	return nil
}
