// ABOUTME: Writes a handler's text result as the raw response body and closes the socket
// ABOUTME: Transport failures are logged at debug and discarded; the connection is done either way

package response

import (
	"net"
	"time"

	"github.com/harper/netcmd/internal/errors"
	"github.com/harper/netcmd/internal/logger"
)

// DefaultSendTimeout matches the firmware's 5s socket send timeout.
const DefaultSendTimeout = 5 * time.Second

var log = logger.Tagged("response")

type Writer struct {
	timeout time.Duration
}

// NewWriter returns a Writer bounding each write by timeout. A non-positive
// timeout falls back to DefaultSendTimeout.
func NewWriter(timeout time.Duration) *Writer {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Writer{timeout: timeout}
}

func (w *Writer) Timeout() time.Duration {
	return w.timeout
}

// Send writes text as UTF-8 and closes conn. It reports the number of body
// bytes written; errors are never returned.
func (w *Writer) Send(conn net.Conn, text string) int {
	if conn == nil {
		return 0
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug("close %s: %v", remote(conn), err)
		}
	}()

	if text == "" {
		return 0
	}

	if err := conn.SetWriteDeadline(time.Now().Add(w.timeout)); err != nil {
		log.Debug("set write deadline %s: %v", remote(conn), err)
	}

	n, err := conn.Write([]byte(text))
	if err != nil {
		log.Debug("write %s: wrote %d of %d bytes: %v", remote(conn), n, len(text), err)
	}
	return n
}

// SendError writes the "error: ..." body for err and closes conn.
func (w *Writer) SendError(conn net.Conn, err error) int {
	return w.Send(conn, errors.ResponseBody(err))
}

func remote(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
