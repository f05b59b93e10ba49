// ABOUTME: Per-request dispatch context handed to endpoint handlers
// ABOUTME: Owns the single response slot that keeps one response per connection

package endpoint

import (
	"context"
	stderrors "errors"
	"net"
	"sync/atomic"
)

// ErrAlreadyResponded is returned by Hijack when the dispatcher has already
// answered the connection, e.g. after a handler timeout.
var ErrAlreadyResponded = stderrors.New("response already sent on this connection")

const (
	slotOpen int32 = iota
	slotDispatcher
	slotManual
)

// Context is created per request and owned by the worker running it.
type Context struct {
	ctx       context.Context
	conn      net.Conn
	endpoint  Endpoint
	requestID string
	slot      atomic.Int32
}

func NewContext(ctx context.Context, conn net.Conn, ep Endpoint, requestID string) *Context {
	return &Context{
		ctx:       ctx,
		conn:      conn,
		endpoint:  ep,
		requestID: requestID,
	}
}

// Context is cancelled when the handler times out or the server stops.
// Streaming handlers should watch it.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Conn returns the live connection. Writing to it is only valid after Hijack.
func (c *Context) Conn() net.Conn {
	return c.conn
}

func (c *Context) Endpoint() Endpoint {
	return c.endpoint
}

func (c *Context) RequestID() string {
	return c.requestID
}

// Hijack switches the request to manual socket mode: the dispatcher will not
// write anything, and the handler owns the response on the returned conn.
// Calling it twice is fine.
func (c *Context) Hijack() (net.Conn, error) {
	if c.slot.CompareAndSwap(slotOpen, slotManual) || c.slot.Load() == slotManual {
		return c.conn, nil
	}
	return nil, ErrAlreadyResponded
}

// ManualSent reports whether the handler took over the connection.
func (c *Context) ManualSent() bool {
	return c.slot.Load() == slotManual
}

// Claim reserves the response for the dispatcher. Exactly one caller, the
// dispatcher or a Hijack, wins; Claim reports whether this call did.
func (c *Context) Claim() bool {
	return c.slot.CompareAndSwap(slotOpen, slotDispatcher)
}
