// ABOUTME: WebSocket client for the management API's live event stream
// ABOUTME: Decodes dispatch events onto a channel; read errors end the connection
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harper/netcmd/internal/event"
)

type EventClient struct {
	url    string
	conn   *websocket.Conn
	mu     sync.RWMutex
	events chan event.Event
	errors chan error
	done   chan struct{}
	closed bool
}

func NewEventClient(url string) *EventClient {
	return &EventClient{
		url:    url,
		events: make(chan event.Event, 100),
		errors: make(chan error, 10),
		done:   make(chan struct{}),
	}
}

func (c *EventClient) URL() string { return c.url }

func (c *EventClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return fmt.Errorf("client closed")
	default:
	}
	if c.conn != nil && !c.closed {
		return fmt.Errorf("already connected")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil) //nolint:bodyclose // websocket connection, not HTTP response
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	c.conn = conn
	c.closed = false

	go c.readLoop(conn)
	return nil
}

func (c *EventClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.closed
}

func (c *EventClient) Events() <-chan event.Event {
	return c.events
}

func (c *EventClient) Errors() <-chan error {
	return c.errors
}

func (c *EventClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *EventClient) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case c.errors <- fmt.Errorf("read: %w", err):
			case <-c.done:
			}
			return
		}

		var e event.Event
		if err := json.Unmarshal(msg, &e); err != nil {
			// skip anything that is not an event
			continue
		}

		select {
		case c.events <- e:
		case <-c.done:
			return
		}
	}
}
