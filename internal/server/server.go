// ABOUTME: Single-port command dispatcher: serial accept loop, per-request workers, drain on stop
// ABOUTME: Matched routes run on their own goroutine; unmatched requests get the index page inline

package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harper/netcmd/internal/endpoint"
	"github.com/harper/netcmd/internal/event"
	"github.com/harper/netcmd/internal/index"
	"github.com/harper/netcmd/internal/logger"
	"github.com/harper/netcmd/internal/response"
	"github.com/sourcegraph/conc"
)

var log = logger.Tagged("dispatch")

// ErrAlreadyStarted is returned when Start or Serve is called twice.
var ErrAlreadyStarted = stderrors.New("server already started")

const (
	DefaultBacklog         = 1
	DefaultReadTimeout     = 5 * time.Second
	DefaultMaxRequestBytes = 1024
)

type Config struct {
	Host string
	// Port 0 binds an ephemeral port.
	Port int

	// Backlog caps pending, not yet accepted connections. The device keeps
	// it at 1 to bound memory.
	Backlog int

	// ReadTimeout bounds the single read of the request line.
	ReadTimeout time.Duration

	// SendTimeout bounds each response write.
	SendTimeout time.Duration

	// HandlerTimeout answers "error: handler timed out" and cancels the
	// handler context when a handler has not responded in time. 0 disables it.
	HandlerTimeout time.Duration

	// MaxRequestBytes sizes the buffer for the single request read.
	MaxRequestBytes int

	IndexTitle string
}

func (c Config) withDefaults() Config {
	if c.Backlog <= 0 {
		c.Backlog = DefaultBacklog
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = response.DefaultSendTimeout
	}
	if c.MaxRequestBytes <= 0 {
		c.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if c.IndexTitle == "" {
		c.IndexTitle = index.DefaultTitle
	}
	return c
}

// Addr is the host:port the server binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type Option func(*Server)

// WithDispatchHook runs hook synchronously before each matched request is
// handed to its worker. Panics in the hook are logged and ignored.
func WithDispatchHook(hook func(endpoint.Endpoint)) Option {
	return func(s *Server) { s.onDispatch = hook }
}

// WithObserver adds an event sink. May be given several times.
func WithObserver(o event.Observer) Option {
	return func(s *Server) { s.observers = append(s.observers, o) }
}

// WithWriter replaces the response writer built from SendTimeout.
func WithWriter(w *response.Writer) Option {
	return func(s *Server) { s.writer = w }
}

type Server struct {
	cfg        Config
	registry   *endpoint.Registry
	writer     *response.Writer
	onDispatch func(endpoint.Endpoint)
	observers  event.Fanout
	events     *eventQueue

	baseCtx    context.Context
	cancelBase context.CancelFunc

	mu       sync.Mutex
	ln       net.Listener
	loopDone chan struct{}
	closing  atomic.Bool
	workers  conc.WaitGroup
	inFlight atomic.Int64
}

func New(cfg Config, registry *endpoint.Registry, opts ...Option) *Server {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:        cfg,
		registry:   registry,
		writer:     response.NewWriter(cfg.SendTimeout),
		baseCtx:    ctx,
		cancelBase: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = newEventQueue(s.observers)
	return s
}

func (s *Server) Config() Config {
	return s.cfg
}

func (s *Server) Registry() *endpoint.Registry {
	return s.registry
}

// InFlight is the number of handlers currently running.
func (s *Server) InFlight() int64 {
	return s.inFlight.Load()
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the configured address and runs the accept loop in the
// background. It returns once the socket is listening.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	if err := applyBacklog(ln, s.cfg.Backlog); err != nil {
		log.Warn("could not apply backlog %d: %v", s.cfg.Backlog, err)
	}

	if err := s.attach(ln); err != nil {
		_ = ln.Close()
		return err
	}

	log.Info("listening on %s (backlog %d, %d endpoints)", ln.Addr(), s.cfg.Backlog, s.registry.Len())
	listInterfaces()

	go s.acceptLoop(ln)
	return nil
}

// Serve runs the accept loop on ln until Stop is called. Accept errors are
// retried with backoff; the loop only ends when the listener is closed.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.attach(ln); err != nil {
		return err
	}
	return s.acceptLoop(ln)
}

func (s *Server) attach(ln net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return ErrAlreadyStarted
	}
	s.ln = ln
	s.loopDone = make(chan struct{})
	go s.events.run()
	return nil
}

// Stop closes the listener, waits for in-flight handlers and then for their
// events to reach every observer. When ctx ends first, handler contexts are
// cancelled and ctx's error is returned.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	ln, loopDone := s.ln, s.loopDone
	s.mu.Unlock()

	if ln == nil || !s.closing.CompareAndSwap(false, true) {
		return nil
	}

	if err := ln.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		log.Warn("close listener: %v", err)
	}
	<-loopDone

	drained := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		s.cancelBase()
	case <-ctx.Done():
		log.Warn("stop deadline reached with %d handlers still running, cancelling them", s.InFlight())
		s.cancelBase()
		_ = s.events.close(ctx)
		return ctx.Err()
	}

	if err := s.events.close(ctx); err != nil {
		log.Warn("stop deadline reached before all events were delivered")
		return err
	}
	log.Info("stopped, all handlers drained")
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) error {
	defer close(s.loopDone)

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closing.Load() || stderrors.Is(err, net.ErrClosed) {
				return nil
			}

			backoff = nextBackoff(backoff)
			log.Warn("accept error: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.serveConn(conn)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}

func listInterfaces() {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Debug("list interfaces: %v", err)
		return
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			log.Debug("interface %s: %s", iface.Name, addr)
		}
	}
}
