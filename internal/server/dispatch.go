// ABOUTME: Per-connection pipeline: read, parse, match, then dispatch or serve the index page
// ABOUTME: Workers isolate handler failures, enforce the handler timeout and honour manual socket mode

package server

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/harper/netcmd/internal/endpoint"
	"github.com/harper/netcmd/internal/errors"
	"github.com/harper/netcmd/internal/event"
	"github.com/harper/netcmd/internal/index"
	"github.com/harper/netcmd/internal/request"
	"github.com/sourcegraph/conc/panics"
)

// match is one parsed request bound to the endpoint it resolved to. The
// arguments live here, never on the shared Endpoint.
type match struct {
	endpoint endpoint.Endpoint
	request  *request.Request
}

// interpret parses raw and looks the route up. It returns the parsed
// request even when no endpoint matched so the event can name the route.
func (s *Server) interpret(raw []byte) (*match, *request.Request, error) {
	req, err := request.Parse(raw)
	if err != nil {
		return nil, nil, errors.NewParseError("request line", err)
	}

	ep, ok := s.registry.Match(req.Route)
	if !ok {
		return nil, req, nil
	}
	return &match{endpoint: ep, request: req}, req, nil
}

// serveConn runs on the accept loop. Everything that can block for long
// happens on the worker.
func (s *Server) serveConn(conn net.Conn) {
	ev := event.Event{
		ID:     uuid.New().String(),
		Time:   time.Now(),
		Remote: conn.RemoteAddr().String(),
		Args:   []string{},
	}

	raw, err := s.readRequest(conn)
	if err != nil {
		log.Debug("[%s] read from %s: %v", ev.ShortID(), ev.Remote, err)
		_ = conn.Close()
		ev.Outcome = event.OutcomeDropped
		ev.Error = err.Error()
		s.finish(ev)
		return
	}

	m, req, perr := s.interpret(raw)
	if req != nil {
		ev.Route = req.Route
		ev.Args = append([]string{}, req.Args...)
	}
	if m == nil {
		if perr != nil {
			log.Debug("[%s] %v", ev.ShortID(), perr)
			ev.ErrorType = errors.TypeOf(perr)
		}
		s.serveIndex(conn, ev)
		return
	}

	s.pulse(m.endpoint, ev)

	s.workers.Go(func() { s.dispatch(conn, m, ev) })
}

// readRequest performs the single bounded read the request line must fit in.
func (s *Server) readRequest(conn net.Conn) ([]byte, error) {
	if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
		log.Debug("set read deadline: %v", err)
	}

	buf := make([]byte, s.cfg.MaxRequestBytes)
	n, err := conn.Read(buf)
	if n == 0 && err != nil {
		return nil, err
	}

	// the rest of the exchange is bounded by the write deadline only
	_ = conn.SetReadDeadline(time.Time{})
	return buf[:n], nil
}

func (s *Server) serveIndex(conn net.Conn, ev event.Event) {
	page := index.Render(s.cfg.IndexTitle, s.registry.List())
	ev.Bytes = s.writer.Send(conn, page)
	ev.Outcome = event.OutcomeIndex
	s.finish(ev)
}

func (s *Server) pulse(ep endpoint.Endpoint, ev event.Event) {
	if s.onDispatch == nil {
		return
	}
	if r := panics.Try(func() { s.onDispatch(ep) }); r != nil {
		log.Warn("[%s] dispatch hook panicked: %v", ev.ShortID(), r.Value)
	}
}

// handlerResult is what one handler invocation produced.
type handlerResult struct {
	body string
	err  error
}

// dispatch runs on its own goroutine and is the isolation boundary: nothing
// the handler does escapes it.
func (s *Server) dispatch(conn net.Conn, m *match, ev event.Event) {
	name := m.endpoint.Name
	ctx, cancel := s.handlerContext()
	defer cancel()

	c := endpoint.NewContext(ctx, conn, m.endpoint, ev.ID)
	log.Debug("[%s] dispatching %s args=%v", ev.ShortID(), name, m.request.Args)

	var res handlerResult
	if timeout := s.cfg.HandlerTimeout; timeout > 0 {
		// the handler gets its own tracked goroutine so this worker can
		// answer the client when it overruns
		done := make(chan handlerResult, 1)
		s.workers.Go(func() { done <- s.invoke(c, m, ev) })

		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case res = <-done:
		case <-timer.C:
			if c.Claim() {
				cancel()
				s.timedOut(conn, ev, name, timeout)
				return
			}
			// the handler took over the connection; wait for it
			res = <-done
		}
	} else {
		res = s.invoke(c, m, ev)
	}

	switch {
	case c.ManualSent():
		// the handler owns the response; only make sure the socket is released
		if cerr := conn.Close(); cerr != nil {
			log.Debug("[%s] close after manual response: %v", ev.ShortID(), cerr)
		}
		ev.Outcome = event.OutcomeManual
		if res.err != nil {
			log.Warn("[%s] %v (after taking over the connection, nothing more sent)", ev.ShortID(), res.err)
			ev.Error = res.err.Error()
			ev.ErrorType = errors.TypeOf(res.err)
		}

	case !c.Claim():
		log.Debug("[%s] response slot for %s already taken, result dropped", ev.ShortID(), name)
		return

	case res.err != nil:
		log.Warn("[%s] %v", ev.ShortID(), res.err)
		ev.Bytes = s.writer.SendError(conn, res.err)
		ev.Outcome = event.OutcomeError
		ev.Error = res.err.Error()
		ev.ErrorType = errors.TypeOf(res.err)

	default:
		ev.Bytes = s.writer.Send(conn, res.body)
		ev.Outcome = event.OutcomeOK
	}

	s.finish(ev)
}

// invoke calls the handler with panics converted to errors.
func (s *Server) invoke(c *endpoint.Context, m *match, ev event.Event) handlerResult {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	name := m.endpoint.Name
	var res handlerResult
	if r := panics.Try(func() { res.body, res.err = m.endpoint.Handler.Invoke(c, m.request.Args) }); r != nil {
		log.Error("[%s] handler %s panicked: %v\n%s", ev.ShortID(), name, r.Value, r.Stack)
		res.err = errors.NewHandlerPanicError(name, r.Value, r.Stack)
	} else if res.err != nil {
		res.err = errors.NewHandlerError(name, res.err)
	}
	return res
}

func (s *Server) timedOut(conn net.Conn, ev event.Event, name string, timeout time.Duration) {
	terr := errors.NewHandlerTimeoutError(name, timeout)
	log.Warn("[%s] %s: %v", ev.ShortID(), name, terr)

	ev.Bytes = s.writer.SendError(conn, terr)
	ev.Outcome = event.OutcomeTimeout
	ev.Error = terr.Error()
	ev.ErrorType = terr.Type()
	s.finish(ev)
}

func (s *Server) finish(ev event.Event) {
	ev.Duration = time.Since(ev.Time)
	log.Debug("[%s] %s %q -> %s in %v", ev.ShortID(), ev.Remote, ev.Route, ev.Outcome, ev.Duration)
	if len(s.observers) > 0 && !s.events.push(ev) {
		log.Debug("[%s] event arrived after stop, not delivered", ev.ShortID())
	}
}

// handlerContext derives from the server context so Stop can cancel
// handlers that outlive the drain deadline.
func (s *Server) handlerContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(s.baseCtx)
}
