// ABOUTME: serve command: runs the command socket plus the optional management API
// ABOUTME: Wires the request log and event hub as dispatch observers and drains on SIGINT/SIGTERM

package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/harper/netcmd/internal/config"
	"github.com/harper/netcmd/internal/db"
	"github.com/harper/netcmd/internal/device"
	"github.com/harper/netcmd/internal/logger"
	"github.com/harper/netcmd/internal/management"
	"github.com/harper/netcmd/internal/server"
	"github.com/harper/netcmd/internal/websocket"
	"github.com/spf13/cobra"
)

var drainTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the command server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&drainTimeout, "drain-timeout", 10*time.Second,
		"How long to wait for running handlers on shutdown before cancelling them")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	if err := rt.start(ctx); err != nil {
		rt.close()
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	return rt.stop(stopCtx)
}

// runtime is everything serve starts, in start order.
type runtime struct {
	cfg    *config.Config
	device *deviceSet
	db     *db.DB
	hub    *websocket.Hub
	server *server.Server

	mgmt     *http.Server
	mgmtLn   net.Listener
	mgmtDone chan error
}

func newRuntime(cfg *config.Config) (*runtime, error) {
	dev, err := newDevice()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, device: dev}

	var opts []server.Option
	if cfg.Server.StatusIndicator {
		opts = append(opts, server.WithDispatchHook(device.PulseHook(dev.led, device.DefaultPulse)))
	}

	if cfg.Database.Path != "" {
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			dev.close()
			return nil, fmt.Errorf("failed to open request log: %w", err)
		}
		rt.db = database
		opts = append(opts, server.WithObserver(database))
	}

	if cfg.Management.Enabled {
		rt.hub = websocket.NewHub(0)
		opts = append(opts, server.WithObserver(rt.hub))
	}

	rt.server = server.New(cfg.ServerSettings(), dev.registry, opts...)
	return rt, nil
}

func (rt *runtime) start(ctx context.Context) error {
	if err := rt.server.Start(ctx); err != nil {
		return err
	}

	if !rt.cfg.Management.Enabled {
		return nil
	}

	var requests management.RequestLog
	if rt.db != nil {
		requests = rt.db
	}
	api := management.NewServer(rt.cfg, rt.server, requests, rt.hub)

	ln, err := net.Listen("tcp", rt.cfg.ManagementAddr())
	if err != nil {
		_ = rt.server.Stop(ctx)
		return fmt.Errorf("failed to listen on %s: %w", rt.cfg.ManagementAddr(), err)
	}
	rt.mgmtLn = ln
	rt.mgmt = &http.Server{Handler: api, ReadHeaderTimeout: 5 * time.Second}
	rt.mgmtDone = make(chan error, 1)

	go func() {
		err := rt.mgmt.Serve(ln)
		if stderrors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		rt.mgmtDone <- err
	}()
	logger.Info("management API on http://%s", ln.Addr())
	return nil
}

// stop drains the command server first so every event reaches the request
// log and the hub before they close.
func (rt *runtime) stop(ctx context.Context) error {
	err := rt.server.Stop(ctx)

	if rt.mgmt != nil {
		if rt.hub != nil {
			rt.hub.Close()
		}
		if serr := rt.mgmt.Shutdown(ctx); serr != nil {
			logger.Warn("management shutdown: %v", serr)
		}
		if serr := <-rt.mgmtDone; serr != nil {
			logger.Warn("management server: %v", serr)
		}
	}

	rt.close()
	return err
}

func (rt *runtime) close() {
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			logger.Warn("close request log: %v", err)
		}
	}
	rt.device.close()
}
