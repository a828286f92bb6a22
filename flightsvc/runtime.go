package flightsvc

import (
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
)

// RuntimeConfig configures the bind/listen lifecycle.
type RuntimeConfig struct {
	// Host and Port form the bind address. Host may be empty to bind all
	// interfaces.
	Host string
	Port int
	// MaxMessageSize caps both receive and send gRPC message sizes in
	// bytes. Defaults to 100 MiB since Arrow batches are large; 0 leaves
	// gRPC's own default.
	MaxMessageSize int
	// ShutdownGrace bounds how long Stop waits for in-flight streams to
	// drain before forcing termination.
	ShutdownGrace time.Duration
}

// DefaultMaxMessageSize is the 100 MiB default for both the
// receive and send limits.
const DefaultMaxMessageSize = 100 * 1024 * 1024

// DefaultShutdownGrace bounds Stop's drain window absent an explicit
// configuration.
const DefaultShutdownGrace = 30 * time.Second

// DefaultRuntimeConfig returns the default message-size cap and
// shutdown grace period, bound to host:port.
func DefaultRuntimeConfig(host string, port int) RuntimeConfig {
	return RuntimeConfig{
		Host:           host,
		Port:           port,
		MaxMessageSize: DefaultMaxMessageSize,
		ShutdownGrace:  DefaultShutdownGrace,
	}
}

// Runtime binds a Server to a gRPC listener and manages its start/stop
// lifecycle, including a bounded graceful-drain window on shutdown.
type Runtime struct {
	cfg        RuntimeConfig
	srv        *Server
	grpcServer *grpc.Server
	listener   net.Listener
	serveErrCh chan error
}

// NewRuntime wires srv onto a gRPC server configured with srv's auth
// interceptors (if any) and cfg's message-size caps. Returns ErrNoAdapter
// if srv is nil or has no adapter installed.
func NewRuntime(srv *Server, cfg RuntimeConfig) (*Runtime, error) {
	if srv == nil || srv.adapter == nil {
		return nil, ErrNoAdapter
	}

	grpcServer := grpc.NewServer(ServerOptions(srv, cfg.MaxMessageSize)...)
	Register(grpcServer, srv)

	return &Runtime{
		cfg:        cfg,
		srv:        srv,
		grpcServer: grpcServer,
	}, nil
}

// Start binds the configured address and begins serving in the
// background. Returns once the listener is bound; Serve errors surface
// through Stop's return value.
func (r *Runtime) Start() error {
	addr := fmt.Sprintf("%s:%d", r.cfg.Host, r.cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}
	r.listener = lis
	r.serveErrCh = make(chan error, 1)

	go func() {
		r.serveErrCh <- r.grpcServer.Serve(lis)
	}()

	r.srv.logger.Info("flight server listening",
		"address", lis.Addr().String(),
		"adapter", r.srv.AdapterKind(),
		"max_message_size", r.cfg.MaxMessageSize,
	)
	return nil
}

// Addr returns the bound listener's address. Valid only after Start.
func (r *Runtime) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// MaxMessageSize returns the configured receive/send message cap in
// bytes (0 means gRPC's own default).
func (r *Runtime) MaxMessageSize() int { return r.cfg.MaxMessageSize }

// Stop attempts a graceful drain of in-flight streams for
// cfg.ShutdownGrace; on timeout it forces termination. Safe to call
// after a failed or not-yet-called Start (a no-op in that case).
func (r *Runtime) Stop() error {
	if r.grpcServer == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		r.grpcServer.GracefulStop()
		close(done)
	}()

	grace := r.cfg.ShutdownGrace
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}

	select {
	case <-done:
		r.srv.logger.Info("flight server stopped")
	case <-time.After(grace):
		r.srv.logger.Warn("flight server shutdown grace period exceeded, forcing stop")
		r.grpcServer.Stop()
	}

	if r.serveErrCh == nil {
		return nil
	}
	if err := <-r.serveErrCh; err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}
