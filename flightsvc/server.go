// Package flightsvc is the Flight protocol dispatcher: one handler per
// gRPC method (Handshake, ListFlights, GetFlightInfo, GetSchema, DoGet,
// DoPut, DoAction, ListActions), plus the server runtime that binds,
// serves, and drains it.
package flightsvc

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/flightcsv/flightcsv-server/adapter"
	"github.com/flightcsv/flightcsv-server/auth"
	"github.com/flightcsv/flightcsv-server/internal/serialize"
	"github.com/flightcsv/flightcsv-server/registry"
)

// serverID identifies this server in get-server-info responses and log
// correlation; stable for the process lifetime.
const serverID = "flightcsv-server"

// protocolVersion is reported by Handshake and get-server-info.
const protocolVersion = 1

// capabilities is the fixed list advertised by get-server-info. It grows
// only when a new ActionType is added to actionDescriptions (doaction.go).
var capabilities = []string{"list-flights", "do-get", "do-put", "refresh-datasets", "get-server-info"}

// Config configures a Server. Registry and Adapter are required; the
// rest have sensible fallbacks applied by New.
type Config struct {
	// Registry resolves dataset ids to descriptors and lazily-inferred
	// schemas. REQUIRED.
	Registry *registry.Registry
	// Adapter streams record batches for DoGet. REQUIRED.
	Adapter adapter.Adapter
	// Allocator for Arrow memory management. Defaults to
	// memory.DefaultAllocator.
	Allocator memory.Allocator
	// Logger for structured request logging. Defaults to slog.Default().
	Logger *slog.Logger
	// Address is the server's public grpc://host:port, used as the
	// FlightEndpoint location in FlightInfo. Optional.
	Address string
	// Auth is an optional Authenticator wired through the gRPC
	// interceptors that ServerOptions installs; Handshake does not consult
	// it. If nil, no authentication is enforced.
	Auth auth.Authenticator
	// CompressIPC selects the "zstd" gRPC send compressor for DoGet's
	// record-batch stream. Off by default; large batches otherwise cross
	// the wire uncompressed.
	CompressIPC bool
}

// Server implements flight.FlightServiceServer. Embeds BaseFlightServer
// so adding a Flight method to a future protocol version doesn't break
// compilation here.
type Server struct {
	flight.BaseFlightServer

	registry    *registry.Registry
	adapter     adapter.Adapter
	allocator   memory.Allocator
	logger      *slog.Logger
	address     string
	auth        auth.Authenticator
	compressor  *serialize.Compressor
	compressIPC bool

	startedAt time.Time
}

// New constructs a Server from cfg. Registry and Adapter must be set;
// every other field falls back to a default.
func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("flightsvc: Registry is required")
	}
	if cfg.Adapter == nil {
		return nil, ErrNoAdapter
	}

	allocator := cfg.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	address := cfg.Address
	switch {
	case address == "":
		address = flight.LocationReuseConnection
	case !strings.HasPrefix(address, "grpc://") && !strings.HasPrefix(address, "grpc+tls://"):
		address = "grpc://" + address
	}

	compressor, err := serialize.NewCompressor()
	if err != nil {
		return nil, fmt.Errorf("flightsvc: %w", err)
	}

	return &Server{
		registry:    cfg.Registry,
		adapter:     cfg.Adapter,
		allocator:   allocator,
		logger:      logger,
		address:     address,
		auth:        cfg.Auth,
		compressor:  compressor,
		compressIPC: cfg.CompressIPC,
		startedAt:   time.Now(),
	}, nil
}

// Register registers the Flight service on grpcServer. Does not start
// serving; the caller controls the listener lifecycle (or uses Runtime).
func Register(grpcServer *grpc.Server, srv *Server) {
	flight.RegisterFlightServiceServer(grpcServer, srv)
}

// ServerOptions returns gRPC server options wiring srv's authenticator
// (if any) as unary/stream interceptors and applying maxMessageSize to
// both receive and send limits. maxMessageSize <= 0 leaves gRPC's default.
func ServerOptions(srv *Server, maxMessageSize int) []grpc.ServerOption {
	var opts []grpc.ServerOption
	if srv.auth != nil {
		opts = append(opts,
			grpc.UnaryInterceptor(UnaryServerInterceptor(srv.auth)),
			grpc.StreamInterceptor(StreamServerInterceptor(srv.auth)),
		)
	}
	if maxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(maxMessageSize),
			grpc.MaxSendMsgSize(maxMessageSize),
		)
	}
	return opts
}

// DatasetIDs returns every currently registered dataset id, for
// introspection (get-server-info) and tests.
func (s *Server) DatasetIDs() []string {
	list := s.registry.List()
	ids := make([]string, len(list))
	for i, d := range list {
		ids[i] = d.ID
	}
	return ids
}

// AdapterKind returns the installed adapter's Kind() string.
func (s *Server) AdapterKind() string {
	return s.adapter.Kind()
}
