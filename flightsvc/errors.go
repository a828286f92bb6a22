package flightsvc

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flightcsv/flightcsv-server/auth"
	"github.com/flightcsv/flightcsv-server/registry"
)

// Sentinel errors the dispatcher maps to gRPC statuses. Anything else
// reaching toStatus degrades to INTERNAL rather than leaking internals.
var (
	// ErrInvalidDescriptor covers a FlightDescriptor the dispatcher cannot
	// resolve to a dataset id: wrong type, empty path, unparseable CMD body.
	ErrInvalidDescriptor = errors.New("invalid flight descriptor")
	// ErrInvalidTicket covers ticket bytes that are neither a registered id
	// nor a CMD-shaped JSON object carrying one.
	ErrInvalidTicket = errors.New("invalid ticket")
	// ErrNoAdapter is returned by server startup when no adapter was
	// installed; construction rejects that configuration outright.
	ErrNoAdapter = errors.New("no adapter installed")
)

// toStatus maps a typed failure from the registry/adapter layer to a gRPC
// status. Only this function performs the mapping; every other component
// returns plain Go errors. Error messages never include the server's raw
// filesystem paths.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		return st.Err()
	}

	var notFound *registry.ErrNotFound
	switch {
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, "dataset not found: "+notFound.ID)
	case errors.Is(err, ErrInvalidDescriptor), errors.Is(err, ErrInvalidTicket):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidAuthHeader), errors.Is(err, auth.ErrTokenEmpty):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		msg := err.Error()
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) && pathErr.Path != "" {
			msg = strings.ReplaceAll(msg, pathErr.Path, filepath.Base(pathErr.Path))
		}
		return status.Errorf(codes.Internal, "internal error: %s", msg)
	}
}
