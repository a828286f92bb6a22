package flightsvc

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flightcsv/flightcsv-server/internal/msgpack"
)

// putResult is the app_metadata body DoPut replies with, MessagePack
// encoded: action bodies are JSON on the wire, but app_metadata is an
// opaque side channel, so it uses the compact codec the dispatcher
// already depends on. Every accepted message is counted; none are
// written anywhere.
type putResult struct {
	Status           string `msgpack:"status"`
	MessagesReceived int    `msgpack:"messages_received"`
}

// DoPut accepts FlightData messages until the client closes the send
// side, then replies with a count of messages received. No data is
// persisted.
func (s *Server) DoPut(stream flight.FlightService_DoPutServer) error {
	ctx := EnrichContextMetadata(stream.Context())
	s.logger.Debug("DoPut called", "trace_id", TraceIDFromContext(ctx))

	received := 0
	for {
		_, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Error("DoPut: recv failed", "error", err)
			return status.Errorf(codes.Internal, "receiving flight data: %v", err)
		}
		received++
	}

	body, err := msgpack.Encode(putResult{Status: "success", MessagesReceived: received})
	if err != nil {
		return status.Errorf(codes.Internal, "encoding put result: %v", err)
	}

	s.logger.Debug("DoPut completed", "messages_received", received)
	return stream.Send(&flight.PutResult{AppMetadata: body})
}
