package flightsvc

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/google/uuid"
)

// Handshake mirrors the client's protocol_version and replies with a
// server-minted session id as the payload, for each request received,
// until the client closes the stream. No authentication is enforced
// here; handshake payload plumbing is an inert extension point.
func (s *Server) Handshake(stream flight.FlightService_HandshakeServer) error {
	ctx := EnrichContextMetadata(stream.Context())
	s.logger.Debug("Handshake called", "trace_id", TraceIDFromContext(ctx))

	for {
		req, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return toStatus(err)
		}

		resp := &flight.HandshakeResponse{
			ProtocolVersion: req.GetProtocolVersion(),
			Payload:         []byte(uuid.NewString()),
		}
		if err := stream.Send(resp); err != nil {
			return toStatus(err)
		}
	}
}
