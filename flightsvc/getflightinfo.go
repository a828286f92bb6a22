package flightsvc

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
)

// GetFlightInfo resolves a descriptor to a dataset id, lazily
// infers its schema if not already cached, and returns a FlightInfo.
// Unknown ids map to NOT_FOUND; malformed descriptors to INVALID_ARGUMENT.
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	ctx = EnrichContextMetadata(ctx)
	s.logger.Debug("GetFlightInfo called", "trace_id", TraceIDFromContext(ctx), "type", desc.GetType())

	id, err := DatasetIDFromDescriptor(desc)
	if err != nil {
		return nil, toStatus(err)
	}

	info, err := s.buildFlightInfo(ctx, id)
	if err != nil {
		s.logger.Error("GetFlightInfo failed", "id", id, "error", err)
		return nil, toStatus(err)
	}

	s.logger.Debug("GetFlightInfo completed", "id", id)
	return info, nil
}
