package flightsvc

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"

	"github.com/flightcsv/flightcsv-server/internal/recovery"
	"github.com/flightcsv/flightcsv-server/internal/serialize"
)

// GetSchema is GetFlightInfo's narrower sibling: it returns only the
// serialized schema bytes, not the full FlightInfo. Byte-identical to
// the Schema field GetFlightInfo would have returned for the same id.
func (s *Server) GetSchema(ctx context.Context, desc *flight.FlightDescriptor) (*flight.SchemaResult, error) {
	ctx = EnrichContextMetadata(ctx)
	s.logger.Debug("GetSchema called", "trace_id", TraceIDFromContext(ctx))

	id, err := DatasetIDFromDescriptor(desc)
	if err != nil {
		return nil, toStatus(err)
	}

	schema, err := recovery.RecoverToValue(s.logger, "SchemaOf", func() (*arrow.Schema, error) {
		return s.registry.SchemaOf(ctx, id)
	})
	if err != nil {
		s.logger.Error("GetSchema failed", "id", id, "error", err)
		return nil, toStatus(err)
	}

	return &flight.SchemaResult{Schema: serialize.Schema(schema, s.allocator)}, nil
}
