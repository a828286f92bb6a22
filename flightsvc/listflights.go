package flightsvc

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
)

// ListFlights writes one FlightInfo per registered dataset, in the order
// the registry currently reports them. criteria is accepted but ignored;
// there is no predicate pushdown. An empty registry yields zero
// messages and a clean stream end (scenario 1).
func (s *Server) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	ctx := EnrichContextMetadata(stream.Context())
	datasets := s.registry.List()

	s.logger.Debug("ListFlights called", "trace_id", TraceIDFromContext(ctx), "dataset_count", len(datasets))

	for _, ds := range datasets {
		info, err := s.buildFlightInfo(ctx, ds.ID)
		if err != nil {
			s.logger.Error("ListFlights: failed to build flight info", "id", ds.ID, "error", err)
			return toStatus(err)
		}
		if err := stream.Send(info); err != nil {
			return toStatus(err)
		}
	}

	s.logger.Debug("ListFlights completed", "trace_id", TraceIDFromContext(ctx), "sent", len(datasets))
	return nil
}
