package flightsvc

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"

	"github.com/flightcsv/flightcsv-server/internal/recovery"
	"github.com/flightcsv/flightcsv-server/internal/serialize"
)

// buildFlightInfo resolves id's schema (inferring lazily on first demand
// via the registry's once-cell) and assembles the FlightInfo: serialized schema, a PATH descriptor, one endpoint at the
// server's own location carrying id's ticket, and the dataset's
// (possibly advisory -1) record/byte counts.
func (s *Server) buildFlightInfo(ctx context.Context, id string) (*flight.FlightInfo, error) {
	schema, err := recovery.RecoverToValue(s.logger, "SchemaOf", func() (*arrow.Schema, error) {
		return s.registry.SchemaOf(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	ds, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	endpoint := &flight.FlightEndpoint{
		Ticket: &flight.Ticket{Ticket: EncodeTicket(id)},
	}
	if s.address != flight.LocationReuseConnection {
		endpoint.Location = []*flight.Location{{Uri: s.address}}
	}

	return &flight.FlightInfo{
		Schema:           serialize.Schema(schema, s.allocator),
		FlightDescriptor: DescriptorForID(id),
		Endpoint:         []*flight.FlightEndpoint{endpoint},
		TotalRecords:     ds.TotalRecords,
		TotalBytes:       ds.TotalBytes,
	}, nil
}
