package flightsvc

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc"

	"github.com/flightcsv/flightcsv-server/internal/recovery"
)

// DoGet resolves the ticket to a dataset id, ensures its schema is
// published, and streams the adapter's record batches through the Arrow
// IPC codec. Backpressure comes from gRPC's blocking Send; cancellation
// is observed via the sink's IsCancelled, checked by the adapter between
// batches.
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := EnrichContextMetadata(stream.Context())
	s.logger.Debug("DoGet called", "trace_id", TraceIDFromContext(ctx), "ticket_size", len(ticket.GetTicket()))

	if s.compressIPC {
		if err := grpc.SetSendCompressor(ctx, ipcCompressorName); err != nil {
			s.logger.Warn("DoGet: failed to select IPC compressor, sending uncompressed", "error", err)
		}
	}

	id, err := DatasetIDFromTicket(ticket.GetTicket(), func(candidate string) bool {
		_, err := s.registry.Get(candidate)
		return err == nil
	})
	if err != nil {
		return toStatus(err)
	}

	if _, err := s.registry.Get(id); err != nil {
		s.logger.Warn("DoGet: unknown dataset", "id", id)
		return toStatus(err)
	}

	schema, err := recovery.RecoverToValue(s.logger, "SchemaOf", func() (*arrow.Schema, error) {
		return s.registry.SchemaOf(ctx, id)
	})
	if err != nil {
		s.logger.Error("DoGet: schema inference failed", "id", id, "error", err)
		return toStatus(err)
	}

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(schema))
	defer writer.Close()
	writer.SetFlightDescriptor(DescriptorForID(id))

	sink := &doGetSink{ctx: ctx}
	sink.writer = writer

	err = recovery.RecoverToError(s.logger, "Stream", func() error {
		return s.adapter.Stream(ctx, id, sink)
	})
	if err != nil {
		s.logger.Error("DoGet: adapter stream failed", "id", id, "error", err, "batches_sent", sink.batches)
		return toStatus(err)
	}

	if sink.IsCancelled() {
		s.logger.Debug("DoGet cancelled by client", "id", id, "batches_sent", sink.batches, "rows_sent", sink.rows)
		return nil
	}

	s.logger.Debug("DoGet completed", "id", id, "batches_sent", sink.batches, "rows_sent", sink.rows)
	return nil
}
