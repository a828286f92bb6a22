package flightsvc

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
)

// doGetSink adapts a DoGet stream's IPC writer to the adapter.Sink
// contract: IsCancelled mirrors the stream's context, and Write
// serializes each batch through the Arrow IPC codec before handing it to
// gRPC's Send, whose blocking behavior is this server's backpressure
// mechanism (a not-ready transport simply blocks the adapter's producing
// goroutine between batches).
type doGetSink struct {
	ctx    context.Context
	writer *flight.Writer

	batches int
	rows    int64
}

func (s *doGetSink) IsCancelled() bool {
	return s.ctx.Err() != nil
}

func (s *doGetSink) Write(ctx context.Context, rec arrow.RecordBatch) error {
	if s.IsCancelled() {
		return nil
	}
	if err := s.writer.Write(rec); err != nil {
		return err
	}
	s.batches++
	s.rows += rec.NumRows()
	return nil
}
