// Package adapter defines the polymorphic surface the Flight dispatcher
// and dataset registry use to talk to any data source. A CSV adapter is
// the only variant shipped; future variants (Parquet, a database) satisfy
// the same three operations without touching the dispatcher or registry.
package adapter

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/flightcsv/flightcsv-server/schemainfer"
)

// DatasetInfo is what discovery reports about a candidate dataset before
// its schema has been inferred.
type DatasetInfo struct {
	ID           string
	Name         string
	AdapterKind  string
	Locator      string
	TotalRecords int64 // -1 when unknown
	TotalBytes   int64 // -1 when unknown
}

// Sink receives record batches pushed by Stream, in order, until
// exhaustion or cancellation. Implementations must be safe to call
// IsCancelled from the same goroutine that calls Write.
type Sink interface {
	// Write delivers one record batch synchronously: the sink must be
	// done with rec by the time Write returns, since the adapter remains
	// free to release rec immediately afterward.
	Write(ctx context.Context, rec arrow.RecordBatch) error
	// IsCancelled reports whether the consumer has gone away; Stream
	// implementations must check this between batches (and, where
	// practical, within a batch) and stop promptly when true.
	IsCancelled() bool
}

// Adapter is the three-operation contract a data source implements.
type Adapter interface {
	// Kind identifies the adapter (e.g. "csv") for introspection and
	// dataset metadata.
	Kind() string
	// DiscoverDatasets enumerates dataset candidates from the adapter's
	// source. It does not infer schemas.
	DiscoverDatasets(ctx context.Context) ([]DatasetInfo, error)
	// InferSchema is pure given the source content: identical bytes at id
	// always yield the same schema.
	InferSchema(ctx context.Context, id string) (schemainfer.Schema, error)
	// Stream pushes zero or more record batches for id to sink, in order,
	// until exhaustion, an error, or cancellation.
	Stream(ctx context.Context, id string, sink Sink) error
}
