// Package serialize provides Arrow IPC schema serialization and ZStandard
// compression helpers shared by the Flight dispatcher.
package serialize

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Schema serializes an Arrow schema to the IPC stream bytes a FlightInfo.Schema
// or GetSchemaResult.Schema field expects: a Schema message with no RecordBatch,
// i.e. what IPC-encoding an empty table with this schema produces.
func Schema(schema *arrow.Schema, allocator memory.Allocator) []byte {
	return flight.SerializeSchema(schema, allocator)
}
