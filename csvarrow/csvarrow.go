// Package csvarrow builds Arrow record batches directly from raw CSV row
// tokens and an inferred schema, one dense typed column buffer per field,
// without materializing intermediate row objects.
package csvarrow

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/flightcsv/flightcsv-server/logicaltype"
	"github.com/flightcsv/flightcsv-server/schemainfer"
)

// ArrowSchema translates an inferred schema into an *arrow.Schema in
// field order.
func ArrowSchema(schema schemainfer.Schema) *arrow.Schema {
	fields := make([]arrow.Field, len(schema.Fields))
	for i, f := range schema.Fields {
		fields[i] = arrow.Field{Name: f.Name, Type: f.Type.ArrowType(), Nullable: f.Nullable}
	}
	return arrow.NewSchema(fields, nil)
}

// Build converts a batch of raw row tokens into an Arrow record batch
// conforming to ArrowSchema(schema). Rows are consumed one at a time: for
// each row, every field's token is parsed via logicaltype.Transform and
// appended to that field's builder before moving to the next row.
// Transform hands each parsed value back boxed in an interface, so
// numeric cells are not free of per-cell heap allocation.
//
// A row missing a required (non-nullable) field value is dropped entirely;
// the returned record's length reflects only rows that fully parsed. The
// number of dropped rows is returned as the second value.
func Build(alloc memory.Allocator, schema schemainfer.Schema, rows [][]string) (arrow.RecordBatch, int) {
	builder := array.NewRecordBuilder(alloc, ArrowSchema(schema))
	defer builder.Release()

	dropped := 0

	for _, row := range rows {
		if !rowSatisfiesRequiredFields(schema, row) {
			dropped++
			continue
		}
		for col, field := range schema.Fields {
			var token string
			if col < len(row) {
				token = row[col]
			}
			appendValue(builder.Field(col), field.Type, token)
		}
	}

	return builder.NewRecordBatch(), dropped
}

// rowSatisfiesRequiredFields checks, without appending anything, whether
// every non-nullable field in the row would parse. A row failing this
// check is dropped in its entirety rather than partially appended, so the
// builders never need to roll back a half-written row.
func rowSatisfiesRequiredFields(schema schemainfer.Schema, row []string) bool {
	for col, field := range schema.Fields {
		if field.Nullable {
			continue
		}
		var token string
		if col < len(row) {
			token = row[col]
		}
		if _, ok := logicaltype.Transform(token, field.Type); !ok {
			return false
		}
	}
	return true
}

// appendValue parses token as typ and appends it (or a null, when token
// carries no value) to b.
func appendValue(b array.Builder, typ logicaltype.Type, token string) {
	value, ok := logicaltype.Transform(token, typ)
	if !ok {
		b.AppendNull()
		return
	}

	switch typ {
	case logicaltype.Bool:
		b.(*array.BooleanBuilder).Append(value.(bool))
	case logicaltype.Int32:
		b.(*array.Int32Builder).Append(value.(int32))
	case logicaltype.Int64:
		b.(*array.Int64Builder).Append(value.(int64))
	case logicaltype.Float32:
		b.(*array.Float32Builder).Append(value.(float32))
	case logicaltype.Float64:
		b.(*array.Float64Builder).Append(value.(float64))
	case logicaltype.Date32:
		b.(*array.Date32Builder).Append(arrow.Date32(value.(int32)))
	case logicaltype.TimestampMs:
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(value.(int64)))
	case logicaltype.Binary:
		b.(*array.BinaryBuilder).Append(value.([]byte))
	default:
		b.(*array.StringBuilder).Append(value.(string))
	}
}
