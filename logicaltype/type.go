// Package logicaltype defines the server's closed catalogue of column
// types, detection of a type from a textual sample value, and the mapping
// from a logical type to its Arrow physical representation.
//
// Adding a type means adding one constant plus its cases in String,
// ArrowType, Detect, and Transform here, a builder case in csvarrow's
// appendValue, and an entry in schemainfer's candidateTypes if inference
// should be able to pick it.
package logicaltype

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
)

// Type is one member of the server's closed logical type catalogue.
// Distinct from the Arrow physical type used on the wire (ArrowType maps
// between the two).
type Type int

const (
	// Unknown represents "no evidence": an empty, null, or whitespace token.
	Unknown Type = iota
	Bool
	Int32
	Int64
	Float32
	Float64
	Utf8
	Date32
	TimestampMs
	Binary
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Utf8:
		return "utf8"
	case Date32:
		return "date32"
	case TimestampMs:
		return "timestamp_ms"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// ArrowType returns the Arrow physical type backing this logical type.
func (t Type) ArrowType() arrow.DataType {
	switch t {
	case Bool:
		return arrow.FixedWidthTypes.Boolean
	case Int32:
		return arrow.PrimitiveTypes.Int32
	case Int64:
		return arrow.PrimitiveTypes.Int64
	case Float32:
		return arrow.PrimitiveTypes.Float32
	case Float64:
		return arrow.PrimitiveTypes.Float64
	case Utf8:
		return arrow.BinaryTypes.String
	case Date32:
		return arrow.FixedWidthTypes.Date32
	case TimestampMs:
		return arrow.FixedWidthTypes.Timestamp_ms
	case Binary:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

// epoch bounds used to range-check unix-second/unix-ms timestamp
// detection; integer values outside 1970-2050 stay plain integers.
var (
	epochMin = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	epochMax = time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
)
