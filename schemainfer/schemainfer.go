// Package schemainfer performs column-wise majority-vote type inference
// over a bounded sample of CSV rows, handing the csvarrow builder a
// {header -> LogicalType} schema it can build typed buffers against.
package schemainfer

import "github.com/flightcsv/flightcsv-server/logicaltype"

// Options tunes inference thresholds. Zero value is invalid; use
// DefaultOptions and override individual fields.
type Options struct {
	// SampleSize bounds how many rows are considered; callers are expected
	// to have already truncated their row slice to this many rows, but
	// Infer re-truncates defensively.
	SampleSize int
	// NullThreshold: if a column's null ratio exceeds this, it is utf8
	// regardless of what the non-null tokens look like.
	NullThreshold float64
	// ConfidenceThreshold: the modal detected type must cover at least this
	// fraction of non-null tokens, or the column falls back to utf8.
	ConfidenceThreshold float64
	// BoolPermissive enables yes/no/y/n/0/1 boolean recognition.
	BoolPermissive bool
}

// DefaultOptions returns the default thresholds: sample 1000 rows, null
// ratio threshold 0.5, confidence threshold 0.8.
func DefaultOptions() Options {
	return Options{
		SampleSize:          1000,
		NullThreshold:       0.5,
		ConfidenceThreshold: 0.8,
	}
}

// Field is one inferred column.
type Field struct {
	Name     string
	Type     logicaltype.Type
	Nullable bool
}

// Schema is an ordered list of inferred fields, header order preserved.
type Schema struct {
	Fields []Field
}

// candidateTypes is the fixed priority order used to break ties
// deterministically when two types tally the same count: narrower types
// win over wider ones, utf8 last.
var candidateTypes = []logicaltype.Type{
	logicaltype.Bool,
	logicaltype.Int64,
	logicaltype.Float64,
	logicaltype.Date32,
	logicaltype.TimestampMs,
	logicaltype.Utf8,
}

// Infer runs the per-column majority-vote algorithm over rows, a bounded
// sample where rows[i][j] is the raw token for row i, column j. headers
// gives column names and count. Given identical inputs and options, the
// result is identical bit-for-bit.
func Infer(headers []string, rows [][]string, opts Options) Schema {
	if opts.SampleSize > 0 && len(rows) > opts.SampleSize {
		rows = rows[:opts.SampleSize]
	}

	fields := make([]Field, len(headers))
	for col, name := range headers {
		fields[col] = inferColumn(name, col, rows, opts)
	}
	return Schema{Fields: fields}
}

func inferColumn(name string, col int, rows [][]string, opts Options) Field {
	detectOpts := logicaltype.DetectOptions{BoolPermissive: opts.BoolPermissive}

	var total, nullCount int
	tally := make(map[logicaltype.Type]int, len(candidateTypes))

	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		total++
		token := row[col]
		typ := logicaltype.Detect(token, detectOpts)
		if typ == logicaltype.Unknown {
			nullCount++
			continue
		}
		tally[typ]++
	}

	if total == 0 {
		return Field{Name: name, Type: logicaltype.Utf8, Nullable: true}
	}

	// Inferred fields are always nullable: a finite sample containing no
	// nulls is no evidence the column forbids them, and rows beyond the
	// sample may carry empty cells the builder must be allowed to encode.
	nullRatio := float64(nullCount) / float64(total)
	if nullRatio > opts.NullThreshold {
		return Field{Name: name, Type: logicaltype.Utf8, Nullable: true}
	}

	nonNull := total - nullCount
	if nonNull == 0 {
		return Field{Name: name, Type: logicaltype.Utf8, Nullable: true}
	}

	var mode logicaltype.Type
	var modeCount int
	for _, typ := range candidateTypes {
		if c := tally[typ]; c > modeCount {
			mode, modeCount = typ, c
		}
	}

	if float64(modeCount)/float64(nonNull) >= opts.ConfidenceThreshold {
		return Field{Name: name, Type: mode, Nullable: true}
	}
	return Field{Name: name, Type: logicaltype.Utf8, Nullable: true}
}
