package logicaltype

import (
	"strconv"
	"strings"
)

// Transform converts a raw CSV token to the Go value csvarrow appends for
// the given logical type. ok is false when the token is blank (the caller
// should append a null) or when it no longer parses as typ (a row that
// disagreed with the column's inferred type); Transform never panics.
func Transform(value string, typ Type) (any, bool) {
	if isBlank(value) {
		return nil, false
	}
	trimmed := strings.TrimSpace(value)

	switch typ {
	case Bool:
		switch strings.ToLower(trimmed) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
		return nil, false

	case Int32:
		n, err := strconv.ParseInt(trimmed, 10, 32)
		if err != nil {
			return nil, false
		}
		return int32(n), true

	case Int64:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true

	case Float32:
		f, err := strconv.ParseFloat(trimmed, 32)
		if err != nil {
			return nil, false
		}
		return float32(f), true

	case Float64:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, false
		}
		return f, true

	case Date32:
		t, ok := parseDate32(trimmed)
		if !ok {
			return nil, false
		}
		return int32(t.Unix() / 86400), true

	case TimestampMs:
		t, ok := parseTimestampMs(trimmed)
		if !ok {
			return nil, false
		}
		return t.UnixMilli(), true

	case Binary:
		return []byte(trimmed), true

	case Utf8:
		return trimmed, true

	default:
		return trimmed, true
	}
}
