package logicaltype

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DetectOptions tunes the per-value recognizers. Zero value is the
// conservative default: only strict "true"/"false" booleans, no
// permissive 0/1/yes/no coercion (that would collide with Int64).
type DetectOptions struct {
	// BoolPermissive additionally recognizes yes/no/y/n/0/1 as Bool.
	BoolPermissive bool
	// MaxIntMagnitude caps the absolute value an integer token may take
	// and still detect as Int64; larger magnitudes degrade to Utf8. Zero
	// means DefaultMaxIntMagnitude.
	MaxIntMagnitude int64
}

// DefaultMaxIntMagnitude is 2^53-1, the largest integer a float64 can
// hold exactly. Integer tokens beyond it degrade to Utf8 so a consumer
// converting columns through float64 never silently loses precision.
const DefaultMaxIntMagnitude = 1<<53 - 1

var (
	boolStrictRe = regexp.MustCompile(`(?i)^(true|false)$`)
	boolLooseRe  = regexp.MustCompile(`(?i)^(true|false|yes|no|y|n|0|1)$`)
	int64Re      = regexp.MustCompile(`^[+-]?[0-9]+$`)
	float64Re    = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)([eE][+-]?[0-9]+)?$`)

	dateLayouts = []string{
		"2006-01-02",
		"01/02/2006",
		"01-02-2006",
		"2006/01/02",
	}
)

// isBlank reports whether a raw token carries no evidence: empty or all
// whitespace. Callers treat this as ⊥ (Unknown), not as Utf8.
func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// Detect returns the narrowest logical type a single textual token is
// consistent with, trying recognizers from narrowest to widest. It returns
// Unknown for a blank token (no evidence either way) and Utf8 when the
// token parses as none of the typed recognizers.
func Detect(value string, opts DetectOptions) Type {
	if isBlank(value) {
		return Unknown
	}
	trimmed := strings.TrimSpace(value)

	if opts.BoolPermissive {
		if boolLooseRe.MatchString(trimmed) {
			return Bool
		}
	} else if boolStrictRe.MatchString(trimmed) {
		return Bool
	}

	if int64Re.MatchString(trimmed) {
		// 10-digit unix seconds and 13-digit unix millis in the 1970-2050
		// range are timestamps, not plain integers; everything else
		// integer-shaped is Int64 up to the magnitude cap.
		if _, ok := parseTimestampMs(trimmed); ok {
			return TimestampMs
		}
		limit := opts.MaxIntMagnitude
		if limit <= 0 {
			limit = DefaultMaxIntMagnitude
		}
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			if n > limit || n < -limit {
				return Utf8
			}
			return Int64
		}
		// Overflows int64: still numeric text, but not representable.
		return Utf8
	}

	if float64Re.MatchString(trimmed) {
		if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Float64
		}
		return Utf8
	}

	if _, ok := parseDate32(trimmed); ok {
		return Date32
	}

	if _, ok := parseTimestampMs(trimmed); ok {
		return TimestampMs
	}

	return Utf8
}

func parseDate32(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTimestampMs recognizes ISO-8601 timestamps with a time component,
// and 10-digit (seconds) or 13-digit (milliseconds) unix epoch values,
// range-checked against 1970-2050 to avoid mistaking arbitrary large
// integers for timestamps.
func parseTimestampMs(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	if len(value) == 10 && int64Re.MatchString(value) {
		sec, err := strconv.ParseInt(value, 10, 64)
		if err == nil && sec >= epochMin && sec <= epochMax {
			return time.Unix(sec, 0).UTC(), true
		}
	}

	if len(value) == 13 && int64Re.MatchString(value) {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err == nil && ms/1000 >= epochMin && ms/1000 <= epochMax {
			return time.UnixMilli(ms).UTC(), true
		}
	}

	return time.Time{}, false
}
