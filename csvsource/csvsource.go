// Package csvsource is a memory-bounded, chunked CSV reader. It emits a
// closed set of events over a bounded channel (Start, Schema, Batch,
// RowError, End) so a consumer gets natural backpressure and a producer
// that never buffers the whole file in memory.
package csvsource

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
)

// chunkSize is the internal read buffer size.
const chunkSize = 64 * 1024

// Options configures CSV parsing. Zero value is invalid; start from
// DefaultOptions.
type Options struct {
	Delimiter      rune
	HasHeaders     bool
	SkipEmptyLines bool
	BatchSize      int
}

// DefaultOptions returns comma-delimited, headered, empty-line-skipping
// parsing with 10,000-row batches.
func DefaultOptions() Options {
	return Options{
		Delimiter:      ',',
		HasHeaders:     true,
		SkipEmptyLines: true,
		BatchSize:      10_000,
	}
}

// EventKind tags an Event's payload. The set is closed: consumers switch
// over it exhaustively rather than dispatching on a dynamic event name.
type EventKind int

const (
	EventStart EventKind = iota
	EventSchema
	EventBatch
	EventRowError
	EventEnd
)

// Event is one entry in a CSV read's event sequence. Only the field
// matching Kind is populated.
type Event struct {
	Kind EventKind

	Headers []string   // EventSchema
	Rows    [][]string // EventBatch: rows[i][j], row i, column j

	RowErrorLine   int    // EventRowError
	RowErrorReason string // EventRowError

	TotalRows int // EventEnd
}

// Read parses r according to opts and returns a channel of events. The
// channel has a small fixed capacity so a slow consumer applies
// backpressure to the producing goroutine; cancelling ctx stops the
// producer mid-stream and closes the channel once the producer observes
// the cancellation.
func Read(ctx context.Context, r io.Reader, opts Options) <-chan Event {
	events := make(chan Event, 2)

	go func() {
		defer close(events)
		produce(ctx, r, opts, events)
	}()

	return events
}

func send(ctx context.Context, events chan<- Event, ev Event) bool {
	// The early Err check keeps an already-cancelled context from racing
	// the buffered-channel case in the select below.
	if ctx.Err() != nil {
		return false
	}
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func produce(ctx context.Context, r io.Reader, opts Options, events chan<- Event) {
	if !send(ctx, events, Event{Kind: EventStart}) {
		return
	}

	buffered := bufio.NewReaderSize(r, chunkSize)
	reader := csv.NewReader(buffered)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// line counts the records read so far (1-based), and RowError events
	// report it as their line. The header row, when present, is record 1.
	// It equals the source line number only while no blank line has been
	// skipped by encoding/csv and no quoted field has spanned several lines.
	line := 0

	var headers []string
	if opts.HasHeaders {
		line++
		row, err := reader.Read()
		if err != nil {
			if err != io.EOF {
				send(ctx, events, Event{Kind: EventRowError, RowErrorLine: 1, RowErrorReason: err.Error()})
			}
			send(ctx, events, Event{Kind: EventEnd, TotalRows: 0})
			return
		}
		headers = row
	}

	if !send(ctx, events, Event{Kind: EventSchema, Headers: headers}) {
		return
	}

	batch := make([][]string, 0, opts.BatchSize)
	total := 0

	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		ok := send(ctx, events, Event{Kind: EventBatch, Rows: batch})
		batch = make([][]string, 0, opts.BatchSize)
		return ok
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !send(ctx, events, Event{Kind: EventRowError, RowErrorLine: line, RowErrorReason: err.Error()}) {
				return
			}
			continue
		}

		if opts.SkipEmptyLines && isEmptyRow(row) {
			continue
		}

		batch = append(batch, row)
		total++
		if len(batch) >= opts.BatchSize {
			if !flush() {
				return
			}
		}
	}

	if !flush() {
		return
	}
	send(ctx, events, Event{Kind: EventEnd, TotalRows: total})
}

func isEmptyRow(row []string) bool {
	if len(row) == 0 {
		return true
	}
	for _, field := range row {
		if field != "" {
			return false
		}
	}
	return true
}
