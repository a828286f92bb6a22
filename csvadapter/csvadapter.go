// Package csvadapter is the reference adapter.Adapter implementation: a
// directory of CSV files, one dataset per file, schemas inferred lazily
// from a bounded sample and streamed in csvsource.Options.BatchSize chunks.
package csvadapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/flightcsv/flightcsv-server/adapter"
	"github.com/flightcsv/flightcsv-server/csvarrow"
	"github.com/flightcsv/flightcsv-server/csvsource"
	"github.com/flightcsv/flightcsv-server/schemainfer"
)

// Config configures a CSV adapter instance. Zero value is invalid for
// DataDirectory; call DefaultConfig and override.
type Config struct {
	DataDirectory string
	CSV           csvsource.Options
	Schema        schemainfer.Options
	Allocator     memory.Allocator
	// Logger receives row-error and dropped-row observability events
	// (the stream-level row-error counter). Defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

// DefaultConfig returns a Config rooted at dir with default CSV parsing
// and schema inference thresholds.
func DefaultConfig(dir string) Config {
	return Config{
		DataDirectory: dir,
		CSV:           csvsource.DefaultOptions(),
		Schema:        schemainfer.DefaultOptions(),
		Allocator:     memory.DefaultAllocator,
	}
}

// Adapter is the CSV-backed adapter.Adapter implementation.
type Adapter struct {
	cfg Config
}

// New constructs a CSV adapter over cfg.DataDirectory.
func New(cfg Config) *Adapter {
	if cfg.Allocator == nil {
		cfg.Allocator = memory.DefaultAllocator
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Adapter{cfg: cfg}
}

// Kind returns "csv".
func (a *Adapter) Kind() string { return "csv" }

// DiscoverDatasets lists *.csv files directly under DataDirectory, one
// dataset per file, id = basename without extension. total_records and
// total_bytes are reported as -1 (unknown): both are advisory, a row
// count would cost a full scan, and the byte size is left unknown too so
// the two fields follow one convention.
func (a *Adapter) DiscoverDatasets(ctx context.Context) ([]adapter.DatasetInfo, error) {
	entries, err := os.ReadDir(a.cfg.DataDirectory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var infos []adapter.DatasetInfo
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		infos = append(infos, adapter.DatasetInfo{
			ID:           id,
			Name:         id,
			AdapterKind:  a.Kind(),
			Locator:      filepath.Join(a.cfg.DataDirectory, e.Name()),
			TotalRecords: -1,
			TotalBytes:   -1,
		})
	}
	return infos, nil
}

func (a *Adapter) locator(id string) string {
	return filepath.Join(a.cfg.DataDirectory, id+".csv")
}

// InferSchema reads a bounded sample of id's rows and runs majority-vote
// inference. Pure given the file's content: identical bytes at id always
// produce the same schema.
func (a *Adapter) InferSchema(ctx context.Context, id string) (schemainfer.Schema, error) {
	file, err := os.Open(a.locator(id))
	if err != nil {
		return schemainfer.Schema{}, fmt.Errorf("opening dataset %q: %w", id, err)
	}
	defer file.Close()

	sampleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var headers []string
	rows := make([][]string, 0, a.cfg.Schema.SampleSize)

	for ev := range csvsource.Read(sampleCtx, file, a.cfg.CSV) {
		switch ev.Kind {
		case csvsource.EventSchema:
			headers = ev.Headers
		case csvsource.EventBatch:
			rows = append(rows, ev.Rows...)
			if a.cfg.Schema.SampleSize > 0 && len(rows) >= a.cfg.Schema.SampleSize {
				cancel()
			}
		}
	}

	return schemainfer.Infer(headers, rows, a.cfg.Schema), nil
}

// Stream pushes id's rows to sink in csvsource.Options.BatchSize chunks,
// honoring cancellation between batches. The schema used to build each
// record batch is recomputed via InferSchema, which is deterministic
// given the file's bytes and so matches whatever the registry already
// cached for id.
func (a *Adapter) Stream(ctx context.Context, id string, sink adapter.Sink) error {
	schema, err := a.InferSchema(ctx, id)
	if err != nil {
		return err
	}

	file, err := os.Open(a.locator(id))
	if err != nil {
		return fmt.Errorf("opening dataset %q: %w", id, err)
	}
	defer file.Close()

	rowErrors := 0
	for ev := range csvsource.Read(ctx, file, a.cfg.CSV) {
		if sink.IsCancelled() {
			break
		}

		switch ev.Kind {
		case csvsource.EventRowError:
			rowErrors++
			a.cfg.Logger.Warn("csv row skipped",
				"dataset", id, "line", ev.RowErrorLine, "reason", ev.RowErrorReason)
			continue
		case csvsource.EventBatch:
		default:
			continue
		}

		rec, dropped := csvarrow.Build(a.cfg.Allocator, schema, ev.Rows)
		if dropped > 0 {
			rowErrors += dropped
			a.cfg.Logger.Warn("csv rows dropped: required field missing",
				"dataset", id, "dropped", dropped)
		}
		err := sink.Write(ctx, rec)
		rec.Release()
		if err != nil {
			return err
		}
	}

	if rowErrors > 0 {
		a.cfg.Logger.Info("csv stream completed with row errors", "dataset", id, "row_errors", rowErrors)
	}
	return nil
}
