// Package registry maintains the server's id->dataset map: discovery from
// an adapter's source, lazy per-dataset schema inference with at-most-one
// concurrent inference per id, and atomic refresh.
package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/flightcsv/flightcsv-server/adapter"
	"github.com/flightcsv/flightcsv-server/csvarrow"
)

// Dataset is the registry's public view of one addressable resource.
// Schema is nil until SchemaOf has been called at least once.
type Dataset struct {
	ID             string
	Name           string
	AdapterKind    string
	AdapterLocator string
	TotalRecords   int64
	TotalBytes     int64
	CreatedAt      time.Time
	Schema         *arrow.Schema
}

// ErrNotFound is returned by Get and SchemaOf for an unregistered id.
type ErrNotFound struct{ ID string }

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("dataset %q not found", e.ID)
}

// entry pairs immutable dataset metadata with a schema cache cell; the
// cell is resolved at most once regardless of how many goroutines call
// SchemaOf concurrently for the same id.
type entry struct {
	info      adapter.DatasetInfo
	createdAt time.Time
	cell      *schemaCell
}

// schema is an atomic pointer rather than a plain field because List
// peeks at it without passing through once.Do: the write inside the once
// and the lock-free peek would otherwise race. err is only read by
// SchemaOf callers, all of whom synchronize through once.Do.
type schemaCell struct {
	once   sync.Once
	schema atomic.Pointer[arrow.Schema]
	err    error
}

// Registry holds the current id->dataset map under a readers-writer
// discipline: many concurrent readers (List, Get, SchemaOf's map lookup),
// exclusive writer only while Discover/Refresh swap in the replacement
// map, which they build beforehand without holding the lock.
type Registry struct {
	adapter adapter.Adapter

	mu       sync.RWMutex
	entries  map[string]*entry
	loadedAt time.Time
}

// New constructs an empty registry backed by adp. Call Discover (or
// Refresh) before serving traffic.
func New(adp adapter.Adapter) *Registry {
	return &Registry{
		adapter: adp,
		entries: make(map[string]*entry),
	}
}

// Discover enumerates dataset candidates from the adapter and populates
// the registry. Schemas are not inferred here. Equivalent to Refresh on an
// empty registry; kept as a separate name to match the distinct "initial
// population" (server bootstrap) and "atomic replace" (the dispatcher's
// refresh-datasets action) call sites.
func (r *Registry) Discover(ctx context.Context) error {
	return r.Refresh(ctx)
}

// Refresh atomically replaces the registry's contents. Readers concurrent
// with Refresh observe either the entirely-old or entirely-new set, never
// a partial mix; all cached schemas are invalidated (rebuilt lazily on
// next demand, since the replacement entries start with fresh cells).
func (r *Registry) Refresh(ctx context.Context) error {
	infos, err := r.adapter.DiscoverDatasets(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	next := make(map[string]*entry, len(infos))
	for _, info := range infos {
		next[info.ID] = &entry{info: info, createdAt: now, cell: &schemaCell{}}
	}

	r.mu.Lock()
	r.entries = next
	r.loadedAt = now
	r.mu.Unlock()
	return nil
}

// List returns a summary Dataset per registered id. Schema is populated
// only if it has already been inferred by a prior SchemaOf call; List
// itself never triggers inference.
func (r *Registry) List() []Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Dataset, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, datasetFromEntry(e))
	}
	return out
}

// Get returns the dataset for id, or ErrNotFound.
func (r *Registry) Get(id string) (Dataset, error) {
	e, ok := r.lookup(id)
	if !ok {
		return Dataset{}, &ErrNotFound{ID: id}
	}
	return datasetFromEntry(e), nil
}

// SchemaOf resolves id's Arrow schema, inferring it lazily on first call
// and memoizing the result. Concurrent callers for the same id block on
// the same inference run and observe the identical result; they never
// trigger a second inference.
func (r *Registry) SchemaOf(ctx context.Context, id string) (*arrow.Schema, error) {
	e, ok := r.lookup(id)
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}

	e.cell.once.Do(func() {
		inferred, err := r.adapter.InferSchema(ctx, id)
		if err != nil {
			e.cell.err = err
			return
		}
		e.cell.schema.Store(csvarrow.ArrowSchema(inferred))
	})
	return e.cell.schema.Load(), e.cell.err
}

func (r *Registry) lookup(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

func datasetFromEntry(e *entry) Dataset {
	schema := e.cell.schema.Load()
	return Dataset{
		ID:             e.info.ID,
		Name:           e.info.Name,
		AdapterKind:    e.info.AdapterKind,
		AdapterLocator: e.info.Locator,
		TotalRecords:   e.info.TotalRecords,
		TotalBytes:     e.info.TotalBytes,
		CreatedAt:      e.createdAt,
		Schema:         schema,
	}
}
