package registry

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/flightcsv/flightcsv-server/adapter"
	"github.com/flightcsv/flightcsv-server/logicaltype"
	"github.com/flightcsv/flightcsv-server/schemainfer"
)

type fakeAdapter struct {
	infos       []adapter.DatasetInfo
	inferCalls  int32
	inferSchema schemainfer.Schema
	inferErr    error
}

func (f *fakeAdapter) Kind() string { return "fake" }

func (f *fakeAdapter) DiscoverDatasets(ctx context.Context) ([]adapter.DatasetInfo, error) {
	return f.infos, nil
}

func (f *fakeAdapter) InferSchema(ctx context.Context, id string) (schemainfer.Schema, error) {
	atomic.AddInt32(&f.inferCalls, 1)
	return f.inferSchema, f.inferErr
}

func (f *fakeAdapter) Stream(ctx context.Context, id string, sink adapter.Sink) error {
	return nil
}

func TestDiscoverAndList(t *testing.T) {
	adp := &fakeAdapter{infos: []adapter.DatasetInfo{
		{ID: "people", Name: "people", TotalRecords: -1, TotalBytes: -1},
		{ID: "orders", Name: "orders", TotalRecords: -1, TotalBytes: -1},
	}}
	reg := New(adp)
	if err := reg.Discover(context.Background()); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("List() len = %d, want 2", len(list))
	}
	seen := map[string]bool{}
	for _, d := range list {
		seen[d.ID] = true
		if d.Schema != nil {
			t.Errorf("expected List() not to trigger inference for %s", d.ID)
		}
	}
	if !seen["people"] || !seen["orders"] {
		t.Errorf("seen = %v", seen)
	}
}

func TestGetUnknown(t *testing.T) {
	reg := New(&fakeAdapter{})
	_, err := reg.Get("ghost")
	if _, ok := err.(*ErrNotFound); !ok {
		t.Fatalf("err = %v, want *ErrNotFound", err)
	}
}

func TestSchemaOfMemoizesAndDedupsConcurrentInference(t *testing.T) {
	adp := &fakeAdapter{
		infos: []adapter.DatasetInfo{{ID: "people"}},
		inferSchema: schemainfer.Schema{Fields: []schemainfer.Field{
			{Name: "name", Type: logicaltype.Utf8, Nullable: true},
		}},
	}
	reg := New(adp)
	if err := reg.Discover(context.Background()); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	const n = 20
	results := make([]*arrow.Schema, n)
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			s, err := reg.SchemaOf(context.Background(), "people")
			if err != nil {
				t.Errorf("SchemaOf() error = %v", err)
			}
			results[i] = s
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	if got := atomic.LoadInt32(&adp.inferCalls); got != 1 {
		t.Errorf("inferCalls = %d, want 1 (at-most-one concurrent inference per id)", got)
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Errorf("result[%d] differs from result[0]", i)
		}
	}
}

func TestRefreshReplacesAtomically(t *testing.T) {
	adp := &fakeAdapter{infos: []adapter.DatasetInfo{{ID: "a"}}}
	reg := New(adp)
	if err := reg.Discover(context.Background()); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	adp.infos = []adapter.DatasetInfo{{ID: "b"}}
	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if _, err := reg.Get("a"); err == nil {
		t.Error("expected \"a\" to be gone after refresh")
	}
	if _, err := reg.Get("b"); err != nil {
		t.Errorf("Get(b) error = %v", err)
	}
}
