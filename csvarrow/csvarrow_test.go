package csvarrow

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/flightcsv/flightcsv-server/logicaltype"
	"github.com/flightcsv/flightcsv-server/schemainfer"
)

func TestBuildBasic(t *testing.T) {
	schema := schemainfer.Schema{Fields: []schemainfer.Field{
		{Name: "name", Type: logicaltype.Utf8, Nullable: true},
		{Name: "age", Type: logicaltype.Int64, Nullable: true},
	}}
	rows := [][]string{{"Alice", "30"}, {"Bob", "25"}}

	rec, dropped := Build(memory.DefaultAllocator, schema, rows)
	defer rec.Release()

	if dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}
	if rec.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", rec.NumRows())
	}

	names := rec.Column(0).(*array.String)
	if names.Value(0) != "Alice" || names.Value(1) != "Bob" {
		t.Errorf("names = [%s %s]", names.Value(0), names.Value(1))
	}

	ages := rec.Column(1).(*array.Int64)
	if ages.Value(0) != 30 || ages.Value(1) != 25 {
		t.Errorf("ages = [%d %d]", ages.Value(0), ages.Value(1))
	}
}

func TestBuildDropsRowMissingRequiredField(t *testing.T) {
	schema := schemainfer.Schema{Fields: []schemainfer.Field{
		{Name: "id", Type: logicaltype.Int64, Nullable: false},
	}}
	rows := [][]string{{"1"}, {""}, {"3"}}

	rec, dropped := Build(memory.DefaultAllocator, schema, rows)
	defer rec.Release()

	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if rec.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", rec.NumRows())
	}
	ids := rec.Column(0).(*array.Int64)
	if ids.Value(0) != 1 || ids.Value(1) != 3 {
		t.Errorf("ids = [%d %d]", ids.Value(0), ids.Value(1))
	}
}

func TestBuildNullableMissingBecomesNull(t *testing.T) {
	schema := schemainfer.Schema{Fields: []schemainfer.Field{
		{Name: "note", Type: logicaltype.Utf8, Nullable: true},
	}}
	rows := [][]string{{"hello"}, {""}}

	rec, dropped := Build(memory.DefaultAllocator, schema, rows)
	defer rec.Release()

	if dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}
	if rec.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", rec.NumRows())
	}
	notes := rec.Column(0).(*array.String)
	if !notes.IsNull(1) {
		t.Error("expected row 1 to be null")
	}
}
