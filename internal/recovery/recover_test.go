package recovery

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecoverToErrorPassesThrough(t *testing.T) {
	want := errors.New("plain failure")
	if got := RecoverToError(testLogger(), "op", func() error { return want }); got != want {
		t.Errorf("err = %v, want %v", got, want)
	}
	if got := RecoverToError(testLogger(), "op", func() error { return nil }); got != nil {
		t.Errorf("err = %v, want nil", got)
	}
}

func TestRecoverToErrorContainsPanic(t *testing.T) {
	err := RecoverToError(testLogger(), "Stream", func() error { panic("adapter blew up") })
	if err == nil {
		t.Fatal("expected an error from a panicking fn")
	}
	if !strings.Contains(err.Error(), "Stream panicked") {
		t.Errorf("err = %v, want it to name the operation", err)
	}
}

func TestRecoverToValueContainsPanic(t *testing.T) {
	got, err := RecoverToValue(testLogger(), "SchemaOf", func() (int, error) { panic("boom") })
	if err == nil {
		t.Fatal("expected an error from a panicking fn")
	}
	if got != 0 {
		t.Errorf("value = %d, want zero value", got)
	}

	got, err = RecoverToValue(testLogger(), "SchemaOf", func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Errorf("got %d, %v; want 42, nil", got, err)
	}
}

func TestRecoverSwallowsPanic(t *testing.T) {
	Recover(testLogger(), "cleanup", func() { panic("ignored") })
}
