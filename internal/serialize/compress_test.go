package serialize

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	c, err := NewCompressor()
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}
	defer c.Close()

	original := []byte(strings.Repeat(`{"dataset":"people"},`, 500))
	compressed, err := c.Compress(original)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("compressed %d bytes >= original %d bytes on repetitive input", len(compressed), len(original))
	}

	inflated, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(inflated, original) {
		t.Error("round-trip mismatch")
	}
}

func TestCompressEmpty(t *testing.T) {
	c, err := NewCompressor()
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}
	defer c.Close()

	out, err := c.Compress(nil)
	if err != nil {
		t.Fatalf("Compress(nil): %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Compress(nil) = %d bytes, want 0", len(out))
	}
}
