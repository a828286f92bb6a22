package serialize

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressor zstd-compresses oversized response bodies (large DoAction
// JSON payloads listing every dataset id). One instance is created per
// server and reused; EncodeAll on a shared encoder is concurrency-safe,
// so no per-call encoder setup happens.
type Compressor struct {
	encoder *zstd.Encoder
}

// NewCompressor builds a reusable zstd compressor at SpeedDefault.
// Callers hold it for the server's lifetime and Close it on shutdown.
func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return &Compressor{encoder: encoder}, nil
}

// Compress returns data's zstd frame. Empty input compresses to empty
// output.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress inflates a frame produced by Compress. Used by clients of
// the compressed DoAction envelope (and by tests).
func Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()
	return decoder.DecodeAll(data, nil)
}

// Close releases the encoder.
func (c *Compressor) Close() error {
	if c.encoder != nil {
		return c.encoder.Close()
	}
	return nil
}
