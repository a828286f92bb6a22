package flightsvc

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/grpc/encoding"
)

// ipcCompressorName is the gRPC wire-level compressor selected by the
// --compress-ipc runtime knob. It compresses DoGet's record-batch
// messages in transit; it has nothing to do with the DoAction body
// compression in doaction.go, which wraps a JSON envelope instead of a
// raw message frame.
const ipcCompressorName = "zstd"

func init() {
	encoding.RegisterCompressor(&zstdGRPCCompressor{})
}

// zstdGRPCCompressor adapts klauspost/compress's streaming zstd codec to
// grpc's encoding.Compressor interface. A fresh encoder/decoder per call
// keeps it safe under grpc's concurrent use across simultaneous streams,
// at the cost of the state-reuse optimization serialize.Compressor
// applies for the low-volume DoAction path.
type zstdGRPCCompressor struct{}

func (zstdGRPCCompressor) Name() string { return ipcCompressorName }

func (zstdGRPCCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
}

func (zstdGRPCCompressor) Decompress(r io.Reader) (io.Reader, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}
