// Package msgpack is the compact codec for out-of-band metadata fields:
// DoPut's PutResult.app_metadata reply in particular. Action bodies stay
// JSON; this codec only serves the app_metadata side channels.
package msgpack

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes v into MessagePack bytes.
func Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding messagepack: %w", err)
	}
	return data, nil
}

// Decode deserializes MessagePack bytes into v, a pointer to the target
// struct. Empty input is rejected rather than decoded as nothing.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty messagepack payload")
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding messagepack: %w", err)
	}
	return nil
}
