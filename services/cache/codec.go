package cache

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Binary backends store entries as zstd-compressed JSON. The encoder and
// decoder are safe for concurrent EncodeAll/DecodeAll calls.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

func encodeEntry(e entry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return zstdEncoder.EncodeAll(data, nil), nil
}

func decodeEntry(data []byte) (entry, error) {
	var e entry
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return e, fmt.Errorf("decompress cache entry: %w", err)
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("decode cache entry: %w", err)
	}
	return e, nil
}
