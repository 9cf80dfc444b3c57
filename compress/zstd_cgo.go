//go:build cgo && gozstd

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// Compress compresses the input data using Zstandard compression.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses Zstd-compressed data, appending into dst[:0].
func (c ZstdCompressor) Decompress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst[:0], nil
	}

	out, err := gozstd.Decompress(dst[:0], data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}
