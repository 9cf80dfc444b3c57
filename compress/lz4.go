package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4MaxDecodedSize caps adaptive buffer growth when the decoded size is unknown.
const lz4MaxDecodedSize = 128 * 1024 * 1024

type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 block compression.
//
// Uses a pooled lz4.Compressor for better performance.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses the input data using LZ4 block decompression.
//
// LZ4 blocks do not record their decoded size. The codec layer knows it from
// the tile geometry and hands in a dst with exactly that capacity, so the
// first attempt normally succeeds. Otherwise the buffer is sized adaptively:
//  1. Start with 4x the compressed size (or cap(dst) if larger)
//  2. On ErrInvalidSourceShortBuffer, double the buffer size
//  3. Give up past 128MB (likely corrupted data)
func (c LZ4Compressor) Decompress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst[:0], nil
	}

	if cap(dst) > 0 {
		n, err := lz4.UncompressBlock(data, fullCap(dst))
		if err == nil {
			return dst[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, err
		}
	}

	bufSize := max(len(data)*4, cap(dst)*2)
	for bufSize <= lz4MaxDecodedSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
