package compress

// ZstdCompressor provides Zstandard compression for raster byte planes.
//
// Zstd gives the best ratio on the high-order planes (sign, exponent), which
// are highly repetitive within a tile. Pick it when bandwidth matters more
// than decode latency.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(planes)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
