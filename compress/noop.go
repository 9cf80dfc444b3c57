package compress

// NoOpCompressor stores byte planes without entropy compression.
//
// Useful when planes are already dense (high precision, noisy data) and the
// entropy stage would only burn CPU.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input data as-is.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress copies data into dst, growing it when needed.
//
// Unlike Compress, this copies: the result must not alias the frame owned by
// the request that delivered it.
func (c NoOpCompressor) Decompress(dst, data []byte) ([]byte, error) {
	return append(dst[:0], data...), nil
}
