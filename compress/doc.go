// Package compress provides the entropy stage of the FPQ raster codec.
//
// The codec package splits quantised float32 values into byte planes; this
// package squeezes those planes with a general-purpose algorithm chosen per
// frame. The algorithm identifier travels in the frame header, so a decoder
// never has to be configured up front.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): planes stored verbatim
//   - Zstd (format.CompressionZstd): best ratio, moderate speed
//   - S2 (format.CompressionS2): balanced ratio and speed
//   - LZ4 (format.CompressionLZ4): fastest decompression
//
// # Buffer Reuse
//
// Decompression writes into a caller-supplied destination:
//
//	planes, err := codec.Decompress(scratch[:0], payload)
//
// When cap(scratch) is large enough for the decoded planes no allocation
// happens. Decoder workers hold on to their scratch between tiles, so a
// steady stream of similar tiles runs allocation-free after warmup.
//
// # Zstd Backends
//
// The default build uses github.com/klauspost/compress/zstd with pooled
// decoders. Building with the gozstd tag (requires cgo) switches to
// github.com/valyala/gozstd, which binds the reference C library.
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use. Pooled
// encoder/decoder state is taken from sync.Pool per call.
package compress
