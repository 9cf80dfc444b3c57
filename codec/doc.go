// Package codec implements the raster codec binding used by decoder workers.
//
// # Call Contract
//
// Decoder workers see the codec only through Binding:
//
//	Decode(dst []float32, src []byte, width, height, precision int) error
//
// The call writes exactly width*height values into dst and either succeeds
// or reports an error. Workers treat the error as opaque.
//
// # FPQ Frames
//
// The built-in codec (FPQ, float plane quantisation) is lossy with a
// precision knob in (0, 32]:
//
//   - every float32 keeps sign and exponent plus min(precision, 23) mantissa
//     bits; precision >= 23 is lossless
//   - the kept high-order bits are transposed into byte planes, most
//     significant plane first, so the slowly varying sign/exponent bytes of a
//     tile sit next to each other
//   - the planes are squeezed by one of the compress package algorithms
//
// Frame layout (all multi-byte fields little-endian):
//
//	+---------+---------+--------+-------+----------------+-----------------+
//	| version | entropy | planes | flags | xxh64 (opt, 8) | entropy payload |
//	+---------+---------+--------+-------+----------------+-----------------+
//
// The checksum covers the raw planes and is present when flags&1 is set.
package codec
