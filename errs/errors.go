// Package errs defines the sentinel errors returned by tiledec packages.
//
// Errors are wrapped with additional context using fmt.Errorf("...: %w", err),
// so callers should match them with errors.Is.
package errs

import "errors"

// Validation errors, returned before a request reaches the worker pool.
var (
	// ErrMismatchedSubsetCount indicates that the number of compressed band subsets
	// does not match the number of NaN encodings, is zero, or exceeds the pool size.
	ErrMismatchedSubsetCount = errors.New("mismatched subset counts")

	// ErrUnsupportedCompression indicates an unknown codec identifier or a
	// compression quality outside (0, 32].
	ErrUnsupportedCompression = errors.New("unsupported compression type")

	// ErrInvalidDimensions indicates non-positive image bounds, mip or band sizes.
	ErrInvalidDimensions = errors.New("invalid raster dimensions")

	// ErrInvalidNaNEncoding indicates a NaN run-length payload that is not a
	// whole number of 32-bit run lengths or contains a negative run.
	ErrInvalidNaNEncoding = errors.New("invalid NaN run-length encoding")

	// ErrBufferLimit indicates a band that would require a worker buffer larger
	// than the configured limit.
	ErrBufferLimit = errors.New("band exceeds worker buffer limit")
)

// Pool and lifecycle errors.
var (
	ErrInvalidPoolSize = errors.New("pool size must be positive")
	ErrServiceClosed   = errors.New("decompression service closed")

	// ErrDecodeFailed wraps the error reported by a decoder worker. The whole
	// request fails; no partial output is returned.
	ErrDecodeFailed = errors.New("band decode failed")
)

// Codec frame errors, reported by the codec binding.
var (
	ErrCorruptFrame      = errors.New("corrupt codec frame")
	ErrPrecisionMismatch = errors.New("frame precision mismatch")
	ErrChecksumMismatch  = errors.New("frame checksum mismatch")
	ErrShortBuffer       = errors.New("destination buffer too small")
)
