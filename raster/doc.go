// Package raster defines the data model exchanged with the tile decompression
// service: the inbound raster message, the validated request split into
// bands, and the reassembled output.
//
// Missing pixels are never represented by IEEE NaN on the output side.
// Shader comparisons do not propagate NaN reliably, so decoded tiles carry
// Missing (the most negative finite float32) instead, and every consumer must
// test for it with IsMissing.
package raster
