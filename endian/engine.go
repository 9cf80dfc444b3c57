// Package endian provides byte order utilities for raster wire payloads.
//
// Inbound raster messages carry NaN run lengths as packed 32-bit integers and
// the service hands reassembled tiles back as packed float32 bytes. Both are
// little-endian on the wire; this package converts between those byte slices
// and typed Go slices.
//
// # Basic Usage
//
//	engine := endian.GetLittleEndianEngine()
//	runs, err := endian.DecodeInt32s(engine, nil, nanEncoding)
//	payload := endian.AppendFloat32s(engine, nil, values)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// CompareNativeEndian reports whether engine matches the host byte order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// DecodeInt32s decodes packed 32-bit integers from src into dst[:0].
//
// Returns an error if len(src) is not a multiple of 4.
func DecodeInt32s(engine EndianEngine, dst []int32, src []byte) ([]int32, error) {
	if len(src)%4 != 0 {
		return nil, fmt.Errorf("packed int32 payload has %d bytes, not a multiple of 4", len(src))
	}

	n := len(src) / 4
	if cap(dst) < n {
		dst = make([]int32, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = int32(engine.Uint32(src[i*4:])) //nolint:gosec
	}

	return dst, nil
}

// AppendInt32s appends values to dst as packed 32-bit integers.
func AppendInt32s(engine EndianEngine, dst []byte, values []int32) []byte {
	for _, v := range values {
		dst = engine.AppendUint32(dst, uint32(v)) //nolint:gosec
	}

	return dst
}

// AppendFloat32s appends values to dst as packed IEEE-754 float32 bytes.
//
// When engine matches the host byte order the values are copied in one block.
func AppendFloat32s(engine EndianEngine, dst []byte, values []float32) []byte {
	if len(values) == 0 {
		return dst
	}

	if CompareNativeEndian(engine) {
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*4)
		return append(dst, raw...)
	}

	for _, v := range values {
		dst = engine.AppendUint32(dst, math.Float32bits(v))
	}

	return dst
}

// DecodeFloat32s decodes packed float32 bytes from src into dst[:0].
func DecodeFloat32s(engine EndianEngine, dst []float32, src []byte) ([]float32, error) {
	if len(src)%4 != 0 {
		return nil, fmt.Errorf("packed float32 payload has %d bytes, not a multiple of 4", len(src))
	}

	n := len(src) / 4
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = math.Float32frombits(engine.Uint32(src[i*4:]))
	}

	return dst, nil
}
