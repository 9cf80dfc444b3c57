package raster

import (
	"sync"

	"github.com/arloliu/tiledec/endian"
)

// Output is a reassembled tile: one contiguous buffer holding every band in
// band order.
//
// Values may come from a shared pool. Callers that are done with a tile can
// call Release to hand the buffer back; Values must not be used afterwards.
// Calling Release is optional.
type Output struct {
	Values      []float32
	Width       int
	Height      int
	BandLengths []int

	release func()
	once    sync.Once
}

// NewOutput wraps values as an Output. release may be nil.
func NewOutput(values []float32, width, height int, bandLengths []int, release func()) *Output {
	return &Output{
		Values:      values,
		Width:       width,
		Height:      height,
		BandLengths: bandLengths,
		release:     release,
	}
}

// Band returns the values of band i.
func (o *Output) Band(i int) []float32 {
	offset := 0
	for j := range i {
		offset += o.BandLengths[j]
	}

	return o.Values[offset : offset+o.BandLengths[i]]
}

// MissingCount returns the number of Missing pixels.
func (o *Output) MissingCount() int {
	count := 0
	for _, v := range o.Values {
		if IsMissing(v) {
			count++
		}
	}

	return count
}

// Bytes serialises Values as packed float32 bytes in the given byte order.
func (o *Output) Bytes(engine endian.EndianEngine) []byte {
	return endian.AppendFloat32s(engine, make([]byte, 0, len(o.Values)*4), o.Values)
}

// Release returns Values to the pool. Safe to call more than once.
func (o *Output) Release() {
	o.once.Do(func() {
		o.Values = nil
		if o.release != nil {
			o.release()
		}
	})
}
