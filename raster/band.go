package raster

import (
	"math"

	"github.com/arloliu/tiledec/format"
)

// Missing marks a pixel that had no value before compression.
const Missing float32 = -math.MaxFloat32

// IsMissing reports whether v is the missing-pixel sentinel.
func IsMissing(v float32) bool {
	return v == Missing
}

// ValueRange is the physical range that normalised decoded values map onto.
type ValueRange struct {
	Min float64 `cbor:"min"`
	Max float64 `cbor:"max"`
}

// Scalable reports whether the range has a finite, positive width. Degenerate
// ranges leave decoded values unscaled.
func (r ValueRange) Scalable() bool {
	width := r.Max - r.Min
	return width > 0 && !math.IsInf(width, 0) && !math.IsNaN(width)
}

// BandSubset is one horizontal strip of a tile, decoded by exactly one worker.
//
// A BandSubset is immutable once built: the pool copies Data into the
// worker's own buffer before dispatch.
type BandSubset struct {
	Data      []byte     // compressed codec frame
	NaNRuns   []int32    // alternating present/absent run lengths, present first
	Width     int        // band width in pixels
	Height    int        // band height in rows
	Precision int        // codec precision in (0, 32]
	Range     ValueRange // rescaling range; zero value disables rescaling
}

// Pixels returns Width*Height.
func (b BandSubset) Pixels() int {
	return b.Width * b.Height
}

// Request is a validated decompression request: one subset per band, in
// band (row) order.
//
// Each subset carries its own NaN runs and precision, so the NaN encoding
// count always equals the subset count.
type Request struct {
	Subsets []BandSubset
	Width   int
	Height  int
	Codec   format.CodecType
}

// Bands returns the number of bands in the request.
func (r *Request) Bands() int {
	return len(r.Subsets)
}

// Pixels returns the total number of decoded values across all bands.
func (r *Request) Pixels() int {
	total := 0
	for _, s := range r.Subsets {
		total += s.Pixels()
	}

	return total
}

// SplitBands returns the row count of each of n bands covering height rows.
//
// Every band gets floor(height/n) rows; the last band also takes the
// remainder.
func SplitBands(height, n int) []int {
	if n <= 0 {
		return nil
	}

	rows := make([]int, n)
	step := height / n
	for i := range rows {
		rows[i] = step
	}
	rows[n-1] = height - step*(n-1)

	return rows
}
