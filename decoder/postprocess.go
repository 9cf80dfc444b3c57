package decoder

import (
	"math"

	"github.com/arloliu/tiledec/raster"
)

// ReinsertNaNs overwrites the absent runs of values with raster.Missing.
//
// runs alternates present and absent lengths, starting with a present run.
// Runs reaching past the end of values are clamped.
func ReinsertNaNs(values []float32, runs []int32) {
	idx := 0
	absent := false
	for _, run := range runs {
		if idx >= len(values) {
			return
		}
		end := min(idx+int(run), len(values))
		if absent {
			for i := idx; i < end; i++ {
				values[i] = raster.Missing
			}
		}
		idx = end
		absent = !absent
	}
}

// Rescale maps normalised values onto r: v becomes v*(Max-Min)+Min.
//
// Degenerate ranges leave values untouched. Missing and non-finite values are
// skipped.
func Rescale(values []float32, r raster.ValueRange) {
	if !r.Scalable() {
		return
	}

	scale := r.Max - r.Min
	for i, v := range values {
		if raster.IsMissing(v) {
			continue
		}
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		values[i] = float32(f*scale + r.Min)
	}
}
