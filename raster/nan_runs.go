package raster

import "math"

// EncodeNaNRuns strips NaNs from values for compression.
//
// It returns the run-length encoding of present/absent values (starting with
// a present run, which may be zero) and replaces every NaN in values with
// fill. The codec cannot carry NaN, so producers call this before encoding.
func EncodeNaNRuns(values []float32, fill float32) []int32 {
	var runs []int32
	present := true
	var run int32

	for i, v := range values {
		isNaN := math.IsNaN(float64(v))
		if isNaN {
			values[i] = fill
		}
		if isNaN == present {
			runs = append(runs, run)
			present = !present
			run = 0
		}
		run++
	}
	if len(runs) == 0 {
		// no NaNs at all
		return nil
	}
	runs = append(runs, run)

	return runs
}
