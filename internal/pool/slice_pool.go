package pool

import "sync"

// float32SlicePool holds reassembly buffers released by callers, so tiles of
// a similar size can reuse the previous tile's allocation.
var float32SlicePool = sync.Pool{
	New: func() any { return &[]float32{} },
}

// GetFloat32Slice retrieves and resizes a float32 slice from the pool.
//
// The returned slice will have the exact length specified by the size parameter.
// If the pooled slice has insufficient capacity, a new slice will be allocated.
// The returned release function hands the slice back; it must be called at
// most once, and the slice must not be used afterwards.
//
// Example:
//
//	values, release := pool.GetFloat32Slice(width * height)
//	defer release()
func GetFloat32Slice(size int) ([]float32, func()) {
	ptr, _ := float32SlicePool.Get().(*[]float32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float32, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float32SlicePool.Put(ptr) }
}
