package pool

import "sync"

// Default sizes for worker-owned buffers.
const (
	// WorkerBufferDefaultSize matches the 1 MB buffer each decoder worker starts with.
	WorkerBufferDefaultSize = 1_000_000

	// ScratchBufferDefaultSize is the initial size of codec scratch buffers.
	ScratchBufferDefaultSize = 1024 * 64

	// ScratchBufferMaxThreshold keeps oversized scratch buffers out of the pool.
	ScratchBufferMaxThreshold = 1024 * 1024 * 16
)

// growCapacity implements the slot growth policy: at least double the old
// capacity, and never less than required.
func growCapacity(oldCap, required int) int {
	return max(2*oldCap, required)
}

// ByteBuffer is a growable byte buffer owned by a single worker slot.
//
// Capacity only grows. Reserve never shrinks the buffer, so a burst of small
// tiles after a large one keeps the large allocation around for the next
// large tile.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Reserve ensures the buffer can hold required bytes.
//
// When the capacity is insufficient, a new backing array of
// max(2*Cap(), required) bytes replaces the old one. Contents are not
// preserved: callers fill the buffer right after reserving.
//
// Returns true if the buffer was reallocated.
func (bb *ByteBuffer) Reserve(required int) bool {
	if cap(bb.B) >= required {
		bb.B = bb.B[:0]
		return false
	}

	bb.B = make([]byte, 0, growCapacity(cap(bb.B), required))

	return true
}

// Load reserves room for data and copies it in, leaving Len() == len(data).
func (bb *ByteBuffer) Load(data []byte, required int) bool {
	grew := bb.Reserve(max(required, len(data)))
	bb.B = append(bb.B, data...)

	return grew
}

// Float32Buffer is a growable float32 buffer owned by a single worker slot.
//
// It follows the same policy as ByteBuffer: capacity in elements, grows by at
// least doubling, never shrinks.
type Float32Buffer struct {
	// F is the underlying float32 slice.
	F []float32
}

// NewFloat32Buffer creates a new Float32Buffer holding up to defaultSize values.
func NewFloat32Buffer(defaultSize int) *Float32Buffer {
	return &Float32Buffer{
		F: make([]float32, 0, defaultSize),
	}
}

// Len returns the number of values produced into the buffer.
func (fb *Float32Buffer) Len() int {
	return len(fb.F)
}

// Cap returns the capacity of the buffer in values.
func (fb *Float32Buffer) Cap() int {
	return cap(fb.F)
}

// Reserve ensures room for required values and sets Len() to required.
//
// Returns true if the buffer was reallocated.
func (fb *Float32Buffer) Reserve(required int) bool {
	if cap(fb.F) >= required {
		fb.F = fb.F[:required]
		return false
	}

	fb.F = make([]float32, required, growCapacity(cap(fb.F), required))

	return true
}

// Values returns the first n produced values.
func (fb *Float32Buffer) Values(n int) []float32 {
	return fb.F[:n]
}

// ByteBufferPool is a pool of ByteBuffers for short-lived codec scratch space.
//
// It uses sync.Pool internally. Buffers larger than maxThreshold are dropped on
// Put to avoid retaining memory after an unusually large tile.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var scratchDefaultPool = NewByteBufferPool(ScratchBufferDefaultSize, ScratchBufferMaxThreshold)

// GetScratchBuffer retrieves a ByteBuffer from the default scratch pool.
func GetScratchBuffer() *ByteBuffer {
	return scratchDefaultPool.Get()
}

// PutScratchBuffer returns a ByteBuffer to the default scratch pool.
func PutScratchBuffer(bb *ByteBuffer) {
	scratchDefaultPool.Put(bb)
}
