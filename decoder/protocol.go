package decoder

import (
	"time"

	"github.com/arloliu/tiledec/internal/pool"
	"github.com/arloliu/tiledec/raster"
)

// Kind identifies a worker report.
type Kind uint8

const (
	// KindReady is sent once when the worker has started and is idle.
	KindReady Kind = iota + 1
	// KindDecompressed answers an Instruction.
	KindDecompressed
)

func (k Kind) String() string {
	switch k {
	case KindReady:
		return "ready"
	case KindDecompressed:
		return "decompress"
	default:
		return "unknown"
	}
}

// Instruction asks a worker to decode one band.
//
// Input and Output are moved to the worker: the sender must not touch them
// until they come back in the matching Report.
type Instruction struct {
	Job  uint64
	Band int

	Input  *pool.ByteBuffer    // Input.B[:SubsetLength] holds the codec frame
	Output *pool.Float32Buffer // receives Width*Height values

	SubsetLength int
	Width        int
	Height       int
	Precision    int
	NaNRuns      []int32
	Range        raster.ValueRange
}

// Report is sent by a worker to the pool.
//
// For KindDecompressed, Input and Output are the buffers of the Instruction,
// moved back to the pool, and Output.Values(Produced) holds the band.
type Report struct {
	Kind   Kind
	Worker int
	Job    uint64
	Band   int

	Input    *pool.ByteBuffer
	Output   *pool.Float32Buffer
	Produced int
	Width    int
	Height   int

	Elapsed time.Duration
	Err     error
}
