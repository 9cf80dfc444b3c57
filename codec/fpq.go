package codec

import (
	"fmt"
	"math"

	"github.com/arloliu/tiledec/compress"
	"github.com/arloliu/tiledec/endian"
	"github.com/arloliu/tiledec/errs"
	"github.com/arloliu/tiledec/format"
	"github.com/arloliu/tiledec/internal/hash"
	"github.com/arloliu/tiledec/internal/pool"
)

const (
	frameVersion = 1
	headerSize   = 4
	checksumSize = 8

	flagChecksum = 1 << 0

	signExponentBits = 9
	mantissaBits     = 23
)

// Binding is the fixed call contract between a decoder worker and the codec.
//
// Implementations must be safe for concurrent use: every worker calls the
// same Binding in parallel.
type Binding interface {
	Decode(dst []float32, src []byte, width, height, precision int) error
}

// KeptBits returns how many high-order bits of each float32 survive at precision.
func KeptBits(precision int) int {
	return signExponentBits + min(precision, mantissaBits)
}

// Planes returns the number of byte planes a frame of the given precision stores.
func Planes(precision int) int {
	return (KeptBits(precision) + 7) / 8
}

func keepMask(precision int) uint32 {
	return ^uint32(0) << (32 - KeptBits(precision))
}

type frameHeader struct {
	entropy  format.CompressionType
	planes   int
	checksum bool
	sum      uint64
}

func parseFrame(src []byte) (frameHeader, []byte, error) {
	var hdr frameHeader
	if len(src) < headerSize {
		return hdr, nil, fmt.Errorf("%w: %d byte frame is shorter than header", errs.ErrCorruptFrame, len(src))
	}
	if src[0] != frameVersion {
		return hdr, nil, fmt.Errorf("%w: unknown frame version %d", errs.ErrCorruptFrame, src[0])
	}

	hdr.entropy = format.CompressionType(src[1])
	hdr.planes = int(src[2])
	hdr.checksum = src[3]&flagChecksum != 0
	payload := src[headerSize:]

	if hdr.checksum {
		if len(payload) < checksumSize {
			return hdr, nil, fmt.Errorf("%w: truncated checksum", errs.ErrCorruptFrame)
		}
		hdr.sum = endian.GetLittleEndianEngine().Uint64(payload)
		payload = payload[checksumSize:]
	}

	return hdr, payload, nil
}

// FPQ is the built-in float plane quantisation codec.
//
// The zero value is ready to use. FPQ is stateless; scratch space comes from
// a shared buffer pool.
type FPQ struct{}

var _ Binding = FPQ{}

// NewFPQ returns the FPQ codec binding.
func NewFPQ() FPQ {
	return FPQ{}
}

// Decode decodes an FPQ frame into dst[:width*height].
//
// Errors:
//   - errs.ErrInvalidDimensions: non-positive width or height
//   - errs.ErrUnsupportedCompression: precision outside (0, 32] or unknown entropy stage
//   - errs.ErrShortBuffer: len(dst) < width*height
//   - errs.ErrPrecisionMismatch: frame plane count disagrees with precision
//   - errs.ErrCorruptFrame: malformed header or payload
//   - errs.ErrChecksumMismatch: planes do not match the frame checksum
func (FPQ) Decode(dst []float32, src []byte, width, height, precision int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", errs.ErrInvalidDimensions, width, height)
	}
	if !format.ValidPrecision(precision) {
		return fmt.Errorf("%w: precision %d", errs.ErrUnsupportedCompression, precision)
	}

	n := width * height
	if len(dst) < n {
		return fmt.Errorf("%w: need %d values, have %d", errs.ErrShortBuffer, n, len(dst))
	}

	hdr, payload, err := parseFrame(src)
	if err != nil {
		return err
	}

	planes := Planes(precision)
	if hdr.planes != planes {
		return fmt.Errorf("%w: frame has %d planes, precision %d needs %d",
			errs.ErrPrecisionMismatch, hdr.planes, precision, planes)
	}

	entropy, err := compress.GetCodec(hdr.entropy)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrUnsupportedCompression, err)
	}

	scratch := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(scratch)
	scratch.Reserve(planes * n)

	raw, err := entropy.Decompress(scratch.B, payload)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCorruptFrame, err)
	}
	// keep a grown allocation for the next tile
	if cap(raw) > cap(scratch.B) {
		scratch.B = raw[:0]
	}

	if len(raw) != planes*n {
		return fmt.Errorf("%w: decoded %d plane bytes, expected %d", errs.ErrCorruptFrame, len(raw), planes*n)
	}
	if hdr.checksum && hash.Sum(raw) != hdr.sum {
		return errs.ErrChecksumMismatch
	}

	out := dst[:n]
	for i := range out {
		var bits uint32
		for p := range planes {
			bits |= uint32(raw[p*n+i]) << (24 - 8*p)
		}
		out[i] = math.Float32frombits(bits)
	}

	return nil
}
