package codec

import (
	"fmt"
	"math"

	"github.com/arloliu/tiledec/compress"
	"github.com/arloliu/tiledec/endian"
	"github.com/arloliu/tiledec/errs"
	"github.com/arloliu/tiledec/format"
	"github.com/arloliu/tiledec/internal/hash"
	"github.com/arloliu/tiledec/internal/options"
)

type encodeConfig struct {
	entropy  format.CompressionType
	checksum bool
}

// EncodeOption configures Encode.
type EncodeOption = options.Option[*encodeConfig]

// WithEntropy selects the entropy stage applied to the byte planes.
// Defaults to format.CompressionZstd.
func WithEntropy(ct format.CompressionType) EncodeOption {
	return options.New(func(c *encodeConfig) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrUnsupportedCompression, err)
		}
		c.entropy = ct

		return nil
	})
}

// WithChecksum toggles the xxHash64 plane checksum. Enabled by default.
func WithChecksum(enabled bool) EncodeOption {
	return options.NoError(func(c *encodeConfig) {
		c.checksum = enabled
	})
}

// Encode compresses a width x height raster into an FPQ frame.
//
// Values must not contain NaN; producers strip NaNs into run lengths first
// (see raster.EncodeNaNRuns) and replace them with a finite fill value.
func Encode(values []float32, width, height, precision int, opts ...EncodeOption) ([]byte, error) {
	cfg := &encodeConfig{entropy: format.CompressionZstd, checksum: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if width <= 0 || height <= 0 || len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d", errs.ErrInvalidDimensions, len(values), width, height)
	}
	if !format.ValidPrecision(precision) {
		return nil, fmt.Errorf("%w: precision %d", errs.ErrUnsupportedCompression, precision)
	}

	n := len(values)
	planes := Planes(precision)
	mask := keepMask(precision)

	raw := make([]byte, planes*n)
	for i, v := range values {
		bits := math.Float32bits(v) & mask
		for p := range planes {
			raw[p*n+i] = byte(bits >> (24 - 8*p))
		}
	}

	entropy, err := compress.GetCodec(cfg.entropy)
	if err != nil {
		return nil, err
	}
	payload, err := entropy.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress planes: %w", err)
	}

	frame := make([]byte, 0, headerSize+checksumSize+len(payload))
	var flags byte
	if cfg.checksum {
		flags |= flagChecksum
	}
	frame = append(frame, frameVersion, byte(cfg.entropy), byte(planes), flags)
	if cfg.checksum {
		frame = endian.GetLittleEndianEngine().AppendUint64(frame, hash.Sum(raw))
	}
	frame = append(frame, payload...)

	return frame, nil
}

// Quantize returns v as it survives an Encode/Decode round trip at precision.
func Quantize(v float32, precision int) float32 {
	return math.Float32frombits(math.Float32bits(v) & keepMask(precision))
}
