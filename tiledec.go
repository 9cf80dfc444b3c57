// Package tiledec decompresses raster image tiles on a bounded pool of
// decoder goroutines.
//
// A tile arrives as a raster.ImageData message: the image is split row-wise
// into bands, each band compressed on its own with the FPQ float codec, plus
// a run-length encoding of the pixels that were NaN before compression. The
// service decodes every band of a tile in parallel, one band per worker,
// restores NaN pixels as the raster.Missing sentinel, rescales values to
// their recorded range and hands back the whole tile as one buffer.
//
// # Core Features
//
//   - Fixed worker pool with reusable, grow-only buffers per worker
//   - Strict FIFO processing: one tile in flight, later tiles wait their turn
//   - Per-frame entropy stage (None, Zstd, S2, LZ4) with xxHash64 checksums
//   - CBOR wire format for raster messages
//   - Structured logging (go-kit) and Prometheus metrics
//
// # Basic Usage
//
// Decompressing a message received from the tile layer:
//
//	svc, err := tiledec.NewService(service.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	decoded, err := tiledec.DecodeMessage(ctx, svc, payload)
//	if err != nil {
//	    return err
//	}
//	// decoded.ImageData[0] holds width*height little-endian float32 values.
//
// Producing a message, for tests or a local tile source:
//
//	msg, err := tiledec.EncodeImageData(values, bounds, 1, 4, 11)
//	payload, err := raster.MarshalImageData(msg)
//
// # Package Structure
//
// This package provides convenient top-level wrappers. For control over the
// worker pool (futures, stats, custom codecs) use the service package
// directly; the codec and raster packages hold the frame format and the
// message model.
package tiledec

import (
	"context"
	"fmt"
	"runtime"

	"github.com/arloliu/tiledec/codec"
	"github.com/arloliu/tiledec/endian"
	"github.com/arloliu/tiledec/errs"
	"github.com/arloliu/tiledec/format"
	"github.com/arloliu/tiledec/raster"
	"github.com/arloliu/tiledec/service"
)

// MaxDefaultPoolSize caps DefaultPoolSize regardless of the CPU count.
const MaxDefaultPoolSize = 4

// NaNFill replaces NaN pixels before encoding. Any finite value works; zero
// compresses best.
const NaNFill float32 = 0

// DefaultPoolSize returns min(runtime.NumCPU(), 4).
func DefaultPoolSize() int {
	return min(runtime.NumCPU(), MaxDefaultPoolSize)
}

// NewService starts a decompression service with DefaultPoolSize workers.
//
// Parameters:
//   - opts: Service options (service.WithLogger, service.WithRegisterer, ...)
//
// Returns:
//   - *service.Service: Running service; the caller must Close it
//   - error: An invalid option
//
// Example:
//
//	svc, err := tiledec.NewService(
//	    service.WithLogger(logger),
//	    service.WithRegisterer(prometheus.DefaultRegisterer),
//	)
func NewService(opts ...service.Option) (*service.Service, error) {
	return service.New(DefaultPoolSize(), opts...)
}

// DecodeMessage unmarshals a CBOR raster message and decompresses it.
//
// Parameters:
//   - ctx: Bounds the wait for the result; the tile itself is never cancelled
//   - svc: Service that decodes the bands
//   - payload: CBOR-encoded raster.ImageData
//
// Returns:
//   - *raster.ImageData: The message with a single float32 payload
//   - error: A decoding, validation or band decode error
func DecodeMessage(ctx context.Context, svc *service.Service, payload []byte) (*raster.ImageData, error) {
	msg, err := raster.UnmarshalImageData(payload)
	if err != nil {
		return nil, err
	}

	return svc.DecompressRasterData(ctx, msg)
}

// EncodeImageData builds a raster message from a full tile.
//
// values holds the decimated tile row-major, width*height values where the
// size follows from bounds and mip. The tile is split into bands with
// raster.SplitBands; NaN pixels are moved into the band's NaN encoding and
// replaced by NaNFill. values is not modified.
//
// Parameters:
//   - values: Tile values, may contain NaN
//   - bounds: Covered image rectangle
//   - mip: Decimation factor (>= 1)
//   - bands: Number of bands, 1 to height
//   - precision: FPQ precision (1 to 32)
//   - opts: Frame options (codec.WithEntropy, codec.WithChecksum)
//
// Returns:
//   - *raster.ImageData: Message ready for raster.MarshalImageData
//   - error: errs.ErrInvalidDimensions or an encoding error
func EncodeImageData(values []float32, bounds raster.ImageBounds, mip, bands, precision int, opts ...codec.EncodeOption) (*raster.ImageData, error) {
	msg := &raster.ImageData{
		ImageBounds:        bounds,
		Mip:                int32(mip),
		CompressionType:    format.CodecFPQ,
		CompressionQuality: int32(precision),
	}

	width, height, err := msg.Dimensions()
	if err != nil {
		return nil, err
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d tile", errs.ErrInvalidDimensions, len(values), width, height)
	}
	if bands < 1 || bands > height {
		return nil, fmt.Errorf("%w: %d bands for %d rows", errs.ErrInvalidDimensions, bands, height)
	}

	engine := endian.GetLittleEndianEngine()
	msg.ImageData = make([][]byte, 0, bands)
	msg.NaNEncodings = make([][]byte, 0, bands)

	offset := 0
	for i, rows := range raster.SplitBands(height, bands) {
		band := append([]float32(nil), values[offset:offset+rows*width]...)
		offset += rows * width

		runs := raster.EncodeNaNRuns(band, NaNFill)
		frame, err := codec.Encode(band, width, rows, precision, opts...)
		if err != nil {
			return nil, fmt.Errorf("encode band %d: %w", i, err)
		}

		msg.ImageData = append(msg.ImageData, frame)
		msg.NaNEncodings = append(msg.NaNEncodings, endian.AppendInt32s(engine, nil, runs))
	}

	return msg, nil
}
