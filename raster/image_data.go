package raster

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/arloliu/tiledec/endian"
	"github.com/arloliu/tiledec/errs"
	"github.com/arloliu/tiledec/format"
)

// ImageBounds is the pixel rectangle covered by a raster message, in
// full-resolution image coordinates.
type ImageBounds struct {
	XMin int32 `cbor:"x_min"`
	XMax int32 `cbor:"x_max"`
	YMin int32 `cbor:"y_min"`
	YMax int32 `cbor:"y_max"`
}

// ImageData is the inbound raster message delivered by the tile layer.
//
// ImageData and NaNEncodings are parallel: entry i holds the compressed frame
// and the packed little-endian int32 NaN run lengths of band i.
// ValueRanges is optional; when present it must be parallel as well.
type ImageData struct {
	FileID  int32 `cbor:"file_id"`
	Channel int32 `cbor:"channel"`
	Stokes  int32 `cbor:"stokes"`

	ImageBounds        ImageBounds      `cbor:"image_bounds"`
	Mip                int32            `cbor:"mip"`
	CompressionType    format.CodecType `cbor:"compression_type"`
	CompressionQuality int32            `cbor:"compression_quality"`

	ImageData    [][]byte     `cbor:"image_data"`
	NaNEncodings [][]byte     `cbor:"nan_encodings"`
	ValueRanges  []ValueRange `cbor:"value_ranges,omitempty"`
}

var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create cbor encoding mode: %v", err))
	}

	return em
}()

// UnmarshalImageData decodes a CBOR raster message.
func UnmarshalImageData(data []byte) (*ImageData, error) {
	var msg ImageData
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode raster message: %w", err)
	}

	return &msg, nil
}

// MarshalImageData encodes a raster message as deterministic CBOR.
func MarshalImageData(msg *ImageData) ([]byte, error) {
	return cborEncMode.Marshal(msg)
}

// Dimensions returns the decimated tile size:
// width = ceil((XMax-XMin)/Mip), height = ceil((YMax-YMin)/Mip).
func (m *ImageData) Dimensions() (width, height int, err error) {
	b := m.ImageBounds
	if m.Mip <= 0 || b.XMax <= b.XMin || b.YMax <= b.YMin {
		return 0, 0, fmt.Errorf("%w: bounds [%d,%d)x[%d,%d) mip %d",
			errs.ErrInvalidDimensions, b.XMin, b.XMax, b.YMin, b.YMax, m.Mip)
	}

	mip := int(m.Mip)
	width = (int(b.XMax-b.XMin) + mip - 1) / mip
	height = (int(b.YMax-b.YMin) + mip - 1) / mip

	return width, height, nil
}

// ParseRequest validates a raster message and splits it into band subsets.
//
// maxBands bounds the number of bands (the worker pool size); zero means no
// bound. Checks run in this order:
//   - band counts: errs.ErrMismatchedSubsetCount
//   - codec identifier and quality: errs.ErrUnsupportedCompression
//   - bounds, mip and band heights: errs.ErrInvalidDimensions
//   - NaN encodings: errs.ErrInvalidNaNEncoding
func ParseRequest(m *ImageData, maxBands int) (*Request, error) {
	n := len(m.ImageData)
	switch {
	case n == 0:
		return nil, fmt.Errorf("%w: no compressed subsets", errs.ErrMismatchedSubsetCount)
	case n != len(m.NaNEncodings):
		return nil, fmt.Errorf("%w: %d subsets, %d NaN encodings", errs.ErrMismatchedSubsetCount, n, len(m.NaNEncodings))
	case maxBands > 0 && n > maxBands:
		return nil, fmt.Errorf("%w: %d subsets exceed %d workers", errs.ErrMismatchedSubsetCount, n, maxBands)
	case len(m.ValueRanges) != 0 && len(m.ValueRanges) != n:
		return nil, fmt.Errorf("%w: %d subsets, %d value ranges", errs.ErrMismatchedSubsetCount, n, len(m.ValueRanges))
	}

	precision := int(m.CompressionQuality)
	if m.CompressionType != format.CodecFPQ || !format.ValidPrecision(precision) {
		return nil, fmt.Errorf("%w: %s quality %d", errs.ErrUnsupportedCompression, m.CompressionType, precision)
	}

	width, height, err := m.Dimensions()
	if err != nil {
		return nil, err
	}
	if height < n {
		return nil, fmt.Errorf("%w: %d rows cannot be split into %d bands", errs.ErrInvalidDimensions, height, n)
	}

	engine := endian.GetLittleEndianEngine()
	rows := SplitBands(height, n)
	req := &Request{
		Subsets: make([]BandSubset, n),
		Width:   width,
		Height:  height,
		Codec:   m.CompressionType,
	}

	for i := range n {
		runs, err := endian.DecodeInt32s(engine, nil, m.NaNEncodings[i])
		if err != nil {
			return nil, fmt.Errorf("%w: band %d: %w", errs.ErrInvalidNaNEncoding, i, err)
		}
		for _, r := range runs {
			if r < 0 {
				return nil, fmt.Errorf("%w: band %d has negative run %d", errs.ErrInvalidNaNEncoding, i, r)
			}
		}

		sub := BandSubset{
			Data:      m.ImageData[i],
			NaNRuns:   runs,
			Width:     width,
			Height:    rows[i],
			Precision: precision,
		}
		if len(m.ValueRanges) != 0 {
			sub.Range = m.ValueRanges[i]
		}
		req.Subsets[i] = sub
	}

	return req, nil
}

// WithDecoded returns a copy of m carrying the decoded tile: a single
// little-endian float32 payload, no NaN encodings (missing pixels are now
// Missing sentinels), and CompressionType set to format.CodecNone.
func (m *ImageData) WithDecoded(out *Output) *ImageData {
	decoded := *m
	decoded.CompressionType = format.CodecNone
	decoded.ImageData = [][]byte{out.Bytes(endian.GetLittleEndianEngine())}
	decoded.NaNEncodings = nil
	decoded.ValueRanges = nil

	return &decoded
}
