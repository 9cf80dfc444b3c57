package service

import (
	"context"
	"math"
	"testing"

	"github.com/arloliu/tiledec/codec"
	"github.com/arloliu/tiledec/endian"
	"github.com/arloliu/tiledec/errs"
	"github.com/arloliu/tiledec/format"
	"github.com/arloliu/tiledec/raster"
	"github.com/stretchr/testify/require"
)

// tileMessage encodes a width x height tile split into bands rows-wise.
func tileMessage(t testing.TB, values []float32, width, height, bands, precision int, ranges []raster.ValueRange) *raster.ImageData {
	t.Helper()

	msg := &raster.ImageData{
		FileID:             1,
		ImageBounds:        raster.ImageBounds{XMax: int32(width), YMax: int32(height)},
		Mip:                1,
		CompressionType:    format.CodecFPQ,
		CompressionQuality: int32(precision),
		ValueRanges:        ranges,
	}

	engine := endian.GetLittleEndianEngine()
	offset := 0
	for _, rows := range raster.SplitBands(height, bands) {
		band := append([]float32(nil), values[offset:offset+rows*width]...)
		offset += rows * width

		runs := raster.EncodeNaNRuns(band, 0)
		frame, err := codec.Encode(band, width, rows, precision)
		require.NoError(t, err)

		msg.ImageData = append(msg.ImageData, frame)
		msg.NaNEncodings = append(msg.NaNEncodings, endian.AppendInt32s(engine, nil, runs))
	}

	return msg
}

func decodedValues(t *testing.T, msg *raster.ImageData) []float32 {
	t.Helper()

	require.Equal(t, format.CodecNone, msg.CompressionType)
	require.Len(t, msg.ImageData, 1)
	require.Nil(t, msg.NaNEncodings)

	values, err := endian.DecodeFloat32s(endian.GetLittleEndianEngine(), nil, msg.ImageData[0])
	require.NoError(t, err)

	return values
}

func TestDecompressRasterData_RescaledZeros(t *testing.T) {
	svc := newTestService(t, 4)

	ranges := make([]raster.ValueRange, 4)
	for i := range ranges {
		ranges[i] = raster.ValueRange{Min: -1, Max: 1}
	}
	msg := tileMessage(t, make([]float32, 64*64), 64, 64, 4, 11, ranges)

	decoded, err := svc.DecompressRasterData(context.Background(), msg)
	require.NoError(t, err)

	values := decodedValues(t, decoded)
	require.Len(t, values, 4096)
	for i, v := range values {
		require.Equal(t, float32(-1), v, "pixel %d", i)
	}
	require.Equal(t, msg.ImageBounds, decoded.ImageBounds)
	require.Equal(t, msg.FileID, decoded.FileID)
}

func TestDecompressRasterData_NaNRuns(t *testing.T) {
	svc := newTestService(t, 2)

	nan := float32(math.NaN())
	values := []float32{
		1, 2, nan, nan, 5, 6, // band 0, rows 0-1
		7, 8, 9, 10, 11, 12,
		nan, 14, 15, 16, 17, 18, // band 1, rows 2-4
		19, 20, 21, 22, 23, 24,
		25, 26, 27, 28, 29, nan,
	}
	msg := tileMessage(t, values, 6, 5, 2, 23, nil)

	decoded, err := svc.DecompressRasterData(context.Background(), msg)
	require.NoError(t, err)

	got := decodedValues(t, decoded)
	require.Len(t, got, len(values))
	for i, v := range values {
		if math.IsNaN(float64(v)) {
			require.True(t, raster.IsMissing(got[i]), "pixel %d", i)
			continue
		}
		require.Equal(t, v, got[i], "pixel %d", i)
	}
}

func TestDecompressRasterData_UnevenBands(t *testing.T) {
	svc := newTestService(t, 3)

	values := make([]float32, 4*7)
	for i := range values {
		values[i] = float32(i)
	}
	msg := tileMessage(t, values, 4, 7, 3, 23, nil)

	decoded, err := svc.DecompressRasterData(context.Background(), msg)
	require.NoError(t, err)
	require.Equal(t, values, decodedValues(t, decoded))
}

func TestDecompressRasterData_Validation(t *testing.T) {
	svc := newTestService(t, 2)

	valid := func() *raster.ImageData {
		return tileMessage(t, make([]float32, 16), 4, 4, 2, 11, nil)
	}

	tests := []struct {
		name   string
		mutate func(m *raster.ImageData)
		err    error
	}{
		{
			name:   "nan encoding count",
			mutate: func(m *raster.ImageData) { m.NaNEncodings = m.NaNEncodings[:1] },
			err:    errs.ErrMismatchedSubsetCount,
		},
		{
			name: "count checked before compression",
			mutate: func(m *raster.ImageData) {
				m.NaNEncodings = m.NaNEncodings[:1]
				m.CompressionType = format.CodecSZ
			},
			err: errs.ErrMismatchedSubsetCount,
		},
		{
			name: "more subsets than workers",
			mutate: func(m *raster.ImageData) {
				m.ImageData = append(m.ImageData, nil)
				m.NaNEncodings = append(m.NaNEncodings, nil)
			},
			err: errs.ErrMismatchedSubsetCount,
		},
		{
			name:   "unsupported codec",
			mutate: func(m *raster.ImageData) { m.CompressionType = format.CodecSZ },
			err:    errs.ErrUnsupportedCompression,
		},
		{
			name:   "quality out of range",
			mutate: func(m *raster.ImageData) { m.CompressionQuality = 33 },
			err:    errs.ErrUnsupportedCompression,
		},
		{
			name:   "bad nan encoding",
			mutate: func(m *raster.ImageData) { m.NaNEncodings[0] = []byte{1, 2, 3} },
			err:    errs.ErrInvalidNaNEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := valid()
			tt.mutate(msg)

			decoded, err := svc.DecompressRasterData(context.Background(), msg)
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, decoded)

			st := svc.Stats()
			require.Equal(t, StateFree, st.State)
			require.Zero(t, st.QueueLength)
		})
	}
}

func TestDecompressRasterData_CorruptFrame(t *testing.T) {
	svc := newTestService(t, 2)

	msg := tileMessage(t, make([]float32, 16), 4, 4, 2, 11, nil)
	msg.ImageData[1] = []byte{0xde, 0xad}

	_, err := svc.DecompressRasterData(context.Background(), msg)
	require.ErrorIs(t, err, errs.ErrDecodeFailed)
	require.ErrorIs(t, err, errs.ErrCorruptFrame)

	msg = tileMessage(t, make([]float32, 16), 4, 4, 2, 11, nil)
	_, err = svc.DecompressRasterData(context.Background(), msg)
	require.NoError(t, err)
}

func BenchmarkDecompressRasterData(b *testing.B) {
	svc, err := New(4)
	require.NoError(b, err)
	defer svc.Close()
	<-svc.Ready()

	const size = 256
	values := make([]float32, size*size)
	for i := range values {
		values[i] = float32(math.Sin(float64(i) / 100))
	}
	msg := tileMessage(b, values, size, size, 4, 16, nil)

	b.ReportAllocs()
	b.SetBytes(int64(len(values) * 4))
	for b.Loop() {
		if _, err := svc.DecompressRasterData(context.Background(), msg); err != nil {
			b.Fatal(err)
		}
	}
}
