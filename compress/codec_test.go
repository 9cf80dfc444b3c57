package compress

import (
	"testing"

	"github.com/arloliu/tiledec/format"
	"github.com/stretchr/testify/require"
)

// planeData mimics FPQ byte planes: a near-constant exponent plane followed by
// a noisier mantissa plane.
func planeData(n int) []byte {
	data := make([]byte, 2*n)
	for i := range n {
		data[i] = 0x3F
		data[n+i] = byte((i*31 + i*i*7) % 256)
	}

	return data
}

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

func TestCodec_RoundTrip(t *testing.T) {
	data := planeData(4096)

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(nil, compressed)
			require.NoError(t, err)
			require.Equal(t, data, decompressed)
		})
	}
}

func TestCodec_DecompressReusesDestination(t *testing.T) {
	data := planeData(2048)

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			scratch := make([]byte, 7, len(data))
			out, err := codec.Decompress(scratch, compressed)
			require.NoError(t, err)
			require.Equal(t, data, out)
			require.Same(t, &scratch[:1][0], &out[0], "decoded bytes should land in dst")
		})
	}
}

func TestCodec_DecompressGrowsShortDestination(t *testing.T) {
	data := planeData(1024)

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			out, err := codec.Decompress(make([]byte, 0, 16), compressed)
			require.NoError(t, err)
			require.Equal(t, data, out)
		})
	}
}

func TestCodec_EmptyInput(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionS2, format.CompressionLZ4, format.CompressionZstd} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			out, err := codec.Decompress(nil, nil)
			require.NoError(t, err)
			require.Empty(t, out)
		})
	}
}

func TestCodec_CorruptInput(t *testing.T) {
	garbage := []byte{0xFF, 0xFE, 0xFD, 0xFC, 0xFB, 0xFA, 0xF9, 0xF8}

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			_, err = codec.Decompress(make([]byte, 0, 64), garbage)
			require.Error(t, err)
		})
	}
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range allTypes {
		codec, err := CreateCodec(ct, "plane")
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := CreateCodec(format.CompressionType(0xFF), "plane")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid plane compression")
}

func TestGetCodec_Unknown(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0))
	require.Error(t, err)
}

func TestNoOpCompressor_DecompressCopies(t *testing.T) {
	codec := NewNoOpCompressor()
	frame := []byte{1, 2, 3, 4}

	out, err := codec.Decompress(nil, frame)
	require.NoError(t, err)
	out[0] = 9
	require.Equal(t, byte(1), frame[0], "decompressed bytes must not alias the frame")
}
