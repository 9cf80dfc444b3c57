package format

type (
	CompressionType uint8
	CodecType       uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no entropy compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
)

// Raster codec identifiers carried in the compressionType field of an inbound
// raster message. Only CodecFPQ can be decompressed by the service.
const (
	CodecNone CodecType = 0x0 // CodecNone marks uncompressed float32 rasters.
	CodecFPQ  CodecType = 0x1 // CodecFPQ marks float-plane quantised rasters.
	CodecSZ   CodecType = 0x2 // CodecSZ is reserved for SZ-compressed rasters.
)

// MinPrecision and MaxPrecision bound the compression quality accepted for CodecFPQ.
const (
	MinPrecision = 1
	MaxPrecision = 32
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (c CodecType) String() string {
	switch c {
	case CodecNone:
		return "None"
	case CodecFPQ:
		return "FPQ"
	case CodecSZ:
		return "SZ"
	default:
		return "Unknown"
	}
}

// ValidPrecision reports whether p lies in the accepted (0, 32] quality range.
func ValidPrecision(p int) bool {
	return p >= MinPrecision && p <= MaxPrecision
}
