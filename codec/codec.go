// Package codec encodes vectors at rest.
//
// A VectorCodec combines a numeric Format (float32, float16 or int8) with an
// optional block Compression (lz4 or zstd). Changing either for existing data
// is a breaking change: bytes written with one codec do not decode with
// another.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/x448/float16"
)

var (
	// ErrCorrupt is returned when encoded bytes do not match the expected layout.
	ErrCorrupt = errors.New("codec: corrupt payload")

	// ErrOutOfRange is returned when a finite component cannot be represented
	// in the target format.
	ErrOutOfRange = errors.New("codec: value out of range for format")
)

// Format is the numeric precision of stored components.
type Format uint8

const (
	// Float32 stores 4 bytes per component, losslessly.
	Float32 Format = iota
	// Float16 stores IEEE 754 half precision, 2 bytes per component.
	Float16
	// Int8 stores symmetric scalar quantization, 1 byte per component plus a
	// 4 byte per-vector scale.
	Int8
)

const int8ScaleBytes = 4

func (f Format) String() string {
	switch f {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case Int8:
		return "int8"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name. The empty string means Float32.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "float32", "f32":
		return Float32, nil
	case "float16", "f16", "half":
		return Float16, nil
	case "int8", "i8":
		return Int8, nil
	default:
		return 0, fmt.Errorf("codec: unknown format %q", s)
	}
}

// BytesPerVector returns the uncompressed payload size for dim components.
func (f Format) BytesPerVector(dim int) int {
	switch f {
	case Float16:
		return 2 * dim
	case Int8:
		return dim + int8ScaleBytes
	default:
		return 4 * dim
	}
}

// Compression is the block compression applied on top of the format.
type Compression uint8

const (
	// None stores the payload as is.
	None Compression = iota
	// LZ4 applies LZ4 block compression.
	LZ4
	// Zstd applies Zstandard compression.
	Zstd
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name. The empty string means None.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none", "off":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zstandard":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("codec: unknown compression %q", s)
	}
}

// VectorCodec encodes and decodes float32 vectors. It is stateless and safe
// for concurrent use.
type VectorCodec struct {
	format      Format
	compression Compression
}

// New creates a VectorCodec.
func New(format Format, compression Compression) (*VectorCodec, error) {
	if format > Int8 {
		return nil, fmt.Errorf("codec: unknown format %v", format)
	}
	if compression > Zstd {
		return nil, fmt.Errorf("codec: unknown compression %v", compression)
	}
	return &VectorCodec{format: format, compression: compression}, nil
}

// Format returns the numeric format.
func (c *VectorCodec) Format() Format { return c.format }

// Compression returns the block compression.
func (c *VectorCodec) Compression() Compression { return c.compression }

// BytesPerVector returns the uncompressed payload size for dim components.
func (c *VectorCodec) BytesPerVector(dim int) int { return c.format.BytesPerVector(dim) }

// Encode serializes v.
func (c *VectorCodec) Encode(v []float32) ([]byte, error) {
	var payload []byte
	switch c.format {
	case Float16:
		payload = make([]byte, 2*len(v))
		for i, x := range v {
			h := float16.Fromfloat32(x)
			if h.IsInf(0) && !math.IsInf(float64(x), 0) {
				return nil, fmt.Errorf("%w: %v as float16", ErrOutOfRange, x)
			}
			binary.LittleEndian.PutUint16(payload[2*i:], h.Bits())
		}
	case Int8:
		payload = encodeInt8(v)
	default:
		payload = make([]byte, 4*len(v))
		for i, x := range v {
			binary.LittleEndian.PutUint32(payload[4*i:], math.Float32bits(x))
		}
	}
	return compressBlock(payload, c.compression)
}

// Decode deserializes dim components from b.
func (c *VectorCodec) Decode(b []byte, dim int) ([]float32, error) {
	payload, err := decompressBlock(b, c.compression)
	if err != nil {
		return nil, err
	}
	if len(payload) != c.format.BytesPerVector(dim) {
		return nil, fmt.Errorf("%w: %d bytes for %d %s components", ErrCorrupt, len(payload), dim, c.format)
	}

	out := make([]float32, dim)
	switch c.format {
	case Float16:
		for i := range out {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(payload[2*i:])).Float32()
		}
	case Int8:
		scale := math.Float32frombits(binary.LittleEndian.Uint32(payload))
		for i := range out {
			out[i] = float32(int8(payload[int8ScaleBytes+i])) * scale
		}
	default:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:]))
		}
	}
	return out, nil
}

// encodeInt8 maps [-absMax, absMax] onto [-127, 127].
func encodeInt8(v []float32) []byte {
	var absMax float32
	for _, x := range v {
		absMax = max(absMax, float32(math.Abs(float64(x))))
	}
	var scale float32
	if absMax > 0 {
		scale = absMax / 127
	}

	out := make([]byte, int8ScaleBytes+len(v))
	binary.LittleEndian.PutUint32(out, math.Float32bits(scale))
	if scale == 0 {
		return out
	}
	for i, x := range v {
		q := math.Round(float64(x / scale))
		q = math.Max(-127, math.Min(127, q))
		out[int8ScaleBytes+i] = byte(int8(q))
	}
	return out
}
