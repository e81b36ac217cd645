// Package vectorcodec serializes fixed-length float32 vectors to the
// little-endian byte layout the vector index expects.
package vectorcodec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode serializes v as 4*len(v) bytes, little-endian IEEE-754
// single-precision, one float per element, no header. The empty
// vector encodes to an empty byte slice.
func Encode(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// Decode is the inverse of Encode. It fails if len(b) is not a
// multiple of 4.
func Decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vectorcodec: byte length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}
