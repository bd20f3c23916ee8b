package archive

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encodeFloats packs values as little-endian float64.
func encodeFloats(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

// decodeFloats unpacks a blob written by encodeFloats holding n values.
func decodeFloats(blob []byte, n int) ([]float64, error) {
	if len(blob) != 8*n {
		return nil, fmt.Errorf("decode data: %d bytes for %d values", len(blob), n)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[8*i:]))
	}
	return out, nil
}
