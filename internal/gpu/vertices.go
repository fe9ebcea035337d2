package gpu

import (
	"encoding/binary"
	"math"
)

// Float32Bytes packs v as little-endian floats for buffer upload.
func Float32Bytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}
