package db

import (
	"encoding/binary"
	"math"
)

// EncodeVector encodes a vector as the little-endian FLOAT32 blob vector fields are stored as.
func EncodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// DecodeVector is the inverse of EncodeVector. Trailing bytes short of a full float are ignored.
func DecodeVector(blob string) []float32 {
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(blob[i*4 : i*4+4])))
	}
	return v
}
