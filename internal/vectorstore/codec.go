package vectorstore

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vectors are persisted as packed little-endian IEEE-754 32-bit floats,
// 4 bytes per component, regardless of host endianness. Writers and readers
// must both go through this codec; the byte layout is part of the storage
// contract, not a platform default.

// EncodeVector packs a float32 vector into its stored byte form.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector reconstructs a float32 vector from its stored byte form.
// The input length must be a multiple of 4.
func DecodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
