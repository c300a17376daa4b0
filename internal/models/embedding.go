package models

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
)

// MaxEmbeddingBytes bounds a stored embedding vector.
const MaxEmbeddingBytes = 64 << 10

// Embedding is an opaque feature vector produced by the extraction pipeline.
// Wire format: consecutive little-endian IEEE-754 float32 values. A nil
// Embedding is stored as NULL.
type Embedding []byte

// EmbeddingFromFloats encodes v in the storage format.
func EmbeddingFromFloats(v []float32) Embedding {
	if len(v) == 0 {
		return nil
	}
	out := make(Embedding, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

// Validate checks the size contract.
func (e Embedding) Validate() error {
	if len(e)%4 != 0 {
		return fmt.Errorf("embedding length %d is not a multiple of 4", len(e))
	}
	if len(e) > MaxEmbeddingBytes {
		return fmt.Errorf("embedding length %d exceeds %d bytes", len(e), MaxEmbeddingBytes)
	}
	return nil
}

// Floats decodes the vector. It fails if the size contract does not hold.
func (e Embedding) Floats() ([]float32, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	out := make([]float32, len(e)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(e[4*i:]))
	}
	return out, nil
}

// Value implements driver.Valuer.
func (e Embedding) Value() (driver.Value, error) {
	if len(e) == 0 {
		return nil, nil
	}
	return []byte(e), nil
}

// Scan implements sql.Scanner.
func (e *Embedding) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*e = nil
	case []byte:
		*e = append(Embedding(nil), v...)
	case string:
		*e = Embedding(v)
	default:
		return fmt.Errorf("cannot scan %T into Embedding", src)
	}
	return nil
}
