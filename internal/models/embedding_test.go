package models

import (
	"testing"
)

func TestEmbedding_FloatsRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	e := EmbeddingFromFloats(in)
	if len(e) != 16 {
		t.Fatalf("len = %d, want 16", len(e))
	}
	out, err := e.Floats()
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestEmbedding_Validate(t *testing.T) {
	tests := []struct {
		name    string
		e       Embedding
		wantErr bool
	}{
		{"nil", nil, false},
		{"aligned", make(Embedding, 512), false},
		{"misaligned", make(Embedding, 7), true},
		{"too large", make(Embedding, MaxEmbeddingBytes+4), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.e.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmbedding_ScanValue(t *testing.T) {
	var e Embedding
	if err := e.Scan(nil); err != nil || e != nil {
		t.Errorf("Scan(nil) = %v, %v", e, err)
	}
	src := []byte{1, 2, 3, 4}
	if err := e.Scan(src); err != nil {
		t.Fatal(err)
	}
	src[0] = 9
	if e[0] != 1 {
		t.Error("Scan kept a reference to the driver buffer")
	}
	if v, _ := Embedding(nil).Value(); v != nil {
		t.Errorf("Value() of nil = %v, want nil", v)
	}
	if err := e.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
}
