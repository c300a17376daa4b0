package models

import "time"

// NewUniversity carries the input of a university registration. Key material
// is PEM text; the private key is write-only from the caller's point of view.
type NewUniversity struct {
	Name               string
	Address            string
	PrivateKey         string
	PublicKey          string
	SignatureEmbedding Embedding
	LogoEmbedding      Embedding
	StampEmbedding     Embedding
}

// University is the public view of a university: reference embeddings used as
// ground truth for certificate checks, and the public half of its key pair.
type University struct {
	ID                 string    `json:"univ_id"`
	Name               string    `json:"name"`
	Address            string    `json:"address"`
	PublicKey          string    `json:"public_key"`
	SignatureEmbedding Embedding `json:"signature_embeddings,omitempty"`
	LogoEmbedding      Embedding `json:"logo_embeddings,omitempty"`
	StampEmbedding     Embedding `json:"stamp_embeddings,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
