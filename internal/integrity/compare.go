package integrity

import (
	"bytes"
	"context"
	"strings"

	"github.com/evidenceledger/credstore/internal/models"
)

// Claim is what a verifier presents for a certificate. Empty fields are not
// checked.
type Claim struct {
	Name string
	// DOB is DD-MM-YYYY, as at issuance.
	DOB           string
	GPA           string
	RenderedImage []byte

	SignatureEmbedding models.Embedding
	PhotoEmbedding     models.Embedding
	LogoEmbedding      models.Embedding

	// Attestation is a token previously returned by Issuer.Issue.
	Attestation string
}

// EmbeddingMatcher decides whether a presented embedding matches the one
// stored at issuance. Similarity scoring belongs to the feature-extraction
// side; the store only holds the vectors.
type EmbeddingMatcher interface {
	Match(ctx context.Context, field string, stored, presented models.Embedding) (bool, error)
}

// ExactMatcher accepts an embedding only when it is byte-identical to the
// stored one.
type ExactMatcher struct{}

func (ExactMatcher) Match(_ context.Context, _ string, stored, presented models.Embedding) (bool, error) {
	return bytes.Equal(stored, presented), nil
}

// Check is the outcome for one integrity field.
type Check struct {
	Field string
	Match bool
}

// Report summarizes a comparison. Genuine is true only when at least one
// field was checked and every check matched.
type Report struct {
	Genuine bool
	Checks  []Check
	Reason  string
}

func (r *Report) add(field string, match bool) {
	r.Checks = append(r.Checks, Check{Field: field, Match: match})
}

func (r *Report) finish() {
	var failed []string
	for _, c := range r.Checks {
		if !c.Match {
			failed = append(failed, c.Field)
		}
	}

	switch {
	case len(r.Checks) == 0:
		r.Genuine = false
		r.Reason = "no integrity fields presented"
	case len(failed) > 0:
		r.Genuine = false
		r.Reason = "mismatch: " + strings.Join(failed, ", ")
	default:
		r.Genuine = true
		r.Reason = "all integrity checks passed"
	}
}

// Compare checks claim against the stored record. A nil matcher means
// ExactMatcher. The attestation, if any, is not checked here because it
// needs the issuing university's public key; see Verifier.
func Compare(ctx context.Context, cert models.Certificate, claim Claim, matcher EmbeddingMatcher) (Report, error) {
	if matcher == nil {
		matcher = ExactMatcher{}
	}

	var r Report
	for _, f := range []struct {
		field, presented, stored string
	}{
		{"student_name", claim.Name, cert.StudentNameHash},
		{"dob", claim.DOB, cert.DOBHash},
		{"gpa", claim.GPA, cert.GPAHash},
	} {
		if f.presented == "" {
			continue
		}
		r.add(f.field, digestEqual(HashField(f.presented), f.stored))
	}

	if len(claim.RenderedImage) > 0 {
		r.add("image", digestEqual(ImageChecksum(claim.RenderedImage), cert.ImageHash))
	}

	for _, e := range []struct {
		field             string
		presented, stored models.Embedding
	}{
		{"signature_embeddings", claim.SignatureEmbedding, cert.SignatureEmbedding},
		{"photo_embeddings", claim.PhotoEmbedding, cert.PhotoEmbedding},
		{"logo_embeddings", claim.LogoEmbedding, cert.LogoEmbedding},
	} {
		if len(e.presented) == 0 {
			continue
		}
		if len(e.stored) == 0 {
			r.add(e.field, false)
			continue
		}
		ok, err := matcher.Match(ctx, e.field, e.stored, e.presented)
		if err != nil {
			return Report{}, err
		}
		r.add(e.field, ok)
	}

	r.finish()
	return r, nil
}
