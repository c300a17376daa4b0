// Package secret turns plaintext secrets into storable bcrypt verifiers.
package secret

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/evidenceledger/credstore/internal/errl"
	"golang.org/x/crypto/bcrypt"
)

// MaxSecretBytes is the longest secret bcrypt accepts.
const MaxSecretBytes = 72

// Hasher hashes and verifies secrets at a fixed bcrypt cost.
// It is safe for concurrent use.
type Hasher struct {
	cost int

	decoyOnce sync.Once
	decoy     string
}

// New creates a Hasher. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the bcrypt cost used for new verifiers.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a freshly salted verifier for plaintext.
// Two calls with the same plaintext return different verifiers.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errl.Validation("secret is required")
	}
	if len(plaintext) > MaxSecretBytes {
		return "", errl.Validation("secret longer than %d bytes", MaxSecretBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errl.Validation("secret longer than %d bytes", MaxSecretBytes)
		}
		return "", errl.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches verifier. A malformed verifier
// yields false, and so does a plaintext longer than MaxSecretBytes: bcrypt
// only reads the first 72 bytes, and Hash never accepts a longer secret.
func (h *Hasher) Verify(plaintext, verifier string) bool {
	if len(plaintext) > MaxSecretBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(plaintext)) == nil
}

// NeedsRehash reports whether verifier was produced at a lower cost than the
// hasher's current one. Malformed verifiers report false.
func (h *Hasher) NeedsRehash(verifier string) bool {
	cost, err := bcrypt.Cost([]byte(verifier))
	return err == nil && cost < h.cost
}

// Decoy returns a verifier of an unknowable random secret at the hasher's cost.
// Comparing against it costs the same as comparing against a real verifier.
func (h *Hasher) Decoy() string {
	h.decoyOnce.Do(func() {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(base64.RawStdEncoding.EncodeToString(buf)), h.cost)
		if err != nil {
			panic(err)
		}
		h.decoy = string(hashed)
	})
	return h.decoy
}
