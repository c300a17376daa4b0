// Package attest lets a university sign the integrity payload of the
// certificates it issues, and lets verifiers check that signature with the
// university's public key.
package attest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"log/slog"
	"time"

	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// KeyBits is the RSA modulus size of generated university keys.
const KeyBits = 2048

// ErrInvalidAttestation is returned for tokens that do not verify.
var ErrInvalidAttestation = errors.New("invalid attestation")

// Claims bind a certificate's identity to its integrity hashes.
type Claims struct {
	StudentID       string `json:"student_id"`
	RollNo          string `json:"roll_no"`
	StudentNameHash string `json:"name_hash"`
	DOBHash         string `json:"dob_hash"`
	GPAHash         string `json:"gpa_hash"`
	ImageHash       string `json:"image_hash"`
	jwt.RegisteredClaims
}

// Matches reports whether the claims describe cert exactly.
func (c *Claims) Matches(cert models.Certificate) bool {
	return c.Subject == cert.ID &&
		c.Issuer == cert.UniversityID &&
		c.StudentID == cert.StudentID &&
		c.RollNo == cert.RollNo &&
		c.StudentNameHash == cert.StudentNameHash &&
		c.DOBHash == cert.DOBHash &&
		c.GPAHash == cert.GPAHash &&
		c.ImageHash == cert.ImageHash
}

// GenerateKeyPair creates an RSA key pair for a university and returns it as
// PEM text (PKCS#8 private key, PKIX public key).
func GenerateKeyPair() (privatePEM, publicPEM string, err error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return "", "", errl.Errorf("failed to generate RSA key: %w", err)
	}

	privBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return "", "", errl.Errorf("failed to marshal private key: %w", err)
	}
	pubBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return "", "", errl.Errorf("failed to marshal public key: %w", err)
	}

	privatePEM = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes}))
	publicPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}))
	return privatePEM, publicPEM, nil
}

// Sign issues an RS256 token over cert's integrity payload.
func Sign(privatePEM string, cert models.Certificate, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privatePEM))
	if err != nil {
		return "", errl.Errorf("failed to parse university private key: %w", err)
	}

	claims := Claims{
		StudentID:       cert.StudentID,
		RollNo:          cert.RollNo,
		StudentNameHash: cert.StudentNameHash,
		DOBHash:         cert.DOBHash,
		GPAHash:         cert.GPAHash,
		ImageHash:       cert.ImageHash,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   cert.UniversityID,
			Subject:  cert.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", errl.Errorf("failed to sign attestation: %w", err)
	}

	slog.Debug("Attestation signed", "cert_id", cert.ID, "univ_id", cert.UniversityID)
	return signed, nil
}

// Verify checks token against the university public key and returns its claims.
func Verify(publicPEM, token string) (*Claims, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
	if err != nil {
		return nil, errl.Errorf("failed to parse university public key: %w", err)
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return nil, errl.Errorf("%w: %w", ErrInvalidAttestation, err)
	}
	return &claims, nil
}

// PublicJWK returns the university public key as a JWK for publication.
func PublicJWK(publicPEM, keyID string) (jwk.Key, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
	if err != nil {
		return nil, errl.Errorf("failed to parse university public key: %w", err)
	}

	jk, err := jwk.Import(key)
	if err != nil {
		return nil, errl.Errorf("failed to import public key: %w", err)
	}

	if err := jk.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, err
	}
	if err := jk.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, err
	}
	if err := jk.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
		return nil, err
	}
	return jk, nil
}
